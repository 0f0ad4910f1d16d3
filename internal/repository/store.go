package repository

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/fleetshare/fleetshare/internal/model"
)

// Store is the in-memory entity store.  Clients and owners are keyed by
// email, transports by registration plate.  Every read returns a deep
// copy so callers can never alias live state; every mutation looks up
// the live entity and applies the effect in place under the write lock.
// The three-way rental append runs as a single critical section (see
// ApplyRental).
type Store struct {
	mu         sync.RWMutex
	clients    map[string]*model.Client
	owners     map[string]*model.Owner
	transports map[string]*model.Transport
	notifSeq   uint64
}

// NewStore returns an empty entity store.
func NewStore() *Store {
	return &Store{
		clients:    make(map[string]*model.Client),
		owners:     make(map[string]*model.Owner),
		transports: make(map[string]*model.Transport),
	}
}

// ----- clients -----

// AddClient inserts a client keyed by email.
func (s *Store) AddClient(c *model.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c.Email]; ok {
		return ErrEmailExists
	}
	s.clients[c.Email] = c.Clone()
	return nil
}

// ExistsClient reports whether a client with the email is stored.
func (s *Store) ExistsClient(email string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.clients[email]
	return ok
}

// GetClient returns a deep copy of the client.
func (s *Store) GetClient(email string) (*model.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[email]
	if !ok {
		return nil, ErrNotFound
	}
	return c.Clone(), nil
}

// UpdateClientLocation moves the client to the given position.
func (s *Store) UpdateClientLocation(email string, pos model.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[email]
	if !ok {
		return ErrNotFound
	}
	c.Position = pos
	return nil
}

// AddRatingToClient appends a rating value to the client.
func (s *Store) AddRatingToClient(email string, rating float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[email]
	if !ok {
		return ErrNotFound
	}
	c.AddRating(rating)
	return nil
}

// AddRentalToClient appends a rental to the client's history.  Used by
// the bulk importer; the interactive accept path goes through
// ApplyRental instead.
func (s *Store) AddRentalToClient(email string, r model.Rental) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[email]
	if !ok {
		return ErrNotFound
	}
	c.AddRental(r)
	return nil
}

// AddNotificationToClient assigns the notification an id and appends it
// to the client's pending list.  The assigned id is returned.
func (s *Store) AddNotificationToClient(email string, n model.Notification) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[email]
	if !ok {
		return 0, ErrNotFound
	}
	s.notifSeq++
	n.ID = s.notifSeq
	c.AddNotification(n)
	return n.ID, nil
}

// Clients returns deep copies of all clients ordered by email.
func (s *Store) Clients() []*model.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}

// ClientByNIF scans for a client with the given tax id.  NIFs are not
// indexed; this is a linear lookup used by the bulk importer.
func (s *Store) ClientByNIF(nif int) (*model.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.clients {
		if c.NIF == nif {
			return c.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

// ----- owners -----

// AddOwner inserts an owner keyed by email.
func (s *Store) AddOwner(o *model.Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.owners[o.Email]; ok {
		return ErrEmailExists
	}
	s.owners[o.Email] = o.Clone()
	return nil
}

// ExistsOwner reports whether an owner with the email is stored.
func (s *Store) ExistsOwner(email string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.owners[email]
	return ok
}

// GetOwner returns a deep copy of the owner.
func (s *Store) GetOwner(email string) (*model.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.owners[email]
	if !ok {
		return nil, ErrNotFound
	}
	return o.Clone(), nil
}

// AddRatingToOwner appends a rating value to the owner.
func (s *Store) AddRatingToOwner(email string, rating float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.owners[email]
	if !ok {
		return ErrNotFound
	}
	o.AddRating(rating)
	return nil
}

// AddRentalToOwner appends a rental to the owner's history.
func (s *Store) AddRentalToOwner(email string, r model.Rental) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.owners[email]
	if !ok {
		return ErrNotFound
	}
	o.AddRental(r)
	return nil
}

// AddNotificationToOwner assigns the notification an id and appends it
// to the owner's pending list.  The assigned id is returned.
func (s *Store) AddNotificationToOwner(email string, n model.Notification) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.owners[email]
	if !ok {
		return 0, ErrNotFound
	}
	s.notifSeq++
	n.ID = s.notifSeq
	o.AddNotification(n)
	return n.ID, nil
}

// Owners returns deep copies of all owners ordered by email.
func (s *Store) Owners() []*model.Owner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Owner, 0, len(s.owners))
	for _, o := range s.owners {
		out = append(out, o.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}

// OwnerByNIF scans for an owner with the given tax id.
func (s *Store) OwnerByNIF(nif int) (*model.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.owners {
		if o.NIF == nif {
			return o.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

// ----- transports -----

// AddTransport inserts a transport keyed by registration plate.
func (s *Store) AddTransport(t *model.Transport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transports[t.Registration]; ok {
		return ErrRegistrationExists
	}
	s.transports[t.Registration] = t.Clone()
	return nil
}

// ExistsTransport reports whether a transport with the registration is
// stored.
func (s *Store) ExistsTransport(registration string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.transports[registration]
	return ok
}

// GetTransport returns a deep copy of the transport.
func (s *Store) GetTransport(registration string) (*model.Transport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transports[registration]
	if !ok {
		return nil, ErrNotFound
	}
	return t.Clone(), nil
}

// AddRatingToTransport appends a rating value to the transport.
func (s *Store) AddRatingToTransport(registration string, rating float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transports[registration]
	if !ok {
		return ErrNotFound
	}
	t.AddRating(rating)
	return nil
}

// AddRentalToTransport appends a rental to the transport's history.
func (s *Store) AddRentalToTransport(registration string, r model.Rental) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transports[registration]
	if !ok {
		return ErrNotFound
	}
	t.AddRental(r)
	return nil
}

// MoveTransport drives the transport via the pickup point to the
// destination, consuming range and scheduling availability.  Used by
// the bulk importer; the interactive accept path goes through
// ApplyRental.
func (s *Store) MoveTransport(registration string, pickup, destination model.Point, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transports[registration]
	if !ok {
		return ErrNotFound
	}
	t.Move(pickup, destination, now)
	return nil
}

// RefillTransport resets the transport's range to full capacity.
func (s *Store) RefillTransport(registration string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transports[registration]
	if !ok {
		return ErrNotFound
	}
	t.Refill()
	return nil
}

// Transports returns deep copies of all transports ordered by
// registration plate, giving strategies a deterministic iteration order
// for tie-breaking and listings a reproducible layout.
func (s *Store) Transports() []*model.Transport {
	return s.transportsWhere(func(*model.Transport) bool { return true })
}

// ConventionalTransports returns the conventional partition, ordered by
// registration plate.
func (s *Store) ConventionalTransports() []*model.Transport {
	return s.transportsWhere(func(t *model.Transport) bool { return t.Class == model.Conventional })
}

// HybridTransports returns the hybrid partition, ordered by
// registration plate.
func (s *Store) HybridTransports() []*model.Transport {
	return s.transportsWhere(func(t *model.Transport) bool { return t.Class == model.Hybrid })
}

// TransportsOfOwner returns the transports listed by the owner, ordered
// by registration plate.
func (s *Store) TransportsOfOwner(email string) []*model.Transport {
	return s.transportsWhere(func(t *model.Transport) bool { return t.OwnerEmail == email })
}

func (s *Store) transportsWhere(keep func(*model.Transport) bool) []*model.Transport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Transport, 0, len(s.transports))
	for _, t := range s.transports {
		if keep(t) {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Registration < out[j].Registration })
	return out
}

// ----- notifications -----

// NotificationsOf returns copies of the notifications of the client or
// owner with the given email, resolved ones included.
func (s *Store) NotificationsOf(email string) ([]model.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, err := s.userLocked(email)
	if err != nil {
		return nil, err
	}
	out := make([]model.Notification, len(u.Notifications))
	for i, n := range u.Notifications {
		out[i] = n.Clone()
	}
	return out, nil
}

// PendingNotificationsOf returns copies of the still-unevaluated
// notifications of the client or owner.
func (s *Store) PendingNotificationsOf(email string) ([]model.Notification, error) {
	all, err := s.NotificationsOf(email)
	if err != nil {
		return nil, err
	}
	out := make([]model.Notification, 0, len(all))
	for _, n := range all {
		if n.IsPending() {
			out = append(out, n)
		}
	}
	return out, nil
}

// GetNotification returns a copy of one notification of the client or
// owner.
func (s *Store) GetNotification(email string, id uint64) (model.Notification, error) {
	all, err := s.NotificationsOf(email)
	if err != nil {
		return model.Notification{}, err
	}
	for _, n := range all {
		if n.ID == id {
			return n, nil
		}
	}
	return model.Notification{}, ErrNotFound
}

// ResolveNotification moves a notification from Unevaluated to the
// given terminal status.  The transition happens at most once: a second
// resolution attempt returns ErrNotificationResolved and changes
// nothing, which is what makes re-evaluating an already decided request
// a no-op.
func (s *Store) ResolveNotification(email string, id uint64, status model.NotificationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.userLocked(email)
	if err != nil {
		return err
	}
	for i := range u.Notifications {
		if u.Notifications[i].ID != id {
			continue
		}
		if u.Notifications[i].IsTerminal() {
			return ErrNotificationResolved
		}
		u.Notifications[i].Status = status
		return nil
	}
	return ErrNotFound
}

// userLocked resolves an email to the live shared User of either a
// client or an owner.  Callers must hold the lock.
func (s *Store) userLocked(email string) (*model.User, error) {
	if c, ok := s.clients[email]; ok {
		return &c.User, nil
	}
	if o, ok := s.owners[email]; ok {
		return &o.User, nil
	}
	return nil, ErrNotFound
}

// ----- confirmed rentals -----

// ApplyRental performs the confirmed-rental state transition as one
// critical section: optional refill, pricing at acceptance, the
// three-way history append (client, owner, transport), the client's
// move to the destination and the transport's movement effects.  Either
// every effect applies or none does; no partial rental is ever visible.
func (s *Store) ApplyRental(clientEmail, registration, mode, preference string, destination model.Point, refill bool, now time.Time) (model.Rental, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[clientEmail]
	if !ok {
		return model.Rental{}, ErrNotFound
	}
	t, ok := s.transports[registration]
	if !ok {
		return model.Rental{}, ErrNotFound
	}
	o, ok := s.owners[t.OwnerEmail]
	if !ok {
		return model.Rental{}, ErrNotFound
	}

	pickup := c.Position
	if refill {
		t.Refill()
	}
	if !t.CanTravel(pickup, destination) {
		// The protocol pre-checks range before committing; reaching
		// this guard means the caller skipped the pre-check.
		return model.Rental{}, ErrInsufficientAutonomy
	}
	// Priced from the transport's actual pre-move location, not the
	// client's pickup point, which may have drifted since the quote.
	rental := model.Rental{
		ClientNIF:   c.NIF,
		ClientEmail: c.Email,
		Time:        now,
		Price:       t.Position.Distance(destination) * t.PricePerKm,
		Origin:      t.Position,
		Destination: destination,
		Mode:        mode,
		Preference:  preference,
	}

	c.AddRental(rental)
	o.AddRental(rental)
	t.AddRental(rental)

	c.Position = destination
	t.Move(pickup, destination, now)

	return rental, nil
}

// ----- snapshots -----

// Snapshot is the whole-store serializable state.  Restore accepts a
// snapshot to replace the current state wholesale; there is no partial
// or merge load.
type Snapshot struct {
	Clients    map[string]*model.Client    `json:"clients"`
	Owners     map[string]*model.Owner     `json:"owners"`
	Transports map[string]*model.Transport `json:"transports"`
	NotifSeq   uint64                      `json:"notif_seq"`
}

// Snapshot returns a deep copy of the entire store state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Clients:    make(map[string]*model.Client, len(s.clients)),
		Owners:     make(map[string]*model.Owner, len(s.owners)),
		Transports: make(map[string]*model.Transport, len(s.transports)),
		NotifSeq:   s.notifSeq,
	}
	for k, v := range s.clients {
		snap.Clients[k] = v.Clone()
	}
	for k, v := range s.owners {
		snap.Owners[k] = v.Clone()
	}
	for k, v := range s.transports {
		snap.Transports[k] = v.Clone()
	}
	return snap
}

// Restore replaces the store state with the snapshot.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients = make(map[string]*model.Client, len(snap.Clients))
	s.owners = make(map[string]*model.Owner, len(snap.Owners))
	s.transports = make(map[string]*model.Transport, len(snap.Transports))
	for k, v := range snap.Clients {
		s.clients[k] = v.Clone()
	}
	for k, v := range snap.Owners {
		s.owners[k] = v.Clone()
	}
	for k, v := range snap.Transports {
		s.transports[k] = v.Clone()
	}
	s.notifSeq = snap.NotifSeq
}

// MarshalSnapshot serializes the current state as JSON.
func (s *Store) MarshalSnapshot() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

// RestoreFromJSON replaces the state from a serialized snapshot.
func (s *Store) RestoreFromJSON(data []byte) error {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	s.Restore(snap)
	return nil
}

// Size returns the total number of stored entities.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients) + len(s.owners) + len(s.transports)
}
