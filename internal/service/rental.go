package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fleetshare/fleetshare/internal/model"
	"github.com/fleetshare/fleetshare/internal/queue"
	"github.com/fleetshare/fleetshare/internal/repository"
)

// QuoteRequest carries everything a client supplies to pick a transport
// and price a trip.  Preference selects the strategy; Class restricts
// the candidate set ("" means any class); Registration is required for
// ByRegistration; WalkRange is required for CheapestInWalkRange.
type QuoteRequest struct {
	Preference   string      `json:"preference"`
	Class        string      `json:"class"`
	Registration string      `json:"registration"`
	WalkRange    float64     `json:"walk_range"`
	Destination  model.Point `json:"destination"`
}

// Quote is the priced proposal returned to the client before it is sent
// to the owner.  ETAHours already includes rush-hour and weather delay.
type Quote struct {
	Registration  string  `json:"registration"`
	Brand         string  `json:"brand"`
	Class         string  `json:"class"`
	OwnerEmail    string  `json:"owner_email"`
	Distance      float64 `json:"distance"`
	Price         float64 `json:"price"`
	ETAHours      float64 `json:"eta_hours"`
	DelayHours    float64 `json:"delay_hours"`
	Precipitation float64 `json:"precipitation_mm"`
	Condition     string  `json:"condition"`
}

// RentalService drives the proposal/decision protocol between clients
// and owners.  The clock and the precipitation source are injected so
// the delay computation is deterministic under test; publish hooks
// default to the RabbitMQ publisher and are best-effort.
type RentalService struct {
	store            *repository.Store
	weather          PrecipitationSource
	now              func() time.Time
	publishRequested func(context.Context, queue.RentalRequestedEvent) error
	publishConfirmed func(context.Context, queue.RentalConfirmedEvent) error
}

// NewRentalService wires the service against the store and a weather
// source, with the real clock and broker publishers.
func NewRentalService(store *repository.Store, weather PrecipitationSource) *RentalService {
	return &RentalService{
		store:            store,
		weather:          weather,
		now:              time.Now,
		publishRequested: queue.PublishRentalRequested,
		publishConfirmed: queue.PublishRentalConfirmed,
	}
}

// selectTransport resolves the quote request to a single transport
// using the requested strategy over the class-filtered candidate set.
func (s *RentalService) selectTransport(req QuoteRequest, from model.Point, now time.Time) (*model.Transport, error) {
	if strings.EqualFold(req.Preference, PreferRegistration) {
		t, err := s.store.GetTransport(req.Registration)
		if err != nil {
			return nil, err
		}
		if !t.IsAvailable(now) {
			return nil, fmt.Errorf("%w: transport %s is busy until %s", repository.ErrNoAvailableTransport, t.Registration, t.AvailableAt)
		}
		return t, nil
	}

	var candidates []*model.Transport
	switch strings.ToUpper(req.Class) {
	case string(model.Conventional):
		candidates = s.store.ConventionalTransports()
	case string(model.Hybrid):
		candidates = s.store.HybridTransports()
	case "":
		candidates = s.store.Transports()
	default:
		return nil, fmt.Errorf("unknown transport class %q", req.Class)
	}

	switch req.Preference {
	case PreferClosest:
		return Closest(candidates, from, now)
	case PreferCheapest:
		return Cheapest(candidates, now)
	case PreferWalkRange:
		return CheapestInWalkRange(candidates, from, req.WalkRange, now)
	default:
		return nil, fmt.Errorf("unknown selection preference %q", req.Preference)
	}
}

// rushHour reports whether t falls in the morning or evening peak.
func rushHour(t time.Time) bool {
	h := t.Hour()
	return (h >= 8 && h < 10) || (h >= 17 && h < 19)
}

// buildQuote prices the trip for the selected transport: base ETA is
// distance over average velocity; rush hours add 20% and precipitation
// adds 0.1% per millimetre.
func (s *RentalService) buildQuote(ctx context.Context, t *model.Transport, from model.Point, req QuoteRequest, now time.Time) Quote {
	distance := from.Distance(req.Destination)
	eta := distance / t.AvgVelocity

	reading := s.weather.Reading(ctx, from)
	delay := eta * 0.001 * reading.Precipitation
	if rushHour(now) {
		delay += 0.20 * eta
	}

	return Quote{
		Registration:  t.Registration,
		Brand:         t.Brand,
		Class:         string(t.Class),
		OwnerEmail:    t.OwnerEmail,
		Distance:      distance,
		Price:         distance * t.PricePerKm,
		ETAHours:      eta + delay,
		DelayHours:    delay,
		Precipitation: reading.Precipitation,
		Condition:     reading.Symbol,
	}
}

// QuoteTrip selects a transport and prices the trip without sending
// anything to the owner.  No state mutates.
func (s *RentalService) QuoteTrip(ctx context.Context, clientEmail string, req QuoteRequest) (Quote, error) {
	c, err := s.store.GetClient(clientEmail)
	if err != nil {
		return Quote{}, err
	}
	now := s.now()
	t, err := s.selectTransport(req, c.Position, now)
	if err != nil {
		return Quote{}, err
	}
	return s.buildQuote(ctx, t, c.Position, req, now), nil
}

// Propose quotes the trip and routes it to the transport's owner as a
// pending rent notification.  Only the owner's notification list
// mutates; the rental itself happens when the owner accepts.
func (s *RentalService) Propose(ctx context.Context, clientEmail string, req QuoteRequest) (uint64, Quote, error) {
	c, err := s.store.GetClient(clientEmail)
	if err != nil {
		return 0, Quote{}, err
	}
	now := s.now()
	t, err := s.selectTransport(req, c.Position, now)
	if err != nil {
		return 0, Quote{}, err
	}
	q := s.buildQuote(ctx, t, c.Position, req, now)

	n := model.NewRentNotification(c.NIF, c.Email, t.Registration, req.Preference, req.Destination, q.Price, q.ETAHours)
	id, err := s.store.AddNotificationToOwner(t.OwnerEmail, n)
	if err != nil {
		return 0, Quote{}, err
	}

	// Best-effort: a broker outage must not block the proposal.
	if err := s.publishRequested(ctx, queue.RentalRequestedEvent{
		NotificationID: id,
		ClientEmail:    c.Email,
		OwnerEmail:     t.OwnerEmail,
		Registration:   t.Registration,
		Mode:           req.Preference,
		DestinationX:   req.Destination.X,
		DestinationY:   req.Destination.Y,
		QuotedPrice:    q.Price,
		ETAHours:       q.ETAHours,
		RequestedAt:    now.UTC().Format(time.RFC3339),
	}); err != nil {
		log.Printf("rental: publish requested event failed: %v", err)
	}

	return id, q, nil
}

// Accept resolves a pending rent notification in the owner's favour.
// The transport's range is pre-checked against the whole trip, pickup
// detour included; when it falls short and neither the remaining range
// nor an authorized refill covers the trip the notification ends
// Declined and nothing else mutates.  A rating notification is always
// scheduled for the client, and on acceptance one is scheduled for the
// owner too so both parties can rate each other.  A terminal
// notification is never re-applied.
func (s *RentalService) Accept(ctx context.Context, ownerEmail string, id uint64, refill bool) (model.Notification, error) {
	n, err := s.store.GetNotification(ownerEmail, id)
	if err != nil {
		return model.Notification{}, err
	}
	if n.Kind != model.RentKind {
		return model.Notification{}, fmt.Errorf("notification %d is not a rent request: %w", id, repository.ErrNotFound)
	}
	if n.IsTerminal() {
		return n, repository.ErrNotificationResolved
	}

	t, err := s.store.GetTransport(n.Registration)
	if err != nil {
		return model.Notification{}, err
	}
	c, err := s.store.GetClient(n.ClientEmail)
	if err != nil {
		return model.Notification{}, err
	}

	// The outcome must be final before the notification resolves, so a
	// trip even a full tank cannot cover ends Declined here rather than
	// failing after the status turned terminal.
	reachable := t.CanTravel(c.Position, n.Destination)
	doRefill := !reachable && refill
	if doRefill {
		// Refill the detached copy to test the full-tank range; the
		// live transport is refilled inside ApplyRental.
		t.Refill()
		reachable = t.CanTravel(c.Position, n.Destination)
	}

	outcome := model.Accepted
	if !reachable {
		outcome = model.Declined
	}

	// Single resolution point: a concurrent decision on the same
	// notification loses here and applies nothing.
	if err := s.store.ResolveNotification(ownerEmail, id, outcome); err != nil {
		return n, err
	}
	n.Status = outcome

	now := s.now()
	rating := model.NewRatingNotification(n.Registration, model.RateTransport, n.ETAHours, now)
	if _, err := s.store.AddNotificationToClient(n.ClientEmail, rating); err != nil {
		log.Printf("rental: schedule client rating notification failed: %v", err)
	}

	if outcome == model.Declined {
		return n, nil
	}

	rental, err := s.store.ApplyRental(n.ClientEmail, n.Registration, string(t.Class), n.Mode, n.Destination, doRefill, now)
	if err != nil {
		return n, err
	}

	ownerRating := model.NewRatingNotification(n.ClientEmail, model.RateClient, n.ETAHours, now)
	if _, err := s.store.AddNotificationToOwner(ownerEmail, ownerRating); err != nil {
		log.Printf("rental: schedule owner rating notification failed: %v", err)
	}

	if err := s.publishConfirmed(ctx, queue.RentalConfirmedEvent{
		NotificationID: id,
		ClientEmail:    n.ClientEmail,
		OwnerEmail:     ownerEmail,
		Registration:   n.Registration,
		Price:          rental.Price,
		OriginX:        rental.Origin.X,
		OriginY:        rental.Origin.Y,
		DestinationX:   rental.Destination.X,
		DestinationY:   rental.Destination.Y,
		ConfirmedAt:    now.UTC().Format(time.RFC3339),
	}); err != nil {
		log.Printf("rental: publish confirmed event failed: %v", err)
	}

	return n, nil
}

// Decline resolves a pending rent notification against the client.  No
// entity state beyond the notification mutates.
func (s *RentalService) Decline(ownerEmail string, id uint64) (model.Notification, error) {
	n, err := s.store.GetNotification(ownerEmail, id)
	if err != nil {
		return model.Notification{}, err
	}
	if n.Kind != model.RentKind {
		return model.Notification{}, fmt.Errorf("notification %d is not a rent request: %w", id, repository.ErrNotFound)
	}
	if err := s.store.ResolveNotification(ownerEmail, id, model.Declined); err != nil {
		return n, err
	}
	n.Status = model.Declined
	return n, nil
}

// ratingValueValid bounds a rating submission to the 0..100 scale.
func ratingValueValid(v float64) bool {
	return v >= 0 && v <= 100
}

// RateTransport lets a client answer a rating notification about the
// transport of a finished trip.  The notification only becomes
// evaluable after the estimated travel time has elapsed.
func (s *RentalService) RateTransport(clientEmail string, id uint64, value float64) error {
	n, err := s.store.GetNotification(clientEmail, id)
	if err != nil {
		return err
	}
	if n.Kind != model.RatingKind || n.Target != model.RateTransport {
		return fmt.Errorf("notification %d is not a transport rating request: %w", id, repository.ErrNotFound)
	}
	if n.IsTerminal() {
		return repository.ErrNotificationResolved
	}
	if s.now().Before(n.EvaluableAt) {
		return fmt.Errorf("%w: evaluable at %s", repository.ErrNotEvaluableYet, n.EvaluableAt.Format(time.RFC3339))
	}
	if !ratingValueValid(value) {
		return fmt.Errorf("rating %g out of range 0..100", value)
	}
	if err := s.store.AddRatingToTransport(n.TargetID, value); err != nil {
		return err
	}
	return s.store.ResolveNotification(clientEmail, id, model.Accepted)
}

// RateClient lets an owner answer a rating notification about the
// client of a finished trip.
func (s *RentalService) RateClient(ownerEmail string, id uint64, value float64) error {
	n, err := s.store.GetNotification(ownerEmail, id)
	if err != nil {
		return err
	}
	if n.Kind != model.RatingKind || n.Target != model.RateClient {
		return fmt.Errorf("notification %d is not a client rating request: %w", id, repository.ErrNotFound)
	}
	if n.IsTerminal() {
		return repository.ErrNotificationResolved
	}
	if s.now().Before(n.EvaluableAt) {
		return fmt.Errorf("%w: evaluable at %s", repository.ErrNotEvaluableYet, n.EvaluableAt.Format(time.RFC3339))
	}
	if !ratingValueValid(value) {
		return fmt.Errorf("rating %g out of range 0..100", value)
	}
	if err := s.store.AddRatingToClient(n.TargetID, value); err != nil {
		return err
	}
	return s.store.ResolveNotification(ownerEmail, id, model.Accepted)
}
