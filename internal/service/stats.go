package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/fleetshare/fleetshare/internal/model"
	"github.com/fleetshare/fleetshare/internal/repository"
)

// Ranking keys for the top-clients listing.
const (
	ByRents = "rents"
	ByKms   = "kms"
)

// ClientStanding is one row of the top-clients ranking.
type ClientStanding struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	NIF          int     `json:"nif"`
	Rents        int     `json:"rents"`
	TravelledKms float64 `json:"travelled_kms"`
	Rating       float64 `json:"rating"`
}

// StatsService answers the read-only ranking and income queries over
// the store.
type StatsService struct {
	store *repository.Store
}

func NewStatsService(store *repository.Store) *StatsService {
	return &StatsService{store: store}
}

// TopClients ranks clients by completed rents or travelled distance and
// returns the first n rows.  Ties keep the store's email ordering so
// the listing is stable across calls.
func (s *StatsService) TopClients(n int, by string) ([]ClientStanding, error) {
	if by != ByRents && by != ByKms {
		return nil, fmt.Errorf("unknown ranking key %q", by)
	}
	clients := s.store.Clients()

	rows := make([]ClientStanding, 0, len(clients))
	for _, c := range clients {
		rows = append(rows, ClientStanding{
			Name:         c.Name,
			Email:        c.Email,
			NIF:          c.NIF,
			Rents:        c.PerformedRents(),
			TravelledKms: c.TravelledKms(),
			Rating:       c.Rating,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if by == ByKms {
			return rows[i].TravelledKms > rows[j].TravelledKms
		}
		return rows[i].Rents > rows[j].Rents
	})

	if n > 0 && n < len(rows) {
		rows = rows[:n]
	}
	return rows, nil
}

// FilterRentalsBetween keeps the rentals whose timestamp falls in
// [from, to].  Zero bounds are open on that side.
func FilterRentalsBetween(rentals []model.Rental, from, to time.Time) []model.Rental {
	out := make([]model.Rental, 0, len(rentals))
	for _, r := range rentals {
		if !from.IsZero() && r.Time.Before(from) {
			continue
		}
		if !to.IsZero() && r.Time.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// TransportIncome sums the rental prices of one transport over a date
// range.
func (s *StatsService) TransportIncome(registration string, from, to time.Time) (float64, error) {
	t, err := s.store.GetTransport(registration)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, r := range FilterRentalsBetween(t.Rentals, from, to) {
		total += r.Price
	}
	return total, nil
}

// OwnerIncome sums the rental prices across an owner's whole fleet over
// a date range, broken down per transport.
func (s *StatsService) OwnerIncome(ownerEmail string, from, to time.Time) (map[string]float64, float64, error) {
	if _, err := s.store.GetOwner(ownerEmail); err != nil {
		return nil, 0, err
	}
	perTransport := make(map[string]float64)
	var total float64
	for _, t := range s.store.TransportsOfOwner(ownerEmail) {
		var sum float64
		for _, r := range FilterRentalsBetween(t.Rentals, from, to) {
			sum += r.Price
		}
		perTransport[t.Registration] = sum
		total += sum
	}
	return perTransport, total, nil
}

// AvailableWithAutonomy lists the transports a client could book right
// now with at least the requested remaining range, optionally filtered
// by class ("" keeps both).
func (s *StatsService) AvailableWithAutonomy(class string, autonomy float64, now time.Time) ([]*model.Transport, error) {
	var candidates []*model.Transport
	switch class {
	case string(model.Conventional):
		candidates = s.store.ConventionalTransports()
	case string(model.Hybrid):
		candidates = s.store.HybridTransports()
	case "":
		candidates = s.store.Transports()
	default:
		return nil, fmt.Errorf("unknown transport class %q", class)
	}
	return WithMinimumAutonomy(candidates, autonomy, now), nil
}
