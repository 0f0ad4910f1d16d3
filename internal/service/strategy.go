// Package service contains the rental engine: vehicle selection
// strategies, the rent request/confirmation protocol, weather and
// statistics helpers and the bulk importer.  Services hold no HTTP
// concerns; handlers translate their errors to status codes.
package service

import (
	"fmt"
	"time"

	"github.com/fleetshare/fleetshare/internal/model"
	"github.com/fleetshare/fleetshare/internal/repository"
)

// Strategy names carried into rent notifications and rental records as
// the preference tag.
const (
	PreferClosest       = "Closest"
	PreferCheapest      = "Cheapest"
	PreferWalkRange     = "CheapestInWalkRange"
	PreferRegistration  = "ByRegistration"
	PreferAutonomyFloor = "ByMinimumAutonomy"
)

// Closest scans the candidates and returns the available transport with
// the minimum Euclidean distance to the reference point.  Ties keep the
// first candidate encountered in iteration order, which the store fixes
// to registration-plate order.
func Closest(candidates []*model.Transport, from model.Point, now time.Time) (*model.Transport, error) {
	var best *model.Transport
	bestDist := 0.0
	for _, t := range candidates {
		if !t.IsAvailable(now) {
			continue
		}
		d := from.Distance(t.Position)
		if best == nil || d < bestDist {
			best = t
			bestDist = d
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: no transport is currently available nearby", repository.ErrNoAvailableTransport)
	}
	return best, nil
}

// Cheapest scans the candidates and returns the available transport
// with the minimum price per distance unit.
func Cheapest(candidates []*model.Transport, now time.Time) (*model.Transport, error) {
	var best *model.Transport
	for _, t := range candidates {
		if !t.IsAvailable(now) {
			continue
		}
		if best == nil || t.PricePerKm < best.PricePerKm {
			best = t
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: no transport is currently available", repository.ErrNoAvailableTransport)
	}
	return best, nil
}

// CheapestInWalkRange is Cheapest restricted to candidates within the
// walking budget of the reference point.
func CheapestInWalkRange(candidates []*model.Transport, from model.Point, walk float64, now time.Time) (*model.Transport, error) {
	var best *model.Transport
	for _, t := range candidates {
		if !t.IsAvailable(now) || from.Distance(t.Position) > walk {
			continue
		}
		if best == nil || t.PricePerKm < best.PricePerKm {
			best = t
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: no transport is available within %.1f walking distance", repository.ErrNoAvailableTransport, walk)
	}
	return best, nil
}

// WithMinimumAutonomy filters the available candidates whose remaining
// range meets the requested floor.  The full matching set is returned
// for display; the client then picks one by registration plate.
func WithMinimumAutonomy(candidates []*model.Transport, autonomy float64, now time.Time) []*model.Transport {
	out := make([]*model.Transport, 0, len(candidates))
	for _, t := range candidates {
		if t.IsAvailable(now) && t.HasAutonomy(autonomy) {
			out = append(out, t)
		}
	}
	return out
}
