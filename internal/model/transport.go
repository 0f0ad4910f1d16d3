package model

import "time"

// TransportClass enumerates the closed set of vehicle kinds.  Movement
// and autonomy behaviour dispatch on this tag instead of on a type
// hierarchy.
type TransportClass string

const (
	// Conventional transports run on a single fuel/energy pool.
	Conventional TransportClass = "CONVENTIONAL"
	// Hybrid transports run on two independent pools (gas, electric);
	// the binding range is the smaller of the two.
	Hybrid TransportClass = "HYBRID"
)

// Transport is a rentable vehicle.  The registration plate is the
// identity key.  OwnerNIF and OwnerEmail are a back-reference to the
// listing owner, not ownership of the entity itself.
//
// Invariant: 0 <= Autonomy <= Capacity.  For hybrids each pool stays
// within [0, Capacity/2] and Autonomy equals min(GasPool, ElectricPool)
// after initialization and after every move.
//
// Fields:
//  Registration – registration plate, identity key.
//  OwnerNIF     – tax id of the listing owner.
//  OwnerEmail   – email of the listing owner.
//  Brand        – make of the vehicle.
//  Class        – Conventional or Hybrid.
//  Position     – current location.
//  AvgVelocity  – average velocity, distance units per hour.
//  PricePerKm   – price per distance unit.
//  Capacity     – total fuel/energy capacity.
//  Autonomy     – remaining effective range.
//  Rate         – per-distance consumption (conventional only).
//  GasRate      – per-distance gas consumption (hybrid only).
//  ElectricRate – per-distance electric consumption (hybrid only).
//  GasPool      – remaining gas range (hybrid only).
//  ElectricPool – remaining electric range (hybrid only).
//  Rating       – aggregate rating (DefaultRating until rated).
//  Ratings      – every rating value received.
//  Rentals      – completed rentals performed with this vehicle.
//  AvailableAt  – when the vehicle becomes available again; nil means
//                 immediately available.
type Transport struct {
	Registration string         `json:"registration"`
	OwnerNIF     int            `json:"owner_nif"`
	OwnerEmail   string         `json:"owner_email"`
	Brand        string         `json:"brand"`
	Class        TransportClass `json:"class"`
	Position     Point          `json:"position"`
	AvgVelocity  float64        `json:"avg_velocity"`
	PricePerKm   float64        `json:"price_per_km"`
	Capacity     float64        `json:"capacity"`
	Autonomy     float64        `json:"autonomy"`
	Rate         float64        `json:"rate,omitempty"`
	GasRate      float64        `json:"gas_rate,omitempty"`
	ElectricRate float64        `json:"electric_rate,omitempty"`
	GasPool      float64        `json:"gas_pool,omitempty"`
	ElectricPool float64        `json:"electric_pool,omitempty"`
	Rating       float64        `json:"rating"`
	Ratings      []float64      `json:"ratings"`
	Rentals      []Rental       `json:"rentals"`
	AvailableAt  *time.Time     `json:"available_at,omitempty"`
}

// NewConventional builds a conventional transport with a full pool.
func NewConventional(brand, registration string, ownerNIF int, ownerEmail string, avgVelocity, pricePerKm, rate, capacity float64, pos Point) *Transport {
	return &Transport{
		Registration: registration,
		OwnerNIF:     ownerNIF,
		OwnerEmail:   ownerEmail,
		Brand:        brand,
		Class:        Conventional,
		Position:     pos,
		AvgVelocity:  avgVelocity,
		PricePerKm:   pricePerKm,
		Capacity:     capacity,
		Autonomy:     capacity,
		Rate:         rate,
		Rating:       DefaultRating,
	}
}

// NewHybrid builds a hybrid transport.  The nominal consumption rate is
// split evenly across the two engines and each pool starts at half of
// the capacity, so the initial effective autonomy is Capacity/2.
func NewHybrid(brand, registration string, ownerNIF int, ownerEmail string, avgVelocity, pricePerKm, rate, capacity float64, pos Point) *Transport {
	return &Transport{
		Registration: registration,
		OwnerNIF:     ownerNIF,
		OwnerEmail:   ownerEmail,
		Brand:        brand,
		Class:        Hybrid,
		Position:     pos,
		AvgVelocity:  avgVelocity,
		PricePerKm:   pricePerKm,
		Capacity:     capacity,
		Autonomy:     capacity / 2,
		GasRate:      rate / 2,
		ElectricRate: rate / 2,
		GasPool:      capacity / 2,
		ElectricPool: capacity / 2,
		Rating:       DefaultRating,
	}
}

// Clone returns a deep copy of the transport.
func (t *Transport) Clone() *Transport {
	out := *t
	out.Ratings = append([]float64(nil), t.Ratings...)
	out.Rentals = append([]Rental(nil), t.Rentals...)
	if t.AvailableAt != nil {
		at := *t.AvailableAt
		out.AvailableAt = &at
	}
	return &out
}

// IsAvailable reports whether the transport can be rented at the given
// instant.  Availability is evaluated at query time, never cached.
func (t *Transport) IsAvailable(now time.Time) bool {
	return t.AvailableAt == nil || t.AvailableAt.Before(now)
}

// HasAutonomy reports whether the remaining range covers at least the
// requested threshold.
func (t *Transport) HasAutonomy(threshold float64) bool {
	return t.Autonomy >= threshold
}

// CanReach reports whether the remaining range covers a direct leg
// from the current position to the destination.
func (t *Transport) CanReach(destination Point) bool {
	return t.canConsume(t.Position.Distance(destination))
}

// CanTravel reports whether the remaining range covers a full trip
// from the current position via the pickup point to the destination.
// It mirrors exactly what Move will consume, so a trip that passes the
// check never drives a pool negative.
func (t *Transport) CanTravel(pickup, destination Point) bool {
	return t.canConsume(t.Position.Distance(pickup) + pickup.Distance(destination))
}

// canConsume checks a travel distance against the pools at the
// per-distance consumption rates.
func (t *Transport) canConsume(distance float64) bool {
	if t.Class == Hybrid {
		return distance*t.GasRate <= t.GasPool && distance*t.ElectricRate <= t.ElectricPool
	}
	return distance*t.Rate <= t.Autonomy
}

// Refill resets the transport to full range.  Hybrids have both pools
// restored to their initial half-capacity split.
func (t *Transport) Refill() {
	switch t.Class {
	case Hybrid:
		t.GasPool = t.Capacity / 2
		t.ElectricPool = t.Capacity / 2
		t.Autonomy = min(t.GasPool, t.ElectricPool)
	default:
		t.Autonomy = t.Capacity
	}
}

// Move drives the transport from its current position to the pickup
// point and on to the destination, consuming range, marking the vehicle
// busy for the travel time (truncated to whole hours) and leaving it at
// the destination.
func (t *Transport) Move(pickup, destination Point, now time.Time) {
	distance := t.Position.Distance(pickup) + pickup.Distance(destination)
	switch t.Class {
	case Hybrid:
		t.GasPool -= distance * t.GasRate
		t.ElectricPool -= distance * t.ElectricRate
		t.Autonomy = min(t.GasPool, t.ElectricPool)
	default:
		t.Autonomy -= distance * t.Rate
	}
	hours := time.Duration(distance/t.AvgVelocity) * time.Hour
	at := now.Add(hours)
	t.AvailableAt = &at
	t.Position = destination
}

// AddRating appends a rating value and recomputes the aggregate mean.
func (t *Transport) AddRating(v float64) {
	t.Ratings = append(t.Ratings, v)
	t.Rating = mean(t.Ratings)
}

// AddRental appends a completed rental to the transport's history.
func (t *Transport) AddRental(r Rental) {
	t.Rentals = append(t.Rentals, r)
}
