package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConventionalMoveConsumesAndSchedules(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	tr := NewConventional("Tesla", "AA-01-BB", 1, "owner@example.com", 50, 2, 0.5, 100, Point{X: 0, Y: 0})

	tr.Move(Point{X: 0, Y: 30}, Point{X: 0, Y: 60}, now)

	// 30 to the pickup plus 30 to the destination.
	assert.InDelta(t, 70.0, tr.Autonomy, 1e-9)
	assert.True(t, tr.Autonomy >= 0 && tr.Autonomy <= tr.Capacity)
	assert.Equal(t, Point{X: 0, Y: 60}, tr.Position)

	// 60 distance at velocity 50 is 1.2h, truncated to whole hours.
	require.NotNil(t, tr.AvailableAt)
	assert.Equal(t, now.Add(1*time.Hour), *tr.AvailableAt)
}

func TestHybridMoveBindsToMinimumPool(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	tr := NewHybrid("Prius", "BB-02-CC", 2, "owner@example.com", 60, 1.5, 0.5, 100, Point{X: 0, Y: 0})

	// Both pools start at half capacity; the effective range is their minimum.
	assert.InDelta(t, 50.0, tr.GasPool, 1e-9)
	assert.InDelta(t, 50.0, tr.ElectricPool, 1e-9)
	assert.InDelta(t, 50.0, tr.Autonomy, 1e-9)

	tr.Move(Point{X: 0, Y: 30}, Point{X: 0, Y: 60}, now)

	assert.InDelta(t, 35.0, tr.GasPool, 1e-9)
	assert.InDelta(t, 35.0, tr.ElectricPool, 1e-9)
	assert.InDelta(t, min(tr.GasPool, tr.ElectricPool), tr.Autonomy, 1e-9)
}

func TestHybridAutonomyAlwaysMinOfPools(t *testing.T) {
	tr := NewHybrid("Prius", "BB-03-CC", 2, "owner@example.com", 60, 1.5, 0.5, 80, Point{})
	// Skew the pools to make the binding constraint visible.
	tr.GasPool = 12
	tr.ElectricPool = 30
	tr.Move(Point{}, Point{X: 4, Y: 3}, time.Now())

	assert.InDelta(t, tr.GasPool, tr.Autonomy, 1e-9)
	assert.Less(t, tr.GasPool, tr.ElectricPool)
}

func TestIsAvailable(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	tr := NewConventional("Tesla", "AA-04-BB", 1, "owner@example.com", 50, 2, 0.5, 100, Point{})

	assert.True(t, tr.IsAvailable(now), "nil AvailableAt means available")

	future := now.Add(2 * time.Hour)
	tr.AvailableAt = &future
	assert.False(t, tr.IsAvailable(now))

	past := now.Add(-time.Minute)
	tr.AvailableAt = &past
	assert.True(t, tr.IsAvailable(now))
}

func TestRefill(t *testing.T) {
	conv := NewConventional("Tesla", "AA-05-BB", 1, "owner@example.com", 50, 2, 0.5, 100, Point{})
	conv.Autonomy = 3
	conv.Refill()
	assert.InDelta(t, 100.0, conv.Autonomy, 1e-9)

	hyb := NewHybrid("Prius", "BB-05-CC", 2, "owner@example.com", 60, 1.5, 0.5, 100, Point{})
	hyb.GasPool, hyb.ElectricPool, hyb.Autonomy = 4, 9, 4
	hyb.Refill()
	assert.InDelta(t, 50.0, hyb.GasPool, 1e-9)
	assert.InDelta(t, 50.0, hyb.ElectricPool, 1e-9)
	assert.InDelta(t, 50.0, hyb.Autonomy, 1e-9)
}

func TestCanReach(t *testing.T) {
	tr := NewConventional("Tesla", "AA-06-BB", 1, "owner@example.com", 50, 2, 1, 25, Point{X: 0, Y: 0})
	assert.True(t, tr.CanReach(Point{X: 0, Y: 25}))
	assert.False(t, tr.CanReach(Point{X: 0, Y: 26}))
}

func TestRangeChecksWeighDistanceByConsumptionRate(t *testing.T) {
	// Rate 2 halves the usable range: a full 100-unit pool covers 50 of
	// distance.
	tr := NewConventional("Fiat", "AA-08-BB", 1, "owner@example.com", 50, 2, 2, 100, Point{X: 0, Y: 0})
	assert.True(t, tr.CanReach(Point{X: 0, Y: 50}))
	assert.False(t, tr.CanReach(Point{X: 0, Y: 51}))

	// The pickup detour counts against the pool too: 10 back plus 60
	// forward is 70 of distance, 140 of consumption.
	assert.True(t, tr.CanTravel(Point{X: 0, Y: 10}, Point{X: 0, Y: 50}))
	assert.False(t, tr.CanTravel(Point{X: 0, Y: -10}, Point{X: 0, Y: 50}))
}

func TestHybridRangeChecksBothPools(t *testing.T) {
	// Pools of 50 each at a per-engine rate of 0.5: a 100-unit trip
	// costs 50 per pool.
	hyb := NewHybrid("Prius", "BB-08-CC", 2, "owner@example.com", 60, 1.5, 1, 100, Point{})
	assert.True(t, hyb.CanTravel(Point{}, Point{X: 0, Y: 100}))

	hyb.ElectricPool = 40
	assert.False(t, hyb.CanTravel(Point{}, Point{X: 0, Y: 100}))
}

func TestTransportCloneIsIndependent(t *testing.T) {
	tr := NewConventional("Tesla", "AA-07-BB", 1, "owner@example.com", 50, 2, 0.5, 100, Point{})
	tr.AddRating(80)
	tr.AddRental(Rental{Price: 10})

	cp := tr.Clone()
	cp.Ratings[0] = 0
	cp.Rentals[0].Price = 999
	cp.Position = Point{X: 7, Y: 7}

	assert.InDelta(t, 80.0, tr.Ratings[0], 1e-9)
	assert.InDelta(t, 10.0, tr.Rentals[0].Price, 1e-9)
	assert.Equal(t, Point{}, tr.Position)
}
