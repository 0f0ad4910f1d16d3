package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetshare/fleetshare/internal/model"
	"github.com/fleetshare/fleetshare/internal/repository"
)

func conventionalAt(reg string, pos model.Point, price float64) *model.Transport {
	return model.NewConventional("Fiat", reg, 1, "owner@example.com", 50, price, 0.5, 100, pos)
}

func TestClosestPicksMinimumDistance(t *testing.T) {
	now := time.Now()
	client := model.Point{X: 10, Y: 10}
	a := conventionalAt("AA-01-AA", model.Point{X: 20, Y: 10}, 2) // distance 10
	b := conventionalAt("BB-02-BB", model.Point{X: 10, Y: 40}, 2) // distance 30

	got, err := Closest([]*model.Transport{a, b}, client, now)
	require.NoError(t, err)
	assert.Equal(t, "AA-01-AA", got.Registration)
}

func TestClosestSkipsUnavailable(t *testing.T) {
	now := time.Now()
	busyUntil := now.Add(time.Hour)
	near := conventionalAt("AA-01-AA", model.Point{X: 1, Y: 0}, 2)
	near.AvailableAt = &busyUntil
	far := conventionalAt("BB-02-BB", model.Point{X: 50, Y: 0}, 2)

	got, err := Closest([]*model.Transport{near, far}, model.Point{}, now)
	require.NoError(t, err)
	assert.Equal(t, "BB-02-BB", got.Registration)
}

func TestStrategiesFailWhenAllUnavailable(t *testing.T) {
	now := time.Now()
	busyUntil := now.Add(time.Hour)
	a := conventionalAt("AA-01-AA", model.Point{}, 2)
	a.AvailableAt = &busyUntil
	candidates := []*model.Transport{a}

	_, err := Closest(candidates, model.Point{}, now)
	assert.ErrorIs(t, err, repository.ErrNoAvailableTransport)

	_, err = Cheapest(candidates, now)
	assert.ErrorIs(t, err, repository.ErrNoAvailableTransport)

	_, err = CheapestInWalkRange(candidates, model.Point{}, 100, now)
	assert.ErrorIs(t, err, repository.ErrNoAvailableTransport)
}

func TestCheapestPicksMinimumPrice(t *testing.T) {
	now := time.Now()
	pricey := conventionalAt("AA-01-AA", model.Point{}, 5)
	cheap := conventionalAt("BB-02-BB", model.Point{X: 90, Y: 0}, 1)

	got, err := Cheapest([]*model.Transport{pricey, cheap}, now)
	require.NoError(t, err)
	assert.Equal(t, "BB-02-BB", got.Registration)
}

func TestCheapestInWalkRangeHonoursBudget(t *testing.T) {
	now := time.Now()
	cheapButFar := conventionalAt("AA-01-AA", model.Point{X: 90, Y: 0}, 1)
	nearButPricier := conventionalAt("BB-02-BB", model.Point{X: 5, Y: 0}, 3)

	got, err := CheapestInWalkRange([]*model.Transport{cheapButFar, nearButPricier}, model.Point{}, 10, now)
	require.NoError(t, err)
	assert.Equal(t, "BB-02-BB", got.Registration)

	_, err = CheapestInWalkRange([]*model.Transport{cheapButFar, nearButPricier}, model.Point{}, 1, now)
	assert.ErrorIs(t, err, repository.ErrNoAvailableTransport)
}

func TestWithMinimumAutonomyReturnsMatchingSet(t *testing.T) {
	now := time.Now()
	full := conventionalAt("AA-01-AA", model.Point{}, 2) // autonomy 100
	low := conventionalAt("BB-02-BB", model.Point{}, 2)
	low.Autonomy = 10

	got := WithMinimumAutonomy([]*model.Transport{full, low}, 50, now)
	require.Len(t, got, 1)
	assert.Equal(t, "AA-01-AA", got[0].Registration)

	// An empty result is a plain empty set, not an error: the listing
	// is for display and the client picks by registration afterwards.
	got = WithMinimumAutonomy([]*model.Transport{low}, 50, now)
	assert.Empty(t, got)
}
