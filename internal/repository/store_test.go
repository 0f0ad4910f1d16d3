package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetshare/fleetshare/internal/model"
)

func seedStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	require.NoError(t, s.AddClient(&model.Client{
		User:     model.User{Name: "Ana", NIF: 100, Email: "ana@example.com", Rating: model.DefaultRating},
		Position: model.Point{X: 0, Y: 0},
	}))
	require.NoError(t, s.AddOwner(&model.Owner{
		User: model.User{Name: "Rui", NIF: 200, Email: "rui@example.com", Rating: model.DefaultRating},
	}))
	require.NoError(t, s.AddTransport(model.NewConventional(
		"Tesla", "AA-01-BB", 200, "rui@example.com", 50, 2, 0.5, 100, model.Point{X: 0, Y: 10})))
	return s
}

func TestDuplicateKeys(t *testing.T) {
	s := seedStore(t)

	err := s.AddClient(&model.Client{User: model.User{Email: "ana@example.com"}})
	assert.ErrorIs(t, err, ErrEmailExists)

	err = s.AddOwner(&model.Owner{User: model.User{Email: "rui@example.com"}})
	assert.ErrorIs(t, err, ErrEmailExists)

	err = s.AddTransport(&model.Transport{Registration: "AA-01-BB"})
	assert.ErrorIs(t, err, ErrRegistrationExists)
}

func TestReadsReturnDefensiveCopies(t *testing.T) {
	s := seedStore(t)

	c, err := s.GetClient("ana@example.com")
	require.NoError(t, err)
	c.Name = "mutated"
	c.Position = model.Point{X: 99, Y: 99}

	again, err := s.GetClient("ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ana", again.Name)
	assert.Equal(t, model.Point{X: 0, Y: 0}, again.Position)

	tr, err := s.GetTransport("AA-01-BB")
	require.NoError(t, err)
	tr.Autonomy = -1

	again2, err := s.GetTransport("AA-01-BB")
	require.NoError(t, err)
	assert.InDelta(t, 100.0, again2.Autonomy, 1e-9)
}

func TestTransportPartitionsAreSortedByRegistration(t *testing.T) {
	s := seedStore(t)
	require.NoError(t, s.AddTransport(model.NewHybrid(
		"Prius", "ZZ-09-XX", 200, "rui@example.com", 60, 1.5, 0.5, 80, model.Point{})))
	require.NoError(t, s.AddTransport(model.NewConventional(
		"Fiat", "CC-03-DD", 200, "rui@example.com", 40, 1, 0.4, 60, model.Point{})))

	all := s.Transports()
	require.Len(t, all, 3)
	assert.Equal(t, "AA-01-BB", all[0].Registration)
	assert.Equal(t, "CC-03-DD", all[1].Registration)
	assert.Equal(t, "ZZ-09-XX", all[2].Registration)

	conv := s.ConventionalTransports()
	require.Len(t, conv, 2)
	for _, tr := range conv {
		assert.Equal(t, model.Conventional, tr.Class)
	}

	hyb := s.HybridTransports()
	require.Len(t, hyb, 1)
	assert.Equal(t, "ZZ-09-XX", hyb[0].Registration)
}

func TestNotificationLifecycle(t *testing.T) {
	s := seedStore(t)

	n := model.NewRentNotification(100, "ana@example.com", "AA-01-BB", "Closest", model.Point{X: 0, Y: 40}, 80, 0.8)
	id, err := s.AddNotificationToOwner("rui@example.com", n)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	pending, err := s.PendingNotificationsOf("rui@example.com")
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, s.ResolveNotification("rui@example.com", id, model.Accepted))

	// A second decision on a terminal notification changes nothing.
	err = s.ResolveNotification("rui@example.com", id, model.Declined)
	assert.ErrorIs(t, err, ErrNotificationResolved)

	got, err := s.GetNotification("rui@example.com", id)
	require.NoError(t, err)
	assert.Equal(t, model.Accepted, got.Status)

	pending, err = s.PendingNotificationsOf("rui@example.com")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestApplyRentalThreeWayAtomicity(t *testing.T) {
	s := seedStore(t)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	dest := model.Point{X: 0, Y: 40}

	rental, err := s.ApplyRental("ana@example.com", "AA-01-BB", "CONVENTIONAL", "Closest", dest, false, now)
	require.NoError(t, err)

	// Priced from the transport's pre-move position: 30 units at 2 per km.
	assert.InDelta(t, 60.0, rental.Price, 1e-9)

	c, _ := s.GetClient("ana@example.com")
	o, _ := s.GetOwner("rui@example.com")
	tr, _ := s.GetTransport("AA-01-BB")

	require.Len(t, c.Rentals, 1)
	require.Len(t, o.Rentals, 1)
	require.Len(t, tr.Rentals, 1)
	assert.Equal(t, rental, c.Rentals[0])
	assert.Equal(t, rental, o.Rentals[0])
	assert.Equal(t, rental, tr.Rentals[0])

	assert.Equal(t, dest, c.Position)
	assert.Equal(t, dest, tr.Position)
	// 10 to the pickup plus 40 to the destination, at rate 0.5.
	assert.InDelta(t, 75.0, tr.Autonomy, 1e-9)
	require.NotNil(t, tr.AvailableAt)
	assert.Equal(t, now.Add(1*time.Hour), *tr.AvailableAt)
}

func TestApplyRentalInsufficientAutonomyMutatesNothing(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddClient(&model.Client{
		User: model.User{NIF: 100, Email: "ana@example.com"},
	}))
	require.NoError(t, s.AddOwner(&model.Owner{
		User: model.User{NIF: 200, Email: "rui@example.com"},
	}))
	short := model.NewConventional("Fiat", "DD-04-EE", 200, "rui@example.com", 40, 1, 1, 5, model.Point{X: 0, Y: 10})
	require.NoError(t, s.AddTransport(short))

	_, err := s.ApplyRental("ana@example.com", "DD-04-EE", "CONVENTIONAL", "Closest", model.Point{X: 0, Y: 40}, false, time.Now())
	assert.ErrorIs(t, err, ErrInsufficientAutonomy)

	c, _ := s.GetClient("ana@example.com")
	tr, _ := s.GetTransport("DD-04-EE")
	assert.Empty(t, c.Rentals)
	assert.Empty(t, tr.Rentals)
	assert.Equal(t, model.Point{}, c.Position)
	assert.Equal(t, model.Point{X: 0, Y: 10}, tr.Position)
	assert.InDelta(t, 5.0, tr.Autonomy, 1e-9)
}

func TestApplyRentalCountsPickupDetourAgainstRange(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddClient(&model.Client{
		User: model.User{NIF: 100, Email: "ana@example.com"},
	}))
	require.NoError(t, s.AddOwner(&model.Owner{
		User: model.User{NIF: 200, Email: "rui@example.com"},
	}))
	// Range 30 covers the direct 30-unit leg to the destination but not
	// the 50 consumed via the pickup at (0,0).
	tr := model.NewConventional("Fiat", "DD-04-EE", 200, "rui@example.com", 40, 1, 1, 100, model.Point{X: 0, Y: 10})
	tr.Autonomy = 30
	require.NoError(t, s.AddTransport(tr))

	_, err := s.ApplyRental("ana@example.com", "DD-04-EE", "CONVENTIONAL", "Closest", model.Point{X: 0, Y: 40}, false, time.Now())
	assert.ErrorIs(t, err, ErrInsufficientAutonomy)

	got, _ := s.GetTransport("DD-04-EE")
	assert.InDelta(t, 30.0, got.Autonomy, 1e-9)
	assert.True(t, got.Autonomy >= 0 && got.Autonomy <= got.Capacity)
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := seedStore(t)
	_, err := s.AddNotificationToOwner("rui@example.com",
		model.NewRentNotification(100, "ana@example.com", "AA-01-BB", "Cheapest", model.Point{X: 1, Y: 1}, 10, 0.2))
	require.NoError(t, err)

	data, err := s.MarshalSnapshot()
	require.NoError(t, err)

	restored := NewStore()
	require.NoError(t, restored.RestoreFromJSON(data))

	assert.Equal(t, s.Size(), restored.Size())

	c, err := restored.GetClient("ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ana", c.Name)

	pending, err := restored.PendingNotificationsOf("rui@example.com")
	require.NoError(t, err)
	require.Len(t, pending, 1)

	// The id sequence continues after the restore instead of reusing ids.
	id, err := restored.AddNotificationToClient("ana@example.com",
		model.NewRatingNotification("AA-01-BB", model.RateTransport, 1, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), id)
}
