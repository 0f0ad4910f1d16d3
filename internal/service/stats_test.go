package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetshare/fleetshare/internal/model"
	"github.com/fleetshare/fleetshare/internal/repository"
)

func statsFixture(t *testing.T) *repository.Store {
	t.Helper()
	s := repository.NewStore()

	frequent := &model.Client{User: model.User{Name: "Ana", NIF: 100, Email: "ana@example.com"}}
	frequent.AddRental(model.Rental{Destination: model.Point{X: 0, Y: 5}})
	frequent.AddRental(model.Rental{Destination: model.Point{X: 0, Y: 5}})
	frequent.AddRental(model.Rental{Destination: model.Point{X: 0, Y: 5}})

	longHaul := &model.Client{User: model.User{Name: "Bruno", NIF: 101, Email: "bruno@example.com"}}
	longHaul.AddRental(model.Rental{Destination: model.Point{X: 0, Y: 100}})

	require.NoError(t, s.AddClient(frequent))
	require.NoError(t, s.AddClient(longHaul))
	return s
}

func TestTopClientsByRentsAndByKms(t *testing.T) {
	svc := NewStatsService(statsFixture(t))

	byRents, err := svc.TopClients(10, ByRents)
	require.NoError(t, err)
	require.Len(t, byRents, 2)
	assert.Equal(t, "ana@example.com", byRents[0].Email)
	assert.Equal(t, 3, byRents[0].Rents)

	byKms, err := svc.TopClients(10, ByKms)
	require.NoError(t, err)
	assert.Equal(t, "bruno@example.com", byKms[0].Email)
	assert.InDelta(t, 100.0, byKms[0].TravelledKms, 1e-9)

	top1, err := svc.TopClients(1, ByRents)
	require.NoError(t, err)
	assert.Len(t, top1, 1)

	_, err = svc.TopClients(10, "price")
	assert.Error(t, err)
}

func TestFilterRentalsBetween(t *testing.T) {
	jan := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	rentals := []model.Rental{{Time: jan}, {Time: feb}, {Time: mar}}

	assert.Len(t, FilterRentalsBetween(rentals, time.Time{}, time.Time{}), 3)
	assert.Len(t, FilterRentalsBetween(rentals, feb, time.Time{}), 2)
	assert.Len(t, FilterRentalsBetween(rentals, time.Time{}, feb), 2)
	assert.Len(t, FilterRentalsBetween(rentals, feb, feb), 1)
}

func TestTransportAndOwnerIncome(t *testing.T) {
	s := repository.NewStore()
	require.NoError(t, s.AddOwner(&model.Owner{User: model.User{NIF: 200, Email: "rui@example.com"}}))

	jan := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	jun := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	tr := model.NewConventional("Tesla", "AA-01-BB", 200, "rui@example.com", 50, 2, 0.5, 100, model.Point{})
	tr.AddRental(model.Rental{Time: jan, Price: 40})
	tr.AddRental(model.Rental{Time: jun, Price: 60})
	require.NoError(t, s.AddTransport(tr))

	svc := NewStatsService(s)

	total, err := svc.TransportIncome("AA-01-BB", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.InDelta(t, 100.0, total, 1e-9)

	firstQuarter, err := svc.TransportIncome("AA-01-BB", time.Time{}, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.InDelta(t, 40.0, firstQuarter, 1e-9)

	perTransport, fleetTotal, err := svc.OwnerIncome("rui@example.com", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.InDelta(t, 100.0, fleetTotal, 1e-9)
	assert.InDelta(t, 100.0, perTransport["AA-01-BB"], 1e-9)

	_, err = svc.TransportIncome("ZZ-99-ZZ", time.Time{}, time.Time{})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
