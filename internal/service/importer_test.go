package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetshare/fleetshare/internal/model"
	"github.com/fleetshare/fleetshare/internal/repository"
)

// Low bcrypt cost keeps the batch hash fast under test.
const testBcryptCost = 4

func TestImporterLoadsFullBatch(t *testing.T) {
	store := repository.NewStore()
	im := NewImporter(store, testBcryptCost)
	im.now = func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }

	batch := strings.Join([]string{
		"# fleet seed",
		"Owner:Rui Costa,200,rui@example.com,Porto",
		"Client:Ana Silva,100,ana@example.com,Lisboa,0,0",
		"Transport:CONVENTIONAL,Tesla,AA-01-BB,200,50,2,0.5,100,0,10",
		"Transport:HYBRID,Prius,BB-02-CC,200,60,1.5,0.5,80,5,5",
		"Rental:100,0,40,CONVENTIONAL,Closest",
		"Rating:AA-01-BB,90",
		"Rating:100,80",
	}, "\n")

	report, err := im.Run(strings.NewReader(batch), "seed-password")
	require.NoError(t, err)

	assert.Equal(t, 7, report.Lines, "comment lines are not counted")
	assert.Equal(t, 7, report.Imported)
	assert.Empty(t, report.Skipped)

	o, err := store.GetOwner("rui@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Rui Costa", o.Name)

	c, err := store.GetClient("ana@example.com")
	require.NoError(t, err)
	require.Len(t, c.Rentals, 1, "rental record replayed against the closest transport")
	assert.Equal(t, model.Point{X: 0, Y: 40}, c.Position)
	assert.InDelta(t, 80.0, c.Rating, 1e-9)

	tr, err := store.GetTransport("AA-01-BB")
	require.NoError(t, err)
	require.Len(t, tr.Rentals, 1)
	assert.InDelta(t, 90.0, tr.Rating, 1e-9)

	hyb, err := store.GetTransport("BB-02-CC")
	require.NoError(t, err)
	assert.InDelta(t, 40.0, hyb.Autonomy, 1e-9, "hybrid pools start at half capacity")
}

func TestImporterSkipsBadRecordsAndContinues(t *testing.T) {
	store := repository.NewStore()
	im := NewImporter(store, testBcryptCost)

	batch := strings.Join([]string{
		"Owner:Rui Costa,200,rui@example.com,Porto",
		"Transport:CONVENTIONAL,Tesla,AA-01-BB,999,50,2,0.5,100,0,10", // unknown owner nif
		"Client:broken-record",                                       // wrong field count
		"Spaceship:x,y",                                              // unknown keyword
		"no separator at all",
		"Client:Ana Silva,100,ana@example.com,Lisboa,0,0",
	}, "\n")

	report, err := im.Run(strings.NewReader(batch), "seed-password")
	require.NoError(t, err)

	assert.Equal(t, 6, report.Lines)
	assert.Equal(t, 2, report.Imported)
	require.Len(t, report.Skipped, 4)
	assert.Equal(t, 2, report.Skipped[0].Line)

	// The batch never aborts: records after the bad ones still land.
	assert.True(t, store.ExistsClient("ana@example.com"))
	assert.False(t, store.ExistsTransport("AA-01-BB"))
}
