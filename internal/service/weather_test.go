package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetshare/fleetshare/internal/model"
)

func TestParseWttr(t *testing.T) {
	r, err := parseWttr("'☀️ 0.0mm'")
	require.NoError(t, err)
	assert.InDelta(t, 0.0, r.Precipitation, 1e-9)

	r, err = parseWttr("⛅️ 0.4mm")
	require.NoError(t, err)
	assert.InDelta(t, 0.4, r.Precipitation, 1e-9)

	_, err = parseWttr("garbage")
	assert.Error(t, err)

	_, err = parseWttr("sun notanumbermm")
	assert.Error(t, err)
}

func TestReadingFetchesAndParses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("'sun 1.2mm'"))
	}))
	defer srv.Close()

	w := NewWeatherClient(nil, time.Minute)
	w.BaseURL = srv.URL

	got := w.Reading(context.Background(), model.Point{X: 38.7, Y: -9.1})
	assert.InDelta(t, 1.2, got.Precipitation, 1e-9)
	assert.Equal(t, "sun", got.Symbol)
}

func TestReadingFallsBackToNeutral(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	w := NewWeatherClient(nil, time.Minute)
	w.BaseURL = srv.URL

	got := w.Reading(context.Background(), model.Point{})
	assert.InDelta(t, 0.0, got.Precipitation, 1e-9, "failures never block the rental flow")
}
