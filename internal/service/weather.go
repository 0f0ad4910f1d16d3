package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fleetshare/fleetshare/internal/model"
)

// WeatherReading is one precipitation observation at a position.
type WeatherReading struct {
	Symbol        string  `json:"symbol"`
	Precipitation float64 `json:"precipitation_mm"`
}

// PrecipitationSource supplies a precipitation magnitude for a
// position.  The rental protocol uses it for the weather term of the
// delay adjustment and must keep working when the source fails.
type PrecipitationSource interface {
	Reading(ctx context.Context, pos model.Point) WeatherReading
}

// WeatherClient looks precipitation up from the wttr.in service and
// caches readings in redis.  Every failure path (HTTP error, parse
// error, cache miss handling) degrades to a neutral reading so the
// rental flow never aborts on weather.
type WeatherClient struct {
	BaseURL string
	HTTP    *http.Client
	Cache   *redis.Client // nil disables caching
	TTL     time.Duration
}

// NewWeatherClient builds a weather client.  cache may be nil.
func NewWeatherClient(cache *redis.Client, ttl time.Duration) *WeatherClient {
	return &WeatherClient{
		BaseURL: "https://wttr.in",
		HTTP:    &http.Client{Timeout: 5 * time.Second},
		Cache:   cache,
		TTL:     ttl,
	}
}

// neutralReading is substituted whenever the collaborator fails.
func neutralReading() WeatherReading {
	return WeatherReading{Symbol: "?", Precipitation: 0}
}

// Reading returns the precipitation at the position, served from cache
// when possible.
func (w *WeatherClient) Reading(ctx context.Context, pos model.Point) WeatherReading {
	key := fmt.Sprintf("weather:%.2f:%.2f", pos.X, pos.Y)
	if w.Cache != nil {
		if raw, err := w.Cache.Get(ctx, key).Bytes(); err == nil {
			var cached WeatherReading
			if json.Unmarshal(raw, &cached) == nil {
				return cached
			}
		}
	}

	reading, err := w.fetch(ctx, pos)
	if err != nil {
		log.Printf("weather: lookup failed, using neutral fallback: %v", err)
		return neutralReading()
	}

	if w.Cache != nil {
		if raw, err := json.Marshal(reading); err == nil {
			_ = w.Cache.Set(ctx, key, raw, w.TTL).Err()
		}
	}
	return reading
}

// fetch asks wttr.in for a "<symbol> <precipitation>mm" line.
func (w *WeatherClient) fetch(ctx context.Context, pos model.Point) (WeatherReading, error) {
	url := fmt.Sprintf("%s/~%g,%g?format=%%c+%%p", w.BaseURL, pos.X, pos.Y)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return WeatherReading{}, err
	}
	resp, err := w.HTTP.Do(req)
	if err != nil {
		return WeatherReading{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return WeatherReading{}, fmt.Errorf("weather service returned %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return WeatherReading{}, err
	}
	return parseWttr(string(body))
}

// parseWttr extracts the symbol and the millimetre figure from a line
// such as "⛅️ 0.4mm".
func parseWttr(line string) (WeatherReading, error) {
	fields := strings.Fields(strings.Trim(strings.TrimSpace(line), "'"))
	if len(fields) < 2 {
		return WeatherReading{}, fmt.Errorf("malformed weather line %q", line)
	}
	var mm float64
	if _, err := fmt.Sscanf(strings.TrimSuffix(fields[len(fields)-1], "mm"), "%f", &mm); err != nil {
		return WeatherReading{}, fmt.Errorf("malformed precipitation in %q", line)
	}
	return WeatherReading{Symbol: fields[0], Precipitation: mm}, nil
}
