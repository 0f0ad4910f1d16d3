package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fleetshare/fleetshare/internal/model"
	"github.com/fleetshare/fleetshare/internal/repository"
	"github.com/fleetshare/fleetshare/internal/service"
)

// PublicHandler serves endpoints that need no authentication: browsing
// available transports, ranking clients and a weather readout.
type PublicHandler struct {
	Store   *repository.Store
	Stats   *service.StatsService
	WeatherSrc service.PrecipitationSource
}

func NewPublicHandler(store *repository.Store, stats *service.StatsService, weather service.PrecipitationSource) *PublicHandler {
	return &PublicHandler{Store: store, Stats: stats, WeatherSrc: weather}
}

// availableTransport is the sanitized listing row; rental histories and
// owner back-references stay private.
type availableTransport struct {
	Registration string  `json:"registration"`
	Brand        string  `json:"brand"`
	Class        string  `json:"class"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	PricePerKm   float64 `json:"price_per_km"`
	Autonomy     float64 `json:"autonomy"`
	Rating       float64 `json:"rating"`
}

// AvailableTransports lists bookable vehicles, optionally filtered by
// ?class= and a ?min_autonomy= floor.
func (h *PublicHandler) AvailableTransports(c echo.Context) error {
	class := strings.ToUpper(strings.TrimSpace(c.QueryParam("class")))
	minAutonomy := 0.0
	if raw := c.QueryParam("min_autonomy"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid min_autonomy"})
		}
		minAutonomy = v
	}

	ts, err := h.Stats.AvailableWithAutonomy(class, minAutonomy, time.Now())
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	out := make([]availableTransport, 0, len(ts))
	for _, t := range ts {
		out = append(out, availableTransport{
			Registration: t.Registration,
			Brand:        t.Brand,
			Class:        string(t.Class),
			X:            t.Position.X,
			Y:            t.Position.Y,
			PricePerKm:   t.PricePerKm,
			Autonomy:     t.Autonomy,
			Rating:       t.Rating,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"transports": out, "count": len(out)})
}

// TopClients ranks clients by completed rents or travelled distance.
// Query: ?by=rents|kms and ?n= for the cutoff.
func (h *PublicHandler) TopClients(c echo.Context) error {
	by := c.QueryParam("by")
	if by == "" {
		by = service.ByRents
	}
	n := 10
	if raw := c.QueryParam("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid n"})
		}
		n = v
	}
	rows, err := h.Stats.TopClients(n, by)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"clients": rows})
}

// Weather returns the current reading for a coordinate pair.  Clients
// use it to decorate trip quotes; the same source feeds the delay term.
func (h *PublicHandler) Weather(c echo.Context) error {
	x, errX := strconv.ParseFloat(c.QueryParam("x"), 64)
	y, errY := strconv.ParseFloat(c.QueryParam("y"), 64)
	if errX != nil || errY != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "x and y query params required"})
	}
	reading := h.WeatherSrc.Reading(c.Request().Context(), model.Point{X: x, Y: y})
	return c.JSON(http.StatusOK, reading)
}
