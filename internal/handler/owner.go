package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fleetshare/fleetshare/internal/model"
	"github.com/fleetshare/fleetshare/internal/repository"
	"github.com/fleetshare/fleetshare/internal/service"
)

// OwnerHandler serves the endpoints a fleet owner uses: listing
// vehicles, deciding on rent requests, rating clients and checking
// income.
type OwnerHandler struct {
	Store   *repository.Store
	Rentals *service.RentalService
	Stats   *service.StatsService
}

func NewOwnerHandler(store *repository.Store, rentals *service.RentalService, stats *service.StatsService) *OwnerHandler {
	return &OwnerHandler{Store: store, Rentals: rentals, Stats: stats}
}

type addTransportReq struct {
	Class        string  `json:"class"` // CONVENTIONAL | HYBRID
	Brand        string  `json:"brand"`
	Registration string  `json:"registration"`
	AvgVelocity  float64 `json:"avg_velocity"`
	PricePerKm   float64 `json:"price_per_km"`
	Rate         float64 `json:"rate"`
	Capacity     float64 `json:"capacity"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
}

// AddTransport registers a new vehicle under the authenticated owner.
func (h *OwnerHandler) AddTransport(c echo.Context) error {
	email, err := emailFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req addTransportReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Registration = strings.TrimSpace(req.Registration)
	if req.Registration == "" || req.Brand == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "brand/registration required"})
	}
	if req.AvgVelocity <= 0 || req.PricePerKm <= 0 || req.Rate <= 0 || req.Capacity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "velocity, price, rate and capacity must be positive"})
	}

	owner, err := h.Store.GetOwner(email)
	if err != nil {
		return respondError(c, err)
	}

	pos := model.Point{X: req.X, Y: req.Y}
	var t *model.Transport
	switch strings.ToUpper(req.Class) {
	case string(model.Conventional):
		t = model.NewConventional(req.Brand, req.Registration, owner.NIF, owner.Email, req.AvgVelocity, req.PricePerKm, req.Rate, req.Capacity, pos)
	case string(model.Hybrid):
		t = model.NewHybrid(req.Brand, req.Registration, owner.NIF, owner.Email, req.AvgVelocity, req.PricePerKm, req.Rate, req.Capacity, pos)
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "class must be CONVENTIONAL or HYBRID"})
	}

	if err := h.Store.AddTransport(t); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

// Fleet lists the owner's vehicles.
func (h *OwnerHandler) Fleet(c echo.Context) error {
	email, err := emailFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ts := h.Store.TransportsOfOwner(email)
	return c.JSON(http.StatusOK, echo.Map{"transports": ts, "count": len(ts)})
}

// Income reports the fleet earnings per transport over an optional date
// range.
func (h *OwnerHandler) Income(c echo.Context) error {
	email, err := emailFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	from, to, err := dateRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date range"})
	}
	perTransport, total, err := h.Stats.OwnerIncome(email, from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"per_transport": perTransport, "total": total})
}

// TransportIncome reports the earnings of a single vehicle over an
// optional date range.  Owners can only query their own fleet.
func (h *OwnerHandler) TransportIncome(c echo.Context) error {
	email, err := emailFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	registration := c.Param("registration")
	t, err := h.Store.GetTransport(registration)
	if err != nil {
		return respondError(c, err)
	}
	if t.OwnerEmail != email {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your transport"})
	}
	from, to, err := dateRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date range"})
	}
	income, err := h.Stats.TransportIncome(registration, from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"registration": registration, "income": income})
}

// Notifications lists the owner's pending notifications: rent requests
// awaiting a decision and rating requests for finished trips.
func (h *OwnerHandler) Notifications(c echo.Context) error {
	email, err := emailFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ns, err := h.Store.PendingNotificationsOf(email)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"notifications": ns})
}

type decisionReq struct {
	Accept bool `json:"accept"`
	Refill bool `json:"refill"` // authorize a refill when range falls short
}

// Decision resolves a pending rent request.  Acceptance applies the
// whole rental; when the transport cannot reach the destination and no
// refill was authorized the request ends declined instead.
func (h *OwnerHandler) Decision(c echo.Context) error {
	email, err := emailFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid notification id"})
	}
	var req decisionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	var n model.Notification
	if req.Accept {
		n, err = h.Rentals.Accept(c.Request().Context(), email, id, req.Refill)
	} else {
		n, err = h.Rentals.Decline(email, id)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"notification": n})
}

// Rate answers a rating notification by scoring the client of a
// finished trip.
func (h *OwnerHandler) Rate(c echo.Context) error {
	email, err := emailFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid notification id"})
	}
	var req rateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Rating < 0 || req.Rating > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be between 0 and 100"})
	}
	if err := h.Rentals.RateClient(email, id, req.Rating); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// History lists the owner's completed rentals across the whole fleet.
func (h *OwnerHandler) History(c echo.Context) error {
	email, err := emailFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	from, to, err := dateRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date range"})
	}
	o, err := h.Store.GetOwner(email)
	if err != nil {
		return respondError(c, err)
	}
	rentals := service.FilterRentalsBetween(o.Rentals, from, to)
	return c.JSON(http.StatusOK, echo.Map{"rentals": rentals, "count": len(rentals)})
}
