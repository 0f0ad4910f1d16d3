package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fleetshare/fleetshare/internal/model"
	"github.com/fleetshare/fleetshare/internal/repository"
	"github.com/fleetshare/fleetshare/internal/service"
)

// ClientHandler serves the endpoints a renting client uses: moving
// around, quoting and requesting trips, answering rating notifications
// and browsing history.
type ClientHandler struct {
	Store   *repository.Store
	Rentals *service.RentalService
}

func NewClientHandler(store *repository.Store, rentals *service.RentalService) *ClientHandler {
	return &ClientHandler{Store: store, Rentals: rentals}
}

type locationReq struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// UpdateLocation moves the client to a new position.  Quotes taken
// afterwards measure from here.
func (h *ClientHandler) UpdateLocation(c echo.Context) error {
	email, err := emailFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req locationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Store.UpdateClientLocation(email, model.Point{X: req.X, Y: req.Y}); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Quote prices a trip with the requested selection strategy without
// contacting the owner.
func (h *ClientHandler) Quote(c echo.Context) error {
	email, err := emailFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req service.QuoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	q, err := h.Rentals.QuoteTrip(c.Request().Context(), email, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, q)
}

// Request quotes the trip and sends it to the transport's owner as a
// pending rent request.
func (h *ClientHandler) Request(c echo.Context) error {
	email, err := emailFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req service.QuoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	id, q, err := h.Rentals.Propose(c.Request().Context(), email, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusAccepted, echo.Map{
		"notification_id": id,
		"quote":           q,
		"status":          "pending owner decision",
	})
}

// Notifications lists the client's pending notifications (rating
// requests for finished trips).
func (h *ClientHandler) Notifications(c echo.Context) error {
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

type rateReq struct {
	Rating float64 `json:"rating"`
}

// Rate answers a rating notification by scoring the transport of a
// finished trip.
func (h *ClientHandler) Rate(c echo.Context) error {
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
	if err := h.Rentals.RateTransport(email, id, req.Rating); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// History lists the client's completed rentals, optionally bounded by
// ?from= and ?to=.
func (h *ClientHandler) History(c echo.Context) error {
	email, err := emailFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	from, to, err := dateRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date range"})
	}
	cl, err := h.Store.GetClient(email)
	if err != nil {
		return respondError(c, err)
	}
	rentals := service.FilterRentalsBetween(cl.Rentals, from, to)
	return c.JSON(http.StatusOK, echo.Map{"rentals": rentals, "count": len(rentals)})
}
