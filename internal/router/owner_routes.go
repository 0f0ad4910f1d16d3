package router

import (
	"github.com/labstack/echo/v4"

	"github.com/fleetshare/fleetshare/internal/handler"
	"github.com/fleetshare/fleetshare/internal/middleware"
)

// RegisterOwner registers owner-scoped endpoints under /v1/owner.
// All routes require a valid JWT and the OWNER role.  Owners manage
// their fleet, decide on rent requests, rate clients and check income.
func RegisterOwner(e *echo.Echo, h *handler.OwnerHandler, jwtSecret string) {
	g := e.Group(
		"/v1/owner",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleOwner),
	)

	// ---- Fleet ----
	g.POST("/transports", h.AddTransport)
	g.GET("/transports", h.Fleet)
	g.GET("/transports/:registration/income", h.TransportIncome)
	g.GET("/income", h.Income)

	// ---- Rent requests and ratings ----
	g.GET("/notifications", h.Notifications)
	g.POST("/notifications/:id/decision", h.Decision)
	g.POST("/notifications/:id/rate", h.Rate)

	// ---- History ----
	g.GET("/rentals", h.History)
}
