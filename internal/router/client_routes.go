package router

import (
	"github.com/labstack/echo/v4"

	"github.com/fleetshare/fleetshare/internal/handler"
	"github.com/fleetshare/fleetshare/internal/middleware"
)

// RegisterClient registers client-scoped endpoints under /v1/client.
// All routes require a valid JWT and the CLIENT role.  Clients update
// their position, quote and request rentals, answer rating
// notifications and browse their history.
func RegisterClient(e *echo.Echo, h *handler.ClientHandler, jwtSecret string) {
	g := e.Group(
		"/v1/client",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleClient),
	)

	g.PUT("/location", h.UpdateLocation)
	g.POST("/rentals/quote", h.Quote)
	g.POST("/rentals/request", h.Request)
	g.GET("/rentals", h.History)
	g.GET("/notifications", h.Notifications)
	g.POST("/notifications/:id/rate", h.Rate)
}
