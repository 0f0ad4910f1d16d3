package router // defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/fleetshare/fleetshare/internal/handler"
	"github.com/fleetshare/fleetshare/internal/middleware"
)

// RegisterRoutes registers routes that need no authentication.
// Currently it exposes only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints.  Session-less
// operations live under /v1/auth; /v1/me and /v1/auth/logout require a
// valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh) // rotates the refresh token
	g.POST("/logout", a.Logout, middleware.JWTAuth(jwtSecret))

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(middleware.RoleOwner, middleware.RoleClient))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated browse endpoints: the
// available-transport listing, the top-clients ranking and the weather
// readout.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler) {
	e.GET("/v1/transports/available", p.AvailableTransports)
	e.GET("/v1/stats/top-clients", p.TopClients)
	e.GET("/v1/weather", p.Weather)
}

// RegisterData registers the bulk import and snapshot endpoints.  They
// mutate or replace the whole store, so both roles are kept out and the
// operator is expected to shield them at the network level.
func RegisterData(e *echo.Echo, d *handler.DataHandler) {
	g := e.Group("/v1/data")
	g.POST("/import", d.Import)
	g.POST("/snapshot/save", d.SnapshotSave)
	g.POST("/snapshot/load", d.SnapshotLoad)
}
