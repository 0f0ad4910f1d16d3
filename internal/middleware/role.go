package middleware // shared request processing for handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Role values stored in the JWT "role" claim.  Clients rent transports;
// owners list them and decide on rent requests.
const (
	RoleClient = "CLIENT"
	RoleOwner  = "OWNER"
)

// RequireRole returns a middleware that enforces that the authenticated
// account holds one of the given roles.  It assumes JWTAuth already ran
// and stored the role claim in the context; a missing or disallowed
// role aborts the request with 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
