package handler // HTTP handlers for the rental marketplace API

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fleetshare/fleetshare/internal/repository"
)

// emailFromContext reads the authenticated account email stored by the
// JWT middleware.
func emailFromContext(c echo.Context) (string, error) {
	email, ok := c.Get("email").(string)
	if !ok || email == "" {
		return "", errors.New("missing email in context")
	}
	return email, nil
}

// respondError maps domain sentinel errors onto HTTP statuses so every
// handler reports failures the same way.  Unrecognized errors become a
// 500 with a generic message; the original text is not leaked.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrNoAvailableTransport):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	case errors.Is(err, repository.ErrRegistrationExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "registration already exists"})
	case errors.Is(err, repository.ErrNotificationResolved):
		return c.JSON(http.StatusConflict, echo.Map{"error": "notification already resolved"})
	case errors.Is(err, repository.ErrInsufficientAutonomy):
		return c.JSON(http.StatusConflict, echo.Map{"error": "insufficient autonomy"})
	case errors.Is(err, repository.ErrNotEvaluableYet):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// dateRange parses the optional ?from= and ?to= query parameters as
// RFC 3339 timestamps or plain dates.  A zero time means the bound is
// open on that side.
func dateRange(c echo.Context) (from, to time.Time, err error) {
	parse := func(s string) (time.Time, error) {
		if s == "" {
			return time.Time{}, nil
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t, nil
		}
		return time.Parse("2006-01-02", s)
	}
	if from, err = parse(c.QueryParam("from")); err != nil {
		return
	}
	to, err = parse(c.QueryParam("to"))
	return
}

// pathID parses the :id path parameter as a notification id.
func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}
