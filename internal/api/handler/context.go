package handler

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/modportal/portal-api/internal/api/middleware"
	"github.com/modportal/portal-api/internal/core/domain"
)

// actor returns the identity injected by the Auth middleware. A route wired
// without Auth fails closed with ErrUnauthenticated.
func actor(c echo.Context) (domain.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok || id.UserID == 0 {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	return id, nil
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("id must be a positive integer")
	}
	return id, nil
}

// bind decodes the request body and runs the registered validator.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return domain.NewValidationError("invalid payload")
		}
		return err
	}
	return c.Validate(dst)
}
