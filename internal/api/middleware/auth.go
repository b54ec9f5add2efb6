package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/modportal/portal-api/internal/core/domain"
	"github.com/modportal/portal-api/internal/core/ports"
)

const identityKey = "identity"

// Auth verifies the bearer token and stores the caller's identity in the
// context. A missing token is ErrUnauthenticated (401), a bad or expired one
// ErrInvalidToken (403); the central error handler renders both.
func Auth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return err
			}

			identity, err := verifier.Verify(token)
			if err != nil {
				return err
			}

			c.Set(identityKey, identity)
			return next(c)
		}
	}
}

// IdentityFrom returns the identity stored by Auth.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	id, ok := c.Get(identityKey).(domain.Identity)
	return id, ok
}

// SetIdentity stores an identity the way Auth does. Used by handler tests.
func SetIdentity(c echo.Context, id domain.Identity) {
	c.Set(identityKey, id)
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", domain.ErrUnauthenticated
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", domain.ErrUnauthenticated
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", domain.ErrUnauthenticated
	}
	return token, nil
}
