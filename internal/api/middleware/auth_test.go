package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/modportal/portal-api/internal/core/domain"
)

type stubVerifier struct {
	identity domain.Identity
	err      error
	got      string
}

func (s *stubVerifier) Verify(token string) (domain.Identity, error) {
	s.got = token
	return s.identity, s.err
}

func newContext(header string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	alice := domain.Identity{UserID: 1, Username: "alice", Email: "a@x", Role: domain.RoleUser}
	v := &stubVerifier{identity: alice}
	c, rec := newContext("Bearer abc.def.ghi")

	called := false
	handler := Auth(v)(func(c echo.Context) error {
		called = true
		got, ok := IdentityFrom(c)
		if !ok || got != alice {
			t.Fatalf("identity not set: %+v", got)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if v.got != "abc.def.ghi" {
		t.Fatalf("verifier got %q", v.got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	for _, header := range []string{"", "Token abc", "Bearer", "Bearer   "} {
		c, _ := newContext(header)
		handler := Auth(&stubVerifier{})(func(c echo.Context) error {
			t.Fatalf("should not reach next for %q", header)
			return nil
		})
		if err := handler(c); !errors.Is(err, domain.ErrUnauthenticated) {
			t.Fatalf("header %q: expected ErrUnauthenticated, got %v", header, err)
		}
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	c, _ := newContext("bearer not-a-token")
	v := &stubVerifier{err: domain.ErrInvalidToken}

	handler := Auth(v)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if v.got != "not-a-token" {
		t.Fatalf("scheme should be case-insensitive, verifier got %q", v.got)
	}
}
