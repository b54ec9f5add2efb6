package ports

import (
	"context"

	"github.com/modportal/portal-api/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, username, email, password string) (string, *domain.User, error)
	Login(ctx context.Context, identifier, password string) (string, *domain.User, error)
	Profile(ctx context.Context, actor domain.Identity) (*domain.User, error)
	Staff(ctx context.Context) ([]*domain.User, error)
}

// TokenIssuer signs session tokens for an identity.
type TokenIssuer interface {
	Issue(identity domain.Identity) (string, error)
}

// TokenVerifier resolves a raw bearer token into the identity it carries.
// An empty token yields domain.ErrUnauthenticated, a bad or expired one
// domain.ErrInvalidToken.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}

// PasswordHasher hides the slow hash behind an interface so tests can run
// at minimum cost.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
