package ports

import (
	"context"

	"github.com/modportal/portal-api/internal/core/domain"
)

// UserRepository is the credential store.
type UserRepository interface {
	// Create fails with domain.ErrUserExists when the username or email is taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByIdentifier matches the username or the email.
	FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	ListByRoles(ctx context.Context, roles ...domain.Role) ([]*domain.User, error)
	SetRole(ctx context.Context, id int64, role domain.Role) error
}
