package ports

import (
	"context"
	"time"

	"github.com/modportal/portal-api/internal/core/domain"
)

// ListFilter narrows a listing. Zero values mean "no filter".
type ListFilter struct {
	Status  domain.Status
	OwnerID int64
}

// StatusChange is the write applied by UpdateStatus. A nil Assignee leaves
// the assignee columns untouched.
type StatusChange struct {
	Status   domain.Status
	Assignee *domain.Identity
	At       time.Time
}

// EntityRepository persists one reviewable record type.
// List returns newest created_at first.
type EntityRepository[T any] interface {
	Create(ctx context.Context, entity *T) (int64, error)
	// FindByID returns a *domain.NotFoundError for unknown ids.
	FindByID(ctx context.Context, id int64) (*T, error)
	List(ctx context.Context, filter ListFilter) ([]*T, error)
	// UpdateStatus always refreshes updated_at, even when the status is unchanged.
	UpdateStatus(ctx context.Context, id int64, change StatusChange) error
}

type ReportRepository = EntityRepository[domain.Report]

type ApplicationRepository interface {
	EntityRepository[domain.Application]
	// LatestByUser returns the user's most recent application, or nil when
	// they never applied.
	LatestByUser(ctx context.Context, userID int64) (*domain.Application, error)
}
