package ports

import (
	"context"
	"io"

	"github.com/modportal/portal-api/internal/core/domain"
)

// MediaStore keeps uploaded files and returns an opaque reference to them.
type MediaStore interface {
	Save(ctx context.Context, filename string, content io.Reader) (string, error)
	Remove(ctx context.Context, ref string) error
}

// IdempotencyStore remembers which id a keyed create produced.
//
// Reserve claims scope/key before the create runs. When another caller
// already holds it, claimed is false and id is that caller's result, or 0
// while it is still in flight. Remember completes a reservation, Release
// drops one that never completed.
type IdempotencyStore interface {
	Reserve(ctx context.Context, scope, key string) (claimed bool, id int64, err error)
	Remember(ctx context.Context, scope, key string, id int64) error
	Release(ctx context.Context, scope, key string) error
}

// StatusNotifier fans out persisted status changes.
type StatusNotifier interface {
	StatusChanged(ctx context.Context, event domain.StatusChangeEvent) error
}

// Pinger is implemented by backends that take part in readiness checks.
type Pinger interface {
	Ping(ctx context.Context) error
}
