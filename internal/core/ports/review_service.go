package ports

import (
	"context"
	"io"

	"github.com/modportal/portal-api/internal/core/domain"
)

// TransitionPolicy decides whether an actor may move an entity between statuses.
type TransitionPolicy interface {
	// CanReview fails with domain.ErrForbidden when actor may not transition entity at all.
	CanReview(actor domain.Identity, entity domain.EntityType) error
	Authorize(actor domain.Identity, entity domain.EntityType, current, requested domain.Status) (domain.Transition, error)
}

// MediaUpload is a file attached to a report submission.
type MediaUpload struct {
	Filename string
	Content  io.Reader
}

type CreateReportInput struct {
	Description    string
	Media          *MediaUpload
	IdempotencyKey string
}

// ReportService serves both tasks and bugs; each instance is bound to one kind.
type ReportService interface {
	Create(ctx context.Context, actor domain.Identity, input CreateReportInput) (int64, error)
	List(ctx context.Context, actor domain.Identity, status domain.Status) ([]*domain.Report, error)
	UpdateStatus(ctx context.Context, actor domain.Identity, id int64, status domain.Status) error
}

type SubmitApplicationInput struct {
	Position       domain.Position
	Answers        []string
	IdempotencyKey string
}

type ApplicationService interface {
	Submit(ctx context.Context, actor domain.Identity, input SubmitApplicationInput) (int64, error)
	List(ctx context.Context, actor domain.Identity) ([]*domain.Application, error)
	UpdateStatus(ctx context.Context, actor domain.Identity, id int64, status domain.Status) error
}
