package service

import (
	"fmt"

	"github.com/modportal/portal-api/internal/core/domain"
)

// Workflow is the single place that decides who may move which entity into
// which status. Repositories never check roles themselves.
type Workflow struct{}

func NewWorkflow() *Workflow {
	return &Workflow{}
}

// CanReview reports whether actor may transition entities of the given type.
// Only staff roles review.
func (w *Workflow) CanReview(actor domain.Identity, entity domain.EntityType) error {
	if !entity.Valid() {
		return fmt.Errorf("unknown entity type %q", entity)
	}
	if !actor.Role.IsStaff() {
		return fmt.Errorf("%w: role %q cannot change %s status", domain.ErrForbidden, actor.Role, entity)
	}
	return nil
}

// Authorize checks a requested transition and returns what must be written.
// Tasks and bugs record the reviewer as assignee, applications do not.
func (w *Workflow) Authorize(actor domain.Identity, entity domain.EntityType, current, requested domain.Status) (domain.Transition, error) {
	if err := w.CanReview(actor, entity); err != nil {
		return domain.Transition{}, err
	}
	if !entity.Allows(requested) {
		return domain.Transition{}, domain.NewValidationError(fmt.Sprintf("invalid %s status %q", entity, requested))
	}
	if !current.CanTransitionTo(entity, requested) {
		return domain.Transition{}, fmt.Errorf("%w: %s cannot move from %s to %s",
			domain.ErrInvalidTransition, entity, current, requested)
	}

	t := domain.Transition{Status: requested}
	if entity.Stamps() {
		assignee := actor
		t.Assignee = &assignee
	}
	return t, nil
}
