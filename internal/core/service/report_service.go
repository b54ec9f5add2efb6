package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/modportal/portal-api/internal/core/domain"
	"github.com/modportal/portal-api/internal/core/ports"
)

// ReportService handles one kind of report, task or bug.
type ReportService struct {
	kind   domain.EntityType
	repo   ports.ReportRepository
	media  ports.MediaStore
	deps   ReviewDeps
	logger zerolog.Logger
}

func NewReportService(kind domain.EntityType, repo ports.ReportRepository, media ports.MediaStore, deps ReviewDeps, logger zerolog.Logger) *ReportService {
	return &ReportService{
		kind:   kind,
		repo:   repo,
		media:  media,
		deps:   deps.withDefaults(),
		logger: logger.With().Str("component", string(kind)).Logger(),
	}
}

// Create stores a new pending report authored by actor. An attached file is
// saved first and removed again if the insert fails.
func (s *ReportService) Create(ctx context.Context, actor domain.Identity, input ports.CreateReportInput) (int64, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return 0, domain.NewValidationError("description is required")
	}

	if input.Media != nil && s.media == nil {
		return 0, domain.NewValidationError("media uploads are not accepted")
	}

	scope := fmt.Sprintf("%s:%d", s.kind, actor.UserID)
	keyed, id, replayed, err := claim(ctx, s.deps, s.logger, scope, input.IdempotencyKey)
	if err != nil {
		return 0, err
	}
	if replayed {
		return id, nil
	}

	var ref *string
	if input.Media != nil {
		saved, err := s.media.Save(ctx, input.Media.Filename, input.Media.Content)
		if err != nil {
			keyed.abandon(ctx)
			return 0, fmt.Errorf("save media: %w", err)
		}
		ref = &saved
	}

	now := s.deps.Clock.Now().UTC()
	report := &domain.Report{
		AuthorID:       actor.UserID,
		AuthorUsername: actor.Username,
		Description:    description,
		MediaReference: ref,
		Status:         domain.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	id, err = s.repo.Create(ctx, report)
	if err != nil {
		keyed.abandon(ctx)
		if ref != nil {
			if rmErr := s.media.Remove(ctx, *ref); rmErr != nil {
				s.logger.Warn().Err(rmErr).Str("media", *ref).Msg("orphaned media not removed")
			}
		}
		return 0, err
	}

	keyed.complete(ctx, id)

	s.logger.Info().Int64("id", id).Str("author", actor.Username).Bool("media", ref != nil).Msg("report created")
	return id, nil
}

// List returns the reports visible to actor, newest first. The status filter
// applies to tasks only and is ignored for bugs.
func (s *ReportService) List(ctx context.Context, actor domain.Identity, status domain.Status) ([]*domain.Report, error) {
	filter := visibility(actor)
	if status != "" && s.kind == domain.EntityTask {
		if !s.kind.Allows(status) {
			return nil, domain.NewValidationError(fmt.Sprintf("invalid %s status %q", s.kind, status))
		}
		filter.Status = status
	}
	return s.repo.List(ctx, filter)
}

func (s *ReportService) UpdateStatus(ctx context.Context, actor domain.Identity, id int64, status domain.Status) error {
	return transition[domain.Report](ctx, s.repo, s.deps, s.logger, s.kind, actor, id, status)
}
