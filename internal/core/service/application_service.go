package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/modportal/portal-api/internal/core/domain"
	"github.com/modportal/portal-api/internal/core/ports"
)

const submitLockKey = "lock"

type ApplicationService struct {
	repo     ports.ApplicationRepository
	cooldown time.Duration
	deps     ReviewDeps
	logger   zerolog.Logger
}

// NewApplicationService builds the service. A non-positive cooldown disables
// the per-user rate limit.
func NewApplicationService(repo ports.ApplicationRepository, cooldown time.Duration, deps ReviewDeps, logger zerolog.Logger) *ApplicationService {
	return &ApplicationService{
		repo:     repo,
		cooldown: cooldown,
		deps:     deps.withDefaults(),
		logger:   logger.With().Str("component", string(domain.EntityApplication)).Logger(),
	}
}

func (s *ApplicationService) Submit(ctx context.Context, actor domain.Identity, input ports.SubmitApplicationInput) (int64, error) {
	if !input.Position.Valid() {
		return 0, domain.NewValidationError(fmt.Sprintf("position must be one of: %s, %s", domain.PositionHelper, domain.PositionModerator))
	}
	if len(input.Answers) != domain.AnswerCount {
		return 0, domain.NewValidationError(fmt.Sprintf("exactly %d answers are required, got %d", domain.AnswerCount, len(input.Answers)))
	}

	var answers domain.Answers
	for i, a := range input.Answers {
		a = strings.TrimSpace(a)
		if a == "" {
			return 0, domain.NewValidationError(fmt.Sprintf("answer %d is empty", i+1))
		}
		answers[i] = a
	}

	scope := fmt.Sprintf("%s:%d", domain.EntityApplication, actor.UserID)
	keyed, id, replayed, err := claim(ctx, s.deps, s.logger, scope, input.IdempotencyKey)
	if err != nil {
		return 0, err
	}
	if replayed {
		return id, nil
	}

	id, err = s.insert(ctx, actor, input.Position, answers)
	if err != nil {
		keyed.abandon(ctx)
		return 0, err
	}

	keyed.complete(ctx, id)

	s.logger.Info().Int64("id", id).Str("applicant", actor.Username).Str("position", string(input.Position)).Msg("application submitted")
	return id, nil
}

// insert runs the cooldown check and the insert while holding the
// applicant's submit lock, so two concurrent submissions cannot both pass
// the check.
func (s *ApplicationService) insert(ctx context.Context, actor domain.Identity, position domain.Position, answers domain.Answers) (int64, error) {
	if s.cooldown > 0 {
		unlock, err := s.lockSubmissions(ctx, actor.UserID)
		if err != nil {
			return 0, err
		}
		defer unlock()
	}

	now := s.deps.Clock.Now().UTC()
	if s.cooldown > 0 {
		latest, err := s.repo.LatestByUser(ctx, actor.UserID)
		if err != nil {
			return 0, err
		}
		if latest != nil && now.Sub(latest.CreatedAt) < s.cooldown {
			return 0, fmt.Errorf("%w: next application allowed after %s",
				domain.ErrApplicationCooldown, latest.CreatedAt.Add(s.cooldown).Format(time.RFC3339))
		}
	}

	return s.repo.Create(ctx, &domain.Application{
		UserID:    actor.UserID,
		Username:  actor.Username,
		Position:  position,
		Answers:   answers,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// lockSubmissions claims the applicant's submit lock through the idempotency
// store. Losing it means another submission is in progress.
func (s *ApplicationService) lockSubmissions(ctx context.Context, userID int64) (func(), error) {
	scope := fmt.Sprintf("%s-submit:%d", domain.EntityApplication, userID)
	claimed, _, err := s.deps.Idempotency.Reserve(ctx, scope, submitLockKey)
	if err != nil {
		s.logger.Warn().Err(err).Int64("user", userID).Msg("submit lock unavailable")
		return func() {}, nil
	}
	if !claimed {
		return nil, fmt.Errorf("%w: another application is being submitted", domain.ErrApplicationCooldown)
	}
	return func() {
		if err := s.deps.Idempotency.Release(context.WithoutCancel(ctx), scope, submitLockKey); err != nil {
			s.logger.Warn().Err(err).Int64("user", userID).Msg("submit lock not released")
		}
	}, nil
}

func (s *ApplicationService) List(ctx context.Context, actor domain.Identity) ([]*domain.Application, error) {
	return s.repo.List(ctx, visibility(actor))
}

func (s *ApplicationService) UpdateStatus(ctx context.Context, actor domain.Identity, id int64, status domain.Status) error {
	return transition[domain.Application](ctx, s.repo, s.deps, s.logger, domain.EntityApplication, actor, id, status)
}
