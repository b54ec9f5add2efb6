package service

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/modportal/portal-api/internal/core/domain"
	"github.com/modportal/portal-api/internal/core/ports"
)

const (
	defaultReplayWait  = 2 * time.Second
	replayPollInterval = 25 * time.Millisecond
)

// ReviewDeps are the collaborators shared by every reviewable entity service.
// A nil Idempotency gets an in-process store and a nil Notifier drops events.
// ReplayWait bounds how long a duplicate keyed request waits for the first.
type ReviewDeps struct {
	Policy      ports.TransitionPolicy
	Idempotency ports.IdempotencyStore
	Notifier    ports.StatusNotifier
	Clock       clockwork.Clock
	ReplayWait  time.Duration
}

func (d ReviewDeps) withDefaults() ReviewDeps {
	if d.Policy == nil {
		d.Policy = NewWorkflow()
	}
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	if d.Idempotency == nil {
		d.Idempotency = NewMemoryIdempotencyStore(d.Clock, 0)
	}
	if d.Notifier == nil {
		d.Notifier = NopNotifier{}
	}
	if d.ReplayWait <= 0 {
		d.ReplayWait = defaultReplayWait
	}
	return d
}

type reviewable interface {
	OwnerID() int64
	CurrentStatus() domain.Status
}

// transition is the status-update path for every entity type:
// role check, lookup, policy decision, single-row write, notification.
func transition[T any, PT interface {
	*T
	reviewable
}](
	ctx context.Context,
	repo ports.EntityRepository[T],
	deps ReviewDeps,
	logger zerolog.Logger,
	entity domain.EntityType,
	actor domain.Identity,
	id int64,
	requested domain.Status,
) error {
	if err := deps.Policy.CanReview(actor, entity); err != nil {
		return err
	}

	found, err := repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	current := PT(found)

	decision, err := deps.Policy.Authorize(actor, entity, current.CurrentStatus(), requested)
	if err != nil {
		return err
	}

	now := deps.Clock.Now().UTC()
	if err := repo.UpdateStatus(ctx, id, ports.StatusChange{
		Status:   decision.Status,
		Assignee: decision.Assignee,
		At:       now,
	}); err != nil {
		return err
	}

	logger.Info().
		Str("entity", string(entity)).
		Int64("id", id).
		Str("from", string(current.CurrentStatus())).
		Str("to", string(decision.Status)).
		Str("actor", actor.Username).
		Msg("status changed")

	event := domain.StatusChangeEvent{
		Entity:        entity,
		ID:            id,
		Status:        decision.Status,
		ActorID:       actor.UserID,
		ActorUsername: actor.Username,
		AuthorID:      current.OwnerID(),
		At:            now,
	}
	if err := deps.Notifier.StatusChanged(ctx, event); err != nil {
		logger.Warn().Err(err).Str("entity", string(entity)).Int64("id", id).Msg("status notification failed")
	}
	return nil
}

// visibility scopes a listing to the caller: staff see everything,
// everyone else only what they submitted.
func visibility(actor domain.Identity) ports.ListFilter {
	if actor.Role.IsStaff() {
		return ports.ListFilter{}
	}
	return ports.ListFilter{OwnerID: actor.UserID}
}

// keyedCreate is a create guarded by an idempotency reservation.
type keyedCreate struct {
	store  ports.IdempotencyStore
	logger zerolog.Logger
	scope  string
	key    string
	held   bool
}

// claim reserves scope and key before a create runs. When an earlier request
// with the same key already produced an id, that id is returned with
// replayed set. While the earlier request is still running, claim polls
// until it finishes or deps.ReplayWait passes, which yields
// domain.ErrRequestInFlight. Store failures are logged and the create
// proceeds unguarded.
func claim(ctx context.Context, deps ReviewDeps, logger zerolog.Logger, scope, key string) (*keyedCreate, int64, bool, error) {
	kc := &keyedCreate{store: deps.Idempotency, logger: logger, scope: scope, key: key}
	if key == "" {
		return kc, 0, false, nil
	}

	deadline := time.NewTimer(deps.ReplayWait)
	defer deadline.Stop()
	for {
		claimed, id, err := deps.Idempotency.Reserve(ctx, scope, key)
		switch {
		case err != nil:
			logger.Warn().Err(err).Str("scope", scope).Msg("idempotency reserve failed")
			return kc, 0, false, nil
		case claimed:
			kc.held = true
			return kc, 0, false, nil
		case id != 0:
			logger.Info().Str("scope", scope).Int64("id", id).Msg("idempotent replay")
			return kc, id, true, nil
		}

		select {
		case <-ctx.Done():
			return nil, 0, false, ctx.Err()
		case <-deadline.C:
			return nil, 0, false, domain.ErrRequestInFlight
		case <-time.After(replayPollInterval):
		}
	}
}

// complete records id as the result of the reserved key.
func (k *keyedCreate) complete(ctx context.Context, id int64) {
	if !k.held {
		return
	}
	if err := k.store.Remember(ctx, k.scope, k.key, id); err != nil {
		k.logger.Warn().Err(err).Str("scope", k.scope).Msg("idempotency store failed")
	}
}

// abandon frees the reservation after a failed create so the key can be retried.
func (k *keyedCreate) abandon(ctx context.Context) {
	if !k.held {
		return
	}
	if err := k.store.Release(context.WithoutCancel(ctx), k.scope, k.key); err != nil {
		k.logger.Warn().Err(err).Str("scope", k.scope).Msg("idempotency release failed")
	}
}
