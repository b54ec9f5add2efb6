package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultIdempotencyTTL = 24 * time.Hour
	defaultPendingTTL     = time.Minute

	pendingMarker = "pending"
)

// releaseScript drops a key only while it still holds the pending marker, so
// a completed entry is never removed by a late Release.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// IdempotencyStore remembers the id produced by a keyed create.
// Key format: idem:<scope>:<key>
type IdempotencyStore struct {
	client     *redis.Client
	ttl        time.Duration
	pendingTTL time.Duration
}

// NewIdempotencyStore wraps the given client. A non-positive ttl uses 24h.
// Reservations that are never completed expire after a minute.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl, pendingTTL: defaultPendingTTL}
}

// Reserve claims scope and key with a pending marker. A caller that loses the
// race gets the stored id, or 0 while the winner is still running.
func (s *IdempotencyStore) Reserve(ctx context.Context, scope, key string) (bool, int64, error) {
	k := s.key(scope, key)
	claimed, err := s.client.SetNX(ctx, k, pendingMarker, s.pendingTTL).Result()
	if err != nil {
		return false, 0, fmt.Errorf("idempotency reserve: %w", err)
	}
	if claimed {
		return true, 0, nil
	}
	val, err := s.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// Expired between the two calls; report it as still in flight.
		return false, 0, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("idempotency reserve: %w", err)
	}
	if val == pendingMarker {
		return false, 0, nil
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return false, 0, fmt.Errorf("idempotency reserve: corrupt value %q", val)
	}
	return false, id, nil
}

// Remember completes a reservation with id. A completed entry is kept.
func (s *IdempotencyStore) Remember(ctx context.Context, scope, key string, id int64) error {
	k := s.key(scope, key)
	val, err := s.client.Get(ctx, k).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("idempotency store: %w", err)
	}
	if err == nil && val != pendingMarker {
		return nil
	}
	if err := s.client.Set(ctx, k, id, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency store: %w", err)
	}
	return nil
}

// Release drops an uncompleted reservation so the key can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, scope, key string) error {
	if err := releaseScript.Run(ctx, s.client, []string{s.key(scope, key)}, pendingMarker).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) key(scope, key string) string {
	return fmt.Sprintf("idem:%s:%s", scope, key)
}
