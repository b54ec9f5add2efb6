package service

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	defaultIdempotencyTTL = 24 * time.Hour
	pendingReservationTTL = time.Minute
	sweepThreshold        = 1024
)

// MemoryIdempotencyStore keeps idempotency keys in process. It serves
// single-instance deployments that run without Redis.
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	ttl     time.Duration
	entries map[string]memoryEntry
}

// memoryEntry with id 0 is a pending reservation.
type memoryEntry struct {
	id      int64
	expires time.Time
}

// NewMemoryIdempotencyStore builds an empty store. A non-positive ttl uses 24h.
func NewMemoryIdempotencyStore(clk clockwork.Clock, ttl time.Duration) *MemoryIdempotencyStore {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &MemoryIdempotencyStore{clock: clk, ttl: ttl, entries: make(map[string]memoryEntry)}
}

func (m *MemoryIdempotencyStore) Reserve(_ context.Context, scope, key string) (bool, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if len(m.entries) >= sweepThreshold {
		m.sweep(now)
	}
	k := scope + "|" + key
	if e, ok := m.entries[k]; ok && now.Before(e.expires) {
		return false, e.id, nil
	}
	m.entries[k] = memoryEntry{expires: now.Add(pendingReservationTTL)}
	return true, 0, nil
}

func (m *MemoryIdempotencyStore) Remember(_ context.Context, scope, key string, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	k := scope + "|" + key
	if e, ok := m.entries[k]; ok && e.id != 0 && now.Before(e.expires) {
		return nil
	}
	m.entries[k] = memoryEntry{id: id, expires: now.Add(m.ttl)}
	return nil
}

func (m *MemoryIdempotencyStore) Release(_ context.Context, scope, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := scope + "|" + key
	if e, ok := m.entries[k]; ok && e.id == 0 {
		delete(m.entries, k)
	}
	return nil
}

func (m *MemoryIdempotencyStore) sweep(now time.Time) {
	for k, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, k)
		}
	}
}
