package service

import (
	"context"
	"strconv"
	"testing"
	"time"
)

func TestMemoryIdempotencyStore_Lifecycle(t *testing.T) {
	clk := newTestClock()
	store := NewMemoryIdempotencyStore(clk, time.Hour)
	ctx := context.Background()

	claimed, _, _ := store.Reserve(ctx, "task:1", "k")
	if !claimed {
		t.Fatalf("first reserve should claim")
	}
	claimed, id, _ := store.Reserve(ctx, "task:1", "k")
	if claimed || id != 0 {
		t.Fatalf("second reserve should see a pending entry, got claimed=%v id=%d", claimed, id)
	}

	if err := store.Remember(ctx, "task:1", "k", 42); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	_ = store.Remember(ctx, "task:1", "k", 43)
	_ = store.Release(ctx, "task:1", "k")

	claimed, id, _ = store.Reserve(ctx, "task:1", "k")
	if claimed || id != 42 {
		t.Fatalf("expected completed id 42, got claimed=%v id=%d", claimed, id)
	}

	clk.Advance(2 * time.Hour)
	if claimed, _, _ = store.Reserve(ctx, "task:1", "k"); !claimed {
		t.Fatalf("expired entry should be claimable")
	}
}

func TestMemoryIdempotencyStore_ReleaseAndPendingExpiry(t *testing.T) {
	clk := newTestClock()
	store := NewMemoryIdempotencyStore(clk, 0)
	ctx := context.Background()

	store.Reserve(ctx, "bug:1", "k")
	_ = store.Release(ctx, "bug:1", "k")
	if claimed, _, _ := store.Reserve(ctx, "bug:1", "k"); !claimed {
		t.Fatalf("released key should be claimable")
	}

	clk.Advance(pendingReservationTTL + time.Second)
	if claimed, _, _ := store.Reserve(ctx, "bug:1", "k"); !claimed {
		t.Fatalf("abandoned reservation should expire")
	}
}

func TestMemoryIdempotencyStore_Sweep(t *testing.T) {
	clk := newTestClock()
	store := NewMemoryIdempotencyStore(clk, time.Minute)
	ctx := context.Background()

	for i := 0; i < sweepThreshold; i++ {
		_ = store.Remember(ctx, "task:1", "k"+strconv.Itoa(i), int64(i+1))
	}
	clk.Advance(time.Hour)
	store.Reserve(ctx, "task:1", "fresh")
	if n := len(store.entries); n != 1 {
		t.Fatalf("expected expired entries swept, %d left", n)
	}
}
