package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modportal/portal-api/internal/core/domain"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestIdempotencyStore_RoundTrip(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()
	store := NewIdempotencyStore(client, time.Hour)

	claimed, _, err := store.Reserve(ctx, "task:1", "k1")
	require.NoError(t, err)
	require.True(t, claimed)

	require.NoError(t, store.Remember(ctx, "task:1", "k1", 42))
	// The first id wins.
	require.NoError(t, store.Remember(ctx, "task:1", "k1", 43))

	got, err := mr.Get("idem:task:1:k1")
	require.NoError(t, err)
	assert.Equal(t, "42", got)
	assert.Equal(t, time.Hour, mr.TTL("idem:task:1:k1"))

	claimed, _, err = store.Reserve(ctx, "task:2", "k1")
	require.NoError(t, err)
	assert.True(t, claimed, "scopes must not share keys")

	mr.FastForward(2 * time.Hour)
	claimed, _, err = store.Reserve(ctx, "task:1", "k1")
	require.NoError(t, err)
	assert.True(t, claimed, "entry should expire")
}

func TestIdempotencyStore_ReserveBlocksSecondCaller(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()
	store := NewIdempotencyStore(client, time.Hour)

	claimed, _, err := store.Reserve(ctx, "task:1", "k1")
	require.NoError(t, err)
	require.True(t, claimed)
	assert.Equal(t, defaultPendingTTL, mr.TTL("idem:task:1:k1"))

	claimed, id, err := store.Reserve(ctx, "task:1", "k1")
	require.NoError(t, err)
	assert.False(t, claimed)
	assert.Zero(t, id, "winner has not finished yet")

	got, err := mr.Get("idem:task:1:k1")
	require.NoError(t, err)
	assert.Equal(t, pendingMarker, got)

	require.NoError(t, store.Remember(ctx, "task:1", "k1", 42))
	assert.Equal(t, time.Hour, mr.TTL("idem:task:1:k1"))

	claimed, id, err = store.Reserve(ctx, "task:1", "k1")
	require.NoError(t, err)
	assert.False(t, claimed)
	assert.Equal(t, int64(42), id)
}

func TestIdempotencyStore_ReleaseOnlyDropsPending(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()
	store := NewIdempotencyStore(client, time.Hour)

	claimed, _, err := store.Reserve(ctx, "bug:1", "k")
	require.NoError(t, err)
	require.True(t, claimed)
	require.NoError(t, store.Release(ctx, "bug:1", "k"))
	assert.False(t, mr.Exists("idem:bug:1:k"))

	claimed, _, err = store.Reserve(ctx, "bug:1", "k")
	require.NoError(t, err)
	assert.True(t, claimed, "released key can be claimed again")

	require.NoError(t, store.Remember(ctx, "bug:1", "k", 7))
	require.NoError(t, store.Release(ctx, "bug:1", "k"))
	claimed, id, err := store.Reserve(ctx, "bug:1", "k")
	require.NoError(t, err)
	assert.False(t, claimed, "completed entry survives a late release")
	assert.Equal(t, int64(7), id)
}

func TestIdempotencyStore_PendingExpires(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()
	store := NewIdempotencyStore(client, time.Hour)

	claimed, _, err := store.Reserve(ctx, "application:1", "k")
	require.NoError(t, err)
	require.True(t, claimed)

	mr.FastForward(2 * defaultPendingTTL)
	claimed, _, err = store.Reserve(ctx, "application:1", "k")
	require.NoError(t, err)
	assert.True(t, claimed, "abandoned reservation should expire")
}

func TestIdempotencyStore_CorruptValue(t *testing.T) {
	client, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("idem:bug:1:k", "not-a-number"))

	_, _, err := NewIdempotencyStore(client, 0).Reserve(context.Background(), "bug:1", "k")
	assert.Error(t, err)
}

func TestNotifier_PublishesEvent(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()

	sub := client.Subscribe(ctx, StatusChannel)
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	event := domain.StatusChangeEvent{
		Entity:        domain.EntityTask,
		ID:            7,
		Status:        domain.StatusCompleted,
		ActorID:       2,
		ActorUsername: "bob",
		AuthorID:      1,
		At:            at,
	}
	require.NoError(t, NewNotifier(client).StatusChanged(ctx, event))

	select {
	case msg := <-sub.Channel():
		var got domain.StatusChangeEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, event, got)
	case <-time.After(2 * time.Second):
		t.Fatal("no status event received")
	}
}

func TestPinger_Reachable(t *testing.T) {
	client, _ := setupTestRedis(t)
	assert.NoError(t, NewPinger(client).Ping(context.Background()))
}

func TestConnect_Succeeds(t *testing.T) {
	_, mr := setupTestRedis(t)
	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	assert.NoError(t, client.Close())
}
