package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/fabsketch-backend/internal/domain/generation"
)

func TestMemorySessionTrackerKeepsLatestState(t *testing.T) {
	tr := NewMemorySessionTracker(8, time.Minute)
	ctx := context.Background()

	_, ok, err := tr.Lookup(ctx, "s")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, tr.Record(ctx, "s", generation.DispatchDispatched))
	require.NoError(t, tr.Record(ctx, "s", generation.DispatchSucceeded))

	state, ok, err := tr.Lookup(ctx, "s")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, generation.DispatchSucceeded, state)
}

func TestMemorySessionTrackerExpires(t *testing.T) {
	tr := NewMemorySessionTracker(8, 20*time.Millisecond)
	ctx := context.Background()
	require.NoError(t, tr.Record(ctx, "s", generation.DispatchDispatched))

	time.Sleep(60 * time.Millisecond)
	_, ok, err := tr.Lookup(ctx, "s")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSessionTracker(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis session tracker tests")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	tr := NewRedisSessionTracker(testLogger(t), rdb, time.Minute)
	ctx := context.Background()
	sid := uuid.NewString()

	_, ok, err := tr.Lookup(ctx, sid)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, tr.Record(ctx, sid, generation.DispatchFailed))
	state, ok, err := tr.Lookup(ctx, sid)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, generation.DispatchFailed, state)

	ttl, err := rdb.TTL(ctx, sessionTrackerKeyPrefix+sid).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
