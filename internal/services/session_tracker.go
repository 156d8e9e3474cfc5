package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"

	"github.com/yungbote/fabsketch-backend/internal/domain/generation"
	"github.com/yungbote/fabsketch-backend/internal/platform/logger"
)

const (
	DefaultSessionTrackerTTL  = 24 * time.Hour
	DefaultSessionTrackerSize = 10000
	sessionTrackerKeyPrefix   = "gensession:"
)

// SessionTracker keeps an advisory record of what happened to each dispatched
// session. Status is still derived from storage; the record only annotates it.
type SessionTracker interface {
	Record(ctx context.Context, sessionID string, state generation.DispatchState) error
	Lookup(ctx context.Context, sessionID string) (generation.DispatchState, bool, error)
}

type redisSessionTracker struct {
	log *logger.Logger
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessionTracker(log *logger.Logger, rdb *redis.Client, ttl time.Duration) SessionTracker {
	if ttl <= 0 {
		ttl = DefaultSessionTrackerTTL
	}
	return &redisSessionTracker{
		log: log.With("service", "RedisSessionTracker"),
		rdb: rdb,
		ttl: ttl,
	}
}

func (t *redisSessionTracker) Record(ctx context.Context, sessionID string, state generation.DispatchState) error {
	if err := t.rdb.Set(ctx, sessionTrackerKeyPrefix+sessionID, string(state), t.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session state: %w", err)
	}
	return nil
}

func (t *redisSessionTracker) Lookup(ctx context.Context, sessionID string) (generation.DispatchState, bool, error) {
	v, err := t.rdb.Get(ctx, sessionTrackerKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get session state: %w", err)
	}
	return generation.DispatchState(v), true, nil
}

type memorySessionTracker struct {
	cache *expirable.LRU[string, generation.DispatchState]
}

// NewMemorySessionTracker is the single-instance fallback when no redis is configured.
func NewMemorySessionTracker(size int, ttl time.Duration) SessionTracker {
	if size <= 0 {
		size = DefaultSessionTrackerSize
	}
	if ttl <= 0 {
		ttl = DefaultSessionTrackerTTL
	}
	return &memorySessionTracker{
		cache: expirable.NewLRU[string, generation.DispatchState](size, nil, ttl),
	}
}

func (t *memorySessionTracker) Record(_ context.Context, sessionID string, state generation.DispatchState) error {
	t.cache.Add(sessionID, state)
	return nil
}

func (t *memorySessionTracker) Lookup(_ context.Context, sessionID string) (generation.DispatchState, bool, error) {
	v, ok := t.cache.Get(sessionID)
	return v, ok, nil
}
