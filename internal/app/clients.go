package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yungbote/fabsketch-backend/internal/observability"
	"github.com/yungbote/fabsketch-backend/internal/platform/compute"
	"github.com/yungbote/fabsketch-backend/internal/platform/logger"
	"github.com/yungbote/fabsketch-backend/internal/platform/objectstore"
)

type Clients struct {
	Redis       *redis.Client
	ObjectStore objectstore.Store
	Compute     compute.Backend
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis is optional; without it the session tracker stays in process.
	var rdb *redis.Client
	if cfg.Tracker.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:        cfg.Tracker.RedisAddr,
			Password:    cfg.Tracker.RedisPassword,
			DB:          cfg.Tracker.RedisDB,
			DialTimeout: 5 * time.Second,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = rdb.Close()
			return Clients{}, fmt.Errorf("redis ping: %w", err)
		}
	}

	store, err := resolveObjectStore(log, metrics)
	if err != nil {
		if rdb != nil {
			_ = rdb.Close()
		}
		return Clients{}, err
	}

	computeCfg, err := compute.ConfigFromEnv()
	if err != nil {
		if rdb != nil {
			_ = rdb.Close()
		}
		return Clients{}, fmt.Errorf("compute config: %w", err)
	}
	backend, err := compute.NewBackend(ctx, computeCfg)
	if err != nil {
		if rdb != nil {
			_ = rdb.Close()
		}
		return Clients{}, fmt.Errorf("init compute backend: %w", err)
	}
	log.Info("Compute backend selected", "mode", backend.Name())

	return Clients{
		Redis:       rdb,
		ObjectStore: store,
		Compute:     backend,
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
