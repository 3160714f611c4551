// Package db provides the Redis connection used by the suggestion cache.
// This is part of the platform layer and contains no business logic.
package db

import (
	"context"
	"time"

	"placefinder/platform/config"

	"github.com/redis/go-redis/v9"
)

// NewRedis connects to REDIS_URL with production-ready pool settings and
// verifies the connection.
func NewRedis(ctx context.Context, cfg config.CacheConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return nil, err
	}

	opts.PoolSize = 20
	opts.MinIdleConns = 2
	opts.ConnMaxIdleTime = 30 * time.Minute
	opts.DialTimeout = 5 * time.Second
	// Cache reads sit on the type-ahead path; a slow Redis is treated as a miss.
	opts.ReadTimeout = 500 * time.Millisecond
	opts.WriteTimeout = 500 * time.Millisecond

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// HealthAdapter exposes a Redis client as a readiness check.
type HealthAdapter struct {
	client *redis.Client
}

func NewHealthAdapter(client *redis.Client) *HealthAdapter {
	return &HealthAdapter{client: client}
}

func (a *HealthAdapter) Ping(ctx context.Context) error {
	return a.client.Ping(ctx).Err()
}
