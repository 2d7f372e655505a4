// Package redis backs the login throttle with a small Redis keyspace of
// per-email failure counters.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stackbase/identity-api/internal/infrastructure/config"
)

const pingTimeout = 5 * time.Second

// Connect opens the client backing the throttle and verifies it with a
// ping. The workload is tiny counter reads and writes, so only dial
// behaviour is tuned; pool sizing keeps the client defaults.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		DB:          cfg.DB,
		DialTimeout: pingTimeout,
		MaxRetries:  3,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}
