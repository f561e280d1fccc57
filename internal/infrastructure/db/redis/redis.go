package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lemon/task-api/internal/infrastructure/config"
)

const defaultDialTimeout = 5 * time.Second

// Connect opens the client behind the registration guard and pings it, so a
// misconfigured REDIS_ADDR fails at startup instead of on the first signup.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// Open connects and builds the registration guard with the configured lock TTL.
func Open(ctx context.Context, cfg config.RedisConfig) (*redis.Client, *RegistrationGuard, error) {
	client, err := Connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return client, NewRegistrationGuard(client, cfg.LockTTL), nil
}
