package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/stacklok/entries-server/internal/config"
	"github.com/stacklok/entries-server/internal/service"
	"github.com/stacklok/entries-server/internal/service/redis"
)

const redisPingTimeout = 5 * time.Second

// redisWorkingCopies connects the Redis working-copy store. The returned
// client must be closed by the caller.
func redisWorkingCopies(
	ctx context.Context,
	cfg *config.RedisConfig,
	o *factoryOptions,
) (service.WorkingCopyStore, *goredis.Client, error) {
	password, err := cfg.GetPassword()
	if err != nil {
		return nil, nil, err
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: password,
		DB:       cfg.DB,
	})

	err = waitReachable(ctx, "redis", func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		return client.Ping(pingCtx).Err()
	})
	if err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	opts := []redis.Option{
		redis.WithClient(client),
		redis.WithKeyPrefix(cfg.GetKeyPrefix()),
	}
	if o.tracer != nil {
		opts = append(opts, redis.WithTracer(o.tracer))
	}
	store, err := redis.New(opts...)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	slog.Info("Working copies stored in redis", "addr", cfg.Addr, "db", cfg.DB)
	return store, client, nil
}
