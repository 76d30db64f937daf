package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/bookworm/bookworm-web/internal/cache"
	"github.com/bookworm/bookworm-web/internal/config"
)

// NewRedisClient creates and validates a Redis client connection.
func NewRedisClient(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	log.Info().
		Str("addr", opt.Addr).
		Int("db", opt.DB).
		Msg("Redis connected")

	return rdb, nil
}

// NewResponseCache returns the response cache for cfg. Without REDIS_URL it
// returns cache.Nop and a nil client. The caller closes a non-nil client.
func NewResponseCache(ctx context.Context, cfg *config.Config, log zerolog.Logger) (cache.Store, *redis.Client, error) {
	if cfg.RedisURL == "" {
		log.Info().Msg("REDIS_URL not set, response cache disabled")
		return cache.Nop{}, nil, nil
	}

	rdb, err := NewRedisClient(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return cache.NewRedisCache(rdb), rdb, nil
}
