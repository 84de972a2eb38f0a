package redis

import (
	"context"
	"fmt"
	"time"

	"member-finance/config"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Cache reads sit on the dashboard path, so they must give up quickly and
// let the service fall back to the database.
const (
	dialTimeout = 2 * time.Second
	ioTimeout   = 500 * time.Millisecond
)

// NewClient connects the Redis instance that backs the dashboard cache and
// the rate limiter.
func NewClient(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (*goredis.Client, error) {
	client := goredis.NewClient(clientOptions(cfg))

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("reach dashboard cache at %s: %w", cfg.Addr(), err)
	}

	log.Info().
		Str("cache_addr", cfg.Addr()).
		Int("cache_db", cfg.DB).
		Msg("Dashboard cache ready")

	return client, nil
}

func clientOptions(cfg config.RedisConfig) *goredis.Options {
	return &goredis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
	}
}
