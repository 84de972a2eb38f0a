package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// DashboardCache implements ports.DashboardCache using Redis.
// Every cached key is also recorded in an index set so InvalidateAll can
// drop them without a keyspace scan. Writes WATCH the generation key and are
// skipped once InvalidateAll has bumped it.
type DashboardCache struct {
	client *goredis.Client
	prefix string
	index  string
	gen    string
}

// NewDashboardCache creates a new Redis-backed dashboard cache.
func NewDashboardCache(client *goredis.Client) *DashboardCache {
	return &DashboardCache{
		client: client,
		prefix: "dashboard:",
		index:  "dashboard:keys",
		gen:    "dashboard:gen",
	}
}

func (c *DashboardCache) key(year int) string {
	return c.prefix + strconv.Itoa(year)
}

// Generation returns the current invalidation generation, 0 before the first
// invalidation.
func (c *DashboardCache) Generation(ctx context.Context) (int64, error) {
	gen, err := readGeneration(ctx, c.client, c.gen)
	if err != nil {
		return 0, fmt.Errorf("redis dashboard generation: %w", err)
	}
	return gen, nil
}

// Get returns the cached value for year, or nil, nil on a miss.
func (c *DashboardCache) Get(ctx context.Context, year int) ([]byte, error) {
	val, err := c.client.Get(ctx, c.key(year)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis dashboard get: %w", err)
	}
	return val, nil
}

// Set stores value for year with TTL, provided the generation is still gen.
func (c *DashboardCache) Set(ctx context.Context, year int, gen int64, value []byte, ttl time.Duration) (bool, error) {
	key := c.key(year)
	stored := false

	err := c.client.Watch(ctx, func(tx *goredis.Tx) error {
		current, err := readGeneration(ctx, tx, c.gen)
		if err != nil {
			return err
		}
		if current != gen {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, value, ttl)
			pipe.SAdd(ctx, c.index, key)
			return nil
		})
		if err != nil {
			return err
		}
		stored = true
		return nil
	}, c.gen)

	if errors.Is(err, goredis.TxFailedErr) {
		// Invalidated between the read and the write.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis dashboard set: %w", err)
	}
	return stored, nil
}

// InvalidateAll bumps the generation, then removes every cached year.
func (c *DashboardCache) InvalidateAll(ctx context.Context) error {
	if err := c.client.Incr(ctx, c.gen).Err(); err != nil {
		return fmt.Errorf("redis dashboard bump generation: %w", err)
	}

	keys, err := c.client.SMembers(ctx, c.index).Result()
	if err != nil {
		return fmt.Errorf("redis dashboard list keys: %w", err)
	}

	keys = append(keys, c.index)
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis dashboard invalidate: %w", err)
	}
	return nil
}

type getter interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
}

func readGeneration(ctx context.Context, cmd getter, key string) (int64, error) {
	gen, err := cmd.Get(ctx, key).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	return gen, err
}
