// internal/app/system/ratelimit/redis.go
package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounter shares windows across instances. Each window is a key whose
// TTL is set by the first INCR.
type RedisCounter struct {
	rdb      redis.UniversalClient
	prefix   string
	limit    int
	duration time.Duration
}

// NewRedis creates a Counter backed by rdb. prefix namespaces the keys.
func NewRedis(rdb redis.UniversalClient, prefix string, limit int, duration time.Duration) *RedisCounter {
	return &RedisCounter{rdb: rdb, prefix: prefix, limit: limit, duration: duration}
}

func (c *RedisCounter) key(k string) string { return c.prefix + ":" + k }

// Allow increments the window counter and compares it to the limit.
func (c *RedisCounter) Allow(ctx context.Context, key string) (bool, error) {
	k := c.key(key)
	pipe := c.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, c.duration)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= int64(c.limit), nil
}

// Reset deletes the window for key.
func (c *RedisCounter) Reset(ctx context.Context, key string) error {
	err := c.rdb.Del(ctx, c.key(key)).Err()
	if err == redis.Nil {
		return nil
	}
	return err
}
