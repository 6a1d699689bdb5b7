package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "snapshot:v1:"

// RedisCache stores snapshots in Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache builds a Redis-backed snapshot cache.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get fetches a cached entry; the second return reports a hit.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, redisPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set stores an entry with a TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, redisPrefix+key, value, ttl).Err()
}

// Invalidate removes entries in a single DEL.
func (c *RedisCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = redisPrefix + k
	}
	return c.client.Del(ctx, prefixed...).Err()
}
