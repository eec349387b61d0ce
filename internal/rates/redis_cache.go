package rates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRateKey = "fx:USDCAD"

// Cache stores the last known rate for other instances and restarts
type Cache interface {
	Get(ctx context.Context) (rate float64, ok bool, err error)
	Set(ctx context.Context, rate float64, ttl time.Duration) error
}

// RedisCache keeps the rate under a single key with a TTL
type RedisCache struct {
	client redis.Cmdable
	key    string
}

// NewRedisCache creates a cache on client. An empty key uses "fx:USDCAD".
func NewRedisCache(client redis.Cmdable, key string) *RedisCache {
	if key == "" {
		key = defaultRateKey
	}
	return &RedisCache{client: client, key: key}
}

// Get returns the cached rate; ok is false on a miss
func (c *RedisCache) Get(ctx context.Context) (float64, bool, error) {
	rate, err := c.client.Get(ctx, c.key).Float64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read cached rate: %w", err)
	}
	return rate, true, nil
}

// Set stores rate for ttl
func (c *RedisCache) Set(ctx context.Context, rate float64, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key, rate, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache rate: %w", err)
	}
	return nil
}
