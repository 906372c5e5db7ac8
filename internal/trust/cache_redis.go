package trust

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"veripay/pkg/domain"
)

const redisCachePrefix = "trust:issuer:"

// RedisCache stores oracle verdicts in Redis so multiple verifier
// instances share one warm cache. Redis evicts expired keys itself, so
// Stats never observes expired entries and ClearExpired is a no-op.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a Redis-backed verdict cache with the given TTL.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, issuer domain.DID) (bool, bool, error) {
	val, err := c.client.Get(ctx, redisCachePrefix+string(issuer)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("get trust verdict: %w", err)
	}
	return val == "1", true, nil
}

func (c *RedisCache) Put(ctx context.Context, issuer domain.DID, trusted bool) error {
	val := "0"
	if trusted {
		val = "1"
	}
	if err := c.client.Set(ctx, redisCachePrefix+string(issuer), val, c.ttl).Err(); err != nil {
		return fmt.Errorf("put trust verdict: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, issuer domain.DID) error {
	if err := c.client.Del(ctx, redisCachePrefix+string(issuer)).Err(); err != nil {
		return fmt.Errorf("invalidate trust verdict: %w", err)
	}
	return nil
}

func (c *RedisCache) Stats(ctx context.Context) (CacheStats, error) {
	var stats CacheStats
	iter := c.client.Scan(ctx, 0, redisCachePrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		stats.Total++
		stats.Valid++
	}
	if err := iter.Err(); err != nil {
		return CacheStats{}, fmt.Errorf("scan trust verdicts: %w", err)
	}
	return stats, nil
}

func (c *RedisCache) ClearExpired(_ context.Context) (int, error) {
	// Redis expires keys on its own.
	return 0, nil
}

var _ Cache = (*RedisCache)(nil)
