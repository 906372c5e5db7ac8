package challenge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"veripay/internal/challenge/metrics"
)

const redisKeyPrefix = "verify:challenge:"

// RedisStore persists outstanding challenges in Redis.
//
// Atomicity comes from GETDEL: the first consumer removes the key in the
// same operation that reads it, so a racing second consumer observes a
// missing key. Expiry is handled by Redis key TTL, which means "expired"
// and "unknown" are indistinguishable here; both are challenge_invalid to
// callers anyway.
type RedisStore struct {
	client  *redis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
}

// RedisOption configures the RedisStore.
type RedisOption func(*RedisStore)

// WithRedisMetrics sets the metrics collector.
func WithRedisMetrics(m *metrics.Metrics) RedisOption {
	return func(s *RedisStore) {
		s.metrics = m
	}
}

// NewRedisStore creates a Redis-backed challenge store.
func NewRedisStore(client *redis.Client, ttl time.Duration, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		ttl:    ttl,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mint generates a random challenge and stores it with the configured TTL.
func (s *RedisStore) Mint(ctx context.Context) (string, error) {
	value := uuid.NewString()
	if err := s.client.Set(ctx, redisKeyPrefix+value, "1", s.ttl).Err(); err != nil {
		return "", fmt.Errorf("mint challenge: %w", err)
	}
	if s.metrics != nil {
		s.metrics.MintedTotal.Inc()
	}
	return value, nil
}

// Consume removes the challenge atomically; only one caller can win.
func (s *RedisStore) Consume(ctx context.Context, value string) error {
	err := s.client.GetDel(ctx, redisKeyPrefix+value).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			if s.metrics != nil {
				s.metrics.RecordRejection(reasonUnknown)
			}
			return errInvalid("unknown, expired, or already used challenge")
		}
		return fmt.Errorf("consume challenge: %w", err)
	}
	if s.metrics != nil {
		s.metrics.ConsumedTotal.Inc()
	}
	return nil
}

// TTL reports the configured challenge lifetime.
func (s *RedisStore) TTL() time.Duration {
	return s.ttl
}

var _ Store = (*RedisStore)(nil)
