package challenge

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"veripay/internal/challenge/metrics"
	"veripay/pkg/requestcontext"
)

type entry struct {
	expiresAt time.Time
	used      bool
}

// InMemoryStore keeps outstanding challenges in a mutex-guarded map.
// Consume performs its check-and-mark under a single lock acquisition, so a
// challenge can never be consumed twice even when requests race.
type InMemoryStore struct {
	mu         sync.Mutex
	challenges map[string]*entry
	ttl        time.Duration
	metrics    *metrics.Metrics
}

// Option configures the InMemoryStore.
type Option func(*InMemoryStore)

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *InMemoryStore) {
		s.metrics = m
	}
}

// NewInMemoryStore creates an in-memory challenge store with the given TTL.
func NewInMemoryStore(ttl time.Duration, opts ...Option) *InMemoryStore {
	s := &InMemoryStore{
		challenges: make(map[string]*entry),
		ttl:        ttl,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mint generates a random challenge and records it as outstanding.
func (s *InMemoryStore) Mint(ctx context.Context) (string, error) {
	value := uuid.NewString()
	now := requestcontext.Now(ctx)

	s.mu.Lock()
	s.challenges[value] = &entry{expiresAt: now.Add(s.ttl)}
	outstanding := len(s.challenges)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.MintedTotal.Inc()
		s.metrics.Outstanding.Set(float64(outstanding))
	}
	return value, nil
}

// Consume atomically validates and marks the challenge as used.
func (s *InMemoryStore) Consume(ctx context.Context, value string) error {
	now := requestcontext.Now(ctx)

	s.mu.Lock()
	e, ok := s.challenges[value]
	switch {
	case !ok:
		s.mu.Unlock()
		s.reject(reasonUnknown)
		return errInvalid("unknown challenge")
	case e.used:
		s.mu.Unlock()
		s.reject(reasonReused)
		return errInvalid("challenge already used")
	case now.After(e.expiresAt):
		delete(s.challenges, value)
		s.mu.Unlock()
		s.reject(reasonExpired)
		return errInvalid("challenge expired")
	}
	e.used = true
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ConsumedTotal.Inc()
	}
	return nil
}

// TTL reports the configured challenge lifetime.
func (s *InMemoryStore) TTL() time.Duration {
	return s.ttl
}

// ClearExpired drops expired entries, including consumed ones past TTL.
func (s *InMemoryStore) ClearExpired(ctx context.Context) int {
	now := requestcontext.Now(ctx)

	s.mu.Lock()
	removed := 0
	for value, e := range s.challenges {
		if now.After(e.expiresAt) {
			delete(s.challenges, value)
			removed++
		}
	}
	outstanding := len(s.challenges)
	s.mu.Unlock()

	if s.metrics != nil && removed > 0 {
		s.metrics.SweptTotal.Add(float64(removed))
		s.metrics.Outstanding.Set(float64(outstanding))
	}
	return removed
}

// Sweep runs ClearExpired on the given interval until ctx is cancelled.
// Expired challenges are already rejected on Consume; the sweep only bounds
// memory growth.
func (s *InMemoryStore) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.ClearExpired(ctx)
		}
	}
}

func (s *InMemoryStore) reject(reason string) {
	if s.metrics != nil {
		s.metrics.RecordRejection(reason)
	}
}

var (
	_ Store   = (*InMemoryStore)(nil)
	_ Sweeper = (*InMemoryStore)(nil)
)
