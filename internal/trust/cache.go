package trust

import (
	"context"
	"sync"
	"time"

	"veripay/pkg/domain"
	"veripay/pkg/requestcontext"
)

// CacheStats summarizes cache occupancy for the admin surface.
type CacheStats struct {
	Total   int `json:"total"`
	Valid   int `json:"valid"`
	Expired int `json:"expired"`
}

// Cache stores oracle verdicts with a TTL.
type Cache interface {
	// Get returns the cached verdict and whether a live entry exists.
	Get(ctx context.Context, issuer domain.DID) (trusted bool, ok bool, err error)

	// Put stores a verdict with the cache TTL.
	Put(ctx context.Context, issuer domain.DID, trusted bool) error

	// Invalidate removes the entry for an issuer.
	Invalidate(ctx context.Context, issuer domain.DID) error

	// Stats reports cache occupancy.
	Stats(ctx context.Context) (CacheStats, error)

	// ClearExpired removes expired entries and returns how many were dropped.
	ClearExpired(ctx context.Context) (int, error)
}

type cacheEntry struct {
	trusted   bool
	expiresAt time.Time
}

// InMemoryCache keeps verdicts in a mutex-guarded map. Expired entries are
// skipped on read and reclaimed by ClearExpired.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[domain.DID]cacheEntry
	ttl     time.Duration
}

// NewInMemoryCache creates an in-memory verdict cache with the given TTL.
func NewInMemoryCache(ttl time.Duration) *InMemoryCache {
	return &InMemoryCache{
		entries: make(map[domain.DID]cacheEntry),
		ttl:     ttl,
	}
}

func (c *InMemoryCache) Get(ctx context.Context, issuer domain.DID) (bool, bool, error) {
	now := requestcontext.Now(ctx)

	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[issuer]
	if !ok || now.After(e.expiresAt) {
		return false, false, nil
	}
	return e.trusted, true, nil
}

func (c *InMemoryCache) Put(ctx context.Context, issuer domain.DID, trusted bool) error {
	now := requestcontext.Now(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[issuer] = cacheEntry{trusted: trusted, expiresAt: now.Add(c.ttl)}
	return nil
}

func (c *InMemoryCache) Invalidate(_ context.Context, issuer domain.DID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, issuer)
	return nil
}

func (c *InMemoryCache) Stats(ctx context.Context) (CacheStats, error) {
	now := requestcontext.Now(ctx)

	c.mu.RLock()
	defer c.mu.RUnlock()
	stats := CacheStats{Total: len(c.entries)}
	for _, e := range c.entries {
		if now.After(e.expiresAt) {
			stats.Expired++
		} else {
			stats.Valid++
		}
	}
	return stats, nil
}

func (c *InMemoryCache) ClearExpired(ctx context.Context) (int, error) {
	now := requestcontext.Now(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for issuer, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, issuer)
			removed++
		}
	}
	return removed, nil
}

var _ Cache = (*InMemoryCache)(nil)
