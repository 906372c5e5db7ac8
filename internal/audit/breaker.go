package audit

import (
	"sync"
	"time"
)

// Breaker sheds publishes while the sink is down so a broker outage
// cannot back up the emitter. After threshold consecutive failures the
// breaker opens; once the cooldown passes the next publish probes the
// sink again.
type Breaker struct {
	mu sync.Mutex

	threshold int
	cooldown  time.Duration

	failures  int
	open      bool
	openUntil time.Time
}

// NewBreaker creates a breaker. Non-positive arguments fall back to
// 5 failures and a one minute cooldown.
func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	return &Breaker{threshold: threshold, cooldown: cooldown}
}

// Allow reports whether a publish should be attempted.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return true
	}
	if time.Now().After(b.openUntil) {
		// Half-open: let one attempt probe the sink.
		b.open = false
		b.failures = b.threshold - 1
		return true
	}
	return false
}

// RecordSuccess closes the breaker.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.open = false
}

// RecordFailure counts a failed publish and opens the breaker at the
// threshold.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.failures >= b.threshold {
		b.open = true
		b.openUntil = time.Now().Add(b.cooldown)
	}
}

// IsOpen reports whether publishes are currently shed.
func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}
