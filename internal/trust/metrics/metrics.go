// Package metrics provides Prometheus metrics for the trust registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all trust registry metrics.
type Metrics struct {
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	// Oracle lookups by outcome (trusted, untrusted, error)
	OracleLookupsTotal    *prometheus.CounterVec
	OracleLatencySeconds  prometheus.Histogram
	PolicyFallbacksTotal  *prometheus.CounterVec
	CacheInvalidatedTotal prometheus.Counter
}

// New creates a new Metrics instance with all metrics registered.
func New() *Metrics {
	return &Metrics{
		CacheHitsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veripay_trust_cache_hits_total",
			Help: "Total number of trust verdicts served from cache",
		}),

		CacheMissesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veripay_trust_cache_misses_total",
			Help: "Total number of trust lookups that missed the cache",
		}),

		OracleLookupsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veripay_trust_oracle_lookups_total",
			Help: "Total number of trust oracle lookups by outcome",
		}, []string{"outcome"}),

		OracleLatencySeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "veripay_trust_oracle_latency_seconds",
			Help:    "Duration of trust oracle lookups",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),

		PolicyFallbacksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veripay_trust_policy_fallbacks_total",
			Help: "Total number of oracle failures resolved by policy",
		}, []string{"policy"}),

		CacheInvalidatedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veripay_trust_cache_invalidations_total",
			Help: "Total number of trust cache invalidations",
		}),
	}
}

// RecordOracleLookup records an oracle lookup with its outcome and duration.
func (m *Metrics) RecordOracleLookup(outcome string, durationSeconds float64) {
	m.OracleLookupsTotal.WithLabelValues(outcome).Inc()
	m.OracleLatencySeconds.Observe(durationSeconds)
}

// RecordPolicyFallback records an oracle failure resolved by the given policy.
func (m *Metrics) RecordPolicyFallback(policy string) {
	m.PolicyFallbacksTotal.WithLabelValues(policy).Inc()
}
