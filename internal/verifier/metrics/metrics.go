// Package metrics provides Prometheus metrics for the commitment verifier.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all verifier metrics.
type Metrics struct {
	// Verifications by outcome: "success" or the failing gate's error code.
	VerificationsTotal *prometheus.CounterVec

	VerificationDurationSeconds prometheus.Histogram
	TokensMintedTotal           prometheus.Counter
}

// New creates a new Metrics instance with all metrics registered.
func New() *Metrics {
	return &Metrics{
		VerificationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veripay_verifications_total",
			Help: "Total number of verification attempts by outcome",
		}, []string{"outcome"}),

		VerificationDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "veripay_verification_duration_seconds",
			Help:    "Duration of full verification gate sequences",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),

		TokensMintedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veripay_decision_tokens_minted_total",
			Help: "Total number of decision tokens minted",
		}),
	}
}

// RecordVerification records one verification attempt.
func (m *Metrics) RecordVerification(outcome string, durationSeconds float64) {
	m.VerificationsTotal.WithLabelValues(outcome).Inc()
	m.VerificationDurationSeconds.Observe(durationSeconds)
}
