// Package metrics provides Prometheus metrics for the challenge store.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all challenge store metrics.
type Metrics struct {
	MintedTotal    prometheus.Counter
	ConsumedTotal  prometheus.Counter
	RejectedTotal  *prometheus.CounterVec // by rejection reason (unknown, expired, reused)
	Outstanding    prometheus.Gauge
	SweptTotal     prometheus.Counter
}

// New creates a new Metrics instance with all metrics registered.
func New() *Metrics {
	return &Metrics{
		MintedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veripay_challenges_minted_total",
			Help: "Total number of verification challenges minted",
		}),
		ConsumedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veripay_challenges_consumed_total",
			Help: "Total number of challenges successfully consumed",
		}),
		RejectedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veripay_challenges_rejected_total",
			Help: "Total number of challenge consumptions rejected, by reason",
		}, []string{"reason"}),
		Outstanding: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "veripay_challenges_outstanding",
			Help: "Current number of unconsumed, unexpired challenges",
		}),
		SweptTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veripay_challenges_swept_total",
			Help: "Total number of expired challenges removed by the sweep loop",
		}),
	}
}

// RecordRejection records a rejected consumption attempt.
func (m *Metrics) RecordRejection(reason string) {
	m.RejectedTotal.WithLabelValues(reason).Inc()
}
