// Package metrics provides Prometheus metrics for the payment engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all payment metrics.
type Metrics struct {
	IntentsCreatedTotal prometheus.Counter

	// Transitions by target status (KYC_VERIFIED, CONFIRMED).
	TransitionsTotal *prometheus.CounterVec

	// Rejected operations by error code.
	RejectionsTotal *prometheus.CounterVec

	ConfirmedAmountTotal prometheus.Counter
}

// New creates a new Metrics instance with all metrics registered.
func New() *Metrics {
	return &Metrics{
		IntentsCreatedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veripay_payment_intents_created_total",
			Help: "Total number of payment intents created",
		}),

		TransitionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veripay_payment_transitions_total",
			Help: "Total number of intent state transitions by target status",
		}, []string{"status"}),

		RejectionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veripay_payment_rejections_total",
			Help: "Total number of rejected payment operations by error code",
		}, []string{"code"}),

		ConfirmedAmountTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veripay_payment_confirmed_amount_total",
			Help: "Total amount moved by confirmed intents, in smallest units",
		}),
	}
}

// RecordTransition records a successful state transition.
func (m *Metrics) RecordTransition(status string) {
	m.TransitionsTotal.WithLabelValues(status).Inc()
}

// RecordRejection records a rejected payment operation.
func (m *Metrics) RecordRejection(code string) {
	m.RejectionsTotal.WithLabelValues(code).Inc()
}
