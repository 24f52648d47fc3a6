// Package metrics exposes Prometheus counters for the simulated merchant
// surface: healing behaviour, slot contention, and simulator decisions.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HealerAttemptsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "checkout_healer_attempts_total",
			Help: "Total checkout healing attempts across all runs",
		},
	)

	HealerExhaustedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "checkout_healer_exhausted_total",
			Help: "Checkout attempts that failed after exhausting all retries",
		},
	)

	SubstitutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_substitutions_total",
			Help: "Replacement plan outcomes by action",
		},
		[]string{"action"},
	)

	SimulatedOOSTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simulated_out_of_stock_total",
			Help: "Simulator out-of-stock decisions by stage",
		},
		[]string{"stage"},
	)

	SlotConflictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pickup_slot_conflicts_total",
			Help: "Slot reservations refused, by cause",
		},
		[]string{"cause"},
	)

	IdempotencyReplaysTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "idempotency_replays_total",
			Help: "Responses replayed from a stored idempotency record",
		},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

var registerOnce sync.Once

// Register registers every collector. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(HealerAttemptsTotal)
		prometheus.MustRegister(HealerExhaustedTotal)
		prometheus.MustRegister(SubstitutionsTotal)
		prometheus.MustRegister(SimulatedOOSTotal)
		prometheus.MustRegister(SlotConflictsTotal)
		prometheus.MustRegister(IdempotencyReplaysTotal)
		prometheus.MustRegister(HTTPRequestDuration)
	})
}
