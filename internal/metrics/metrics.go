// Package metrics exposes solve-level Prometheus metrics on the
// controller-runtime registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	solvesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "packing_optimizer_solves_total",
			Help: "Total optimization runs by terminal status.",
		},
		[]string{"status"},
	)

	invalidInputTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "packing_optimizer_invalid_input_total",
			Help: "Requests rejected before any search began.",
		},
	)

	nodesExpanded = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "packing_optimizer_nodes_expanded",
			Help:    "Branch decisions expanded per solve, across relaxation retries.",
			Buckets: prometheus.ExponentialBuckets(16, 4, 10),
		},
	)

	solveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "packing_optimizer_solve_duration_seconds",
			Help:    "Wall-clock duration of one optimization run.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	metrics.Registry.MustRegister(solvesTotal, invalidInputTotal, nodesExpanded, solveDuration)
}

// RecordSolve observes one completed optimization run.
func RecordSolve(status string, nodes int, seconds float64) {
	solvesTotal.WithLabelValues(status).Inc()
	nodesExpanded.Observe(float64(nodes))
	solveDuration.Observe(seconds)
}

// RecordInvalidInput counts a request rejected at validation.
func RecordInvalidInput() {
	invalidInputTotal.Inc()
}
