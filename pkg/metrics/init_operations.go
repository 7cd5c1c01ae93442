package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initOperationMetrics() {
	r.OperationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "se2_operations_total",
			Help: "Total number of top-level operations",
		},
		[]string{"operation", "status"},
	)

	r.OperationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "se2_operation_duration_seconds",
			Help:    "Top-level operation duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0, 60.0},
		},
		[]string{"operation"},
	)

	r.OperationsInFlight = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "se2_operations_in_flight",
			Help: "Number of operations currently running",
		},
	)

	r.GraphNodes = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "se2_graph_nodes",
			Help:    "Number of nodes in graphs processed",
			Buckets: []float64{10, 100, 1000, 10000, 100000, 1000000},
		},
		[]string{"operation"},
	)

	r.GraphEdges = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "se2_graph_edges",
			Help:    "Number of edges in graphs processed",
			Buckets: []float64{10, 100, 1000, 10000, 100000, 1000000, 10000000},
		},
		[]string{"operation"},
	)

	r.CommunitiesDetected = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "se2_communities_detected",
			Help:    "Number of communities per hierarchy level",
			Buckets: []float64{1, 2, 5, 10, 50, 100, 1000, 10000},
		},
		[]string{"level"},
	)
}
