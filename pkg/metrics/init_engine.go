package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initEngineMetrics() {
	r.RunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "se2_runs_total",
			Help: "Total number of independent label propagation runs",
		},
		[]string{"status"},
	)

	r.RunDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "se2_run_duration_seconds",
			Help:    "Duration of a single label propagation run in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1.0, 10.0},
		},
	)

	r.SweepsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "se2_sweeps_total",
			Help: "Total number of label update sweeps",
		},
	)

	r.SweepsPerRun = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "se2_sweeps_per_run",
			Help:    "Number of sweeps performed by a single run",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500},
		},
	)

	r.PartitionsHarvested = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "se2_partitions_harvested_total",
			Help: "Total number of candidate partitions kept for consensus",
		},
	)

	r.ForcedCandidatesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "se2_forced_candidates_total",
			Help: "Candidates recorded because the sweep limit was reached before convergence",
		},
	)
}
