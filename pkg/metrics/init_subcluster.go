package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSubclusterMetrics() {
	r.SubclusterLevelsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "se2_subcluster_levels_total",
			Help: "Total number of hierarchy levels produced",
		},
	)

	r.CommunitiesSplitTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "se2_communities_split_total",
			Help: "Communities reclustered at each depth",
		},
		[]string{"depth"},
	)

	r.CommunitiesSkippedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "se2_communities_skipped_total",
			Help: "Communities not reclustered at each depth",
		},
		[]string{"reason"},
	)
}
