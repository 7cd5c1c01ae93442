package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Operation Metrics (cluster, knn, order)
	OperationsTotal     *prometheus.CounterVec
	OperationDuration   *prometheus.HistogramVec
	OperationsInFlight  prometheus.Gauge
	GraphNodes          *prometheus.HistogramVec
	GraphEdges          *prometheus.HistogramVec
	CommunitiesDetected *prometheus.HistogramVec

	// Engine Metrics (single label propagation runs)
	RunsTotal             *prometheus.CounterVec
	RunDuration           prometheus.Histogram
	SweepsTotal           prometheus.Counter
	SweepsPerRun          prometheus.Histogram
	PartitionsHarvested   prometheus.Counter
	ForcedCandidatesTotal prometheus.Counter

	// Subclustering Metrics
	SubclusterLevelsTotal   prometheus.Counter
	CommunitiesSplitTotal   *prometheus.CounterVec
	CommunitiesSkippedTotal *prometheus.CounterVec

	// Export Metrics
	ExportsTotal     *prometheus.CounterVec
	ExportBytesTotal *prometheus.CounterVec
	ExportDuration   *prometheus.HistogramVec

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry  *prometheus.Registry
	startTime time.Time
	mu        sync.RWMutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry:  reg,
		startTime: time.Now(),
	}

	// Initialize all metrics
	r.initOperationMetrics()
	r.initEngineMetrics()
	r.initSubclusterMetrics()
	r.initExportMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
