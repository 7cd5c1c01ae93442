package metrics

import (
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation status labels
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// StatusOf maps an error to a status label
func StatusOf(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}

// RecordOperation records a completed top-level operation
func (r *Registry) RecordOperation(operation, status string, duration time.Duration) {
	r.OperationsTotal.WithLabelValues(operation, status).Inc()
	r.OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordGraphSize records the size of a graph an operation ran on
func (r *Registry) RecordGraphSize(operation string, nodes, edges int) {
	r.GraphNodes.WithLabelValues(operation).Observe(float64(nodes))
	r.GraphEdges.WithLabelValues(operation).Observe(float64(edges))
}

// RecordLevel records the number of communities found at a hierarchy level
func (r *Registry) RecordLevel(level, communities int) {
	r.SubclusterLevelsTotal.Inc()
	r.CommunitiesDetected.WithLabelValues(strconv.Itoa(level)).Observe(float64(communities))
}

// RecordRun records one independent label propagation run
func (r *Registry) RecordRun(status string, duration time.Duration, sweeps, harvested, forced int) {
	r.RunsTotal.WithLabelValues(status).Inc()
	r.RunDuration.Observe(duration.Seconds())
	r.SweepsTotal.Add(float64(sweeps))
	r.SweepsPerRun.Observe(float64(sweeps))
	r.PartitionsHarvested.Add(float64(harvested))
	r.ForcedCandidatesTotal.Add(float64(forced))
}

// RecordSplit records how many communities at a depth were reclustered and skipped
func (r *Registry) RecordSplit(depth, split, tooSmall, noLinks int) {
	r.CommunitiesSplitTotal.WithLabelValues(strconv.Itoa(depth)).Add(float64(split))
	r.CommunitiesSkippedTotal.WithLabelValues("too_small").Add(float64(tooSmall))
	r.CommunitiesSkippedTotal.WithLabelValues("no_links").Add(float64(noLinks))
}

// RecordExport records a result export
func (r *Registry) RecordExport(format, sink, status string, bytes int64, duration time.Duration) {
	r.ExportsTotal.WithLabelValues(format, sink, status).Inc()
	r.ExportBytesTotal.WithLabelValues(sink).Add(float64(bytes))
	r.ExportDuration.WithLabelValues(sink).Observe(duration.Seconds())
}

// UpdateSystemMetrics snapshots uptime and Go runtime statistics
func (r *Registry) UpdateSystemMetrics() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.UptimeSeconds.Set(time.Since(r.startTime).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	r.MemoryAllocBytes.Set(float64(m.Alloc))
	r.MemorySysBytes.Set(float64(m.Sys))
}

// WriteTextfile writes every registered metric to path in the Prometheus
// text exposition format, suitable for the node_exporter textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	r.UpdateSystemMetrics()
	return prometheus.WriteToTextfile(path, r.registry)
}
