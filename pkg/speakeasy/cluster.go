package speakeasy

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-speakeasy2/pkg/graph"
	"github.com/dd0wney/cluso-speakeasy2/pkg/logging"
	"github.com/dd0wney/cluso-speakeasy2/pkg/metrics"
	"github.com/dd0wney/cluso-speakeasy2/pkg/parallel"
	"github.com/dd0wney/cluso-speakeasy2/pkg/partition"
)

// Stats summarizes the work done by one clustering call
type Stats struct {
	Runs             int
	Sweeps           int
	Candidates       int
	ForcedCandidates int // candidates recorded before the labels stabilized
	Harvested        int
	Split            int // communities split by subclustering
	NullRuns         int // runs on rewired copies, not counted in Runs
	Unstructured     int // (sub)graphs that fell back to their components
	Duration         time.Duration
}

// Result is the output of a clustering call.
type Result struct {
	Levels      partition.Hierarchy // coarsest first, len == Settings.Subcluster
	Seed        uint64              // root seed, generated when none was given
	OperationID string
	Settings    Settings
	Stats       Stats
}

// Membership returns the top (coarsest) level, which is the whole result
// when no subclustering was requested.
func (r *Result) Membership() partition.Membership {
	return r.Levels.Top()
}

// Hierarchical reports whether the result has more than one level
func (r *Result) Hierarchical() bool {
	return len(r.Levels) > 1
}

// ClustererConfig holds the collaborators of a Clusterer
type ClustererConfig struct {
	Logger  logging.Logger
	Metrics *metrics.Registry // nil disables metrics
}

// DefaultClustererConfig uses the process-wide logger and metrics registry
func DefaultClustererConfig() ClustererConfig {
	return ClustererConfig{
		Logger:  logging.DefaultLogger(),
		Metrics: metrics.DefaultRegistry(),
	}
}

// Clusterer runs SpeakEasy2 community detection.
type Clusterer struct {
	logger  logging.Logger
	metrics *metrics.Registry
}

// NewClusterer creates a clusterer
func NewClusterer(config ClustererConfig) *Clusterer {
	logger := config.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Clusterer{
		logger:  logger.With(logging.Component("speakeasy")),
		metrics: config.Metrics,
	}
}

// Cluster resolves the input graph with the weight specification and
// clusters it. See ClusterGraph.
func Cluster(ctx context.Context, in graph.Input, w graph.WeightSpec, opts Options) (*Result, error) {
	return NewClusterer(DefaultClustererConfig()).Cluster(ctx, in, w, opts)
}

// ClusterGraph clusters an already resolved graph with a default clusterer.
func ClusterGraph(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	return NewClusterer(DefaultClustererConfig()).ClusterGraph(ctx, g, opts)
}

// Cluster resolves the input graph with the weight specification and
// clusters it. Input errors are reported before any clustering work.
func (c *Clusterer) Cluster(ctx context.Context, in graph.Input, w graph.WeightSpec, opts Options) (*Result, error) {
	g, err := graph.Resolve(in, w)
	if err != nil {
		c.record(time.Now(), err)
		return nil, &Error{Op: "Cluster", Level: -1, Cause: err, Context: "weights " + w.String()}
	}
	return c.ClusterGraph(ctx, g, opts)
}

// ClusterGraph partitions g into communities. The result holds one
// membership per subclustering level and depends only on the graph, the
// options and the seed, never on the number of threads.
func (c *Clusterer) ClusterGraph(ctx context.Context, g *graph.Graph, opts Options) (result *Result, err error) {
	start := time.Now()
	defer func() { c.record(start, err) }()

	if g == nil {
		return nil, &Error{Op: "Cluster", Level: -1, Cause: ErrNilGraph}
	}

	settings, err := opts.Resolve(g.N)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	log := c.logger.With(logging.OperationID(id))
	timer := logging.StartTimer(log, "clustering finished",
		logging.Nodes(g.N), logging.Edges(g.EdgeCount()), logging.Seed(settings.Seed))

	if settings.SeedGenerated {
		log.Info("generated seed", logging.Seed(settings.Seed))
	}
	if c.metrics != nil {
		c.metrics.OperationsInFlight.Inc()
		defer c.metrics.OperationsInFlight.Dec()
		c.metrics.RecordGraphSize("cluster", g.N, g.EdgeCount())
	}

	pool, err := parallel.NewWorkerPool(settings.MaxThreads)
	if err != nil {
		return nil, &Error{Op: "Cluster", Level: -1, Cause: err}
	}
	defer pool.Close()

	run := &clusterRun{
		ctx:      ctx,
		g:        g,
		settings: settings,
		pool:     pool,
		log:      log,
		metrics:  c.metrics,
	}

	levels, err := run.hierarchy()
	if err != nil {
		timer.Fail(err)
		return nil, err
	}

	result = &Result{
		Levels:      levels,
		Seed:        settings.Seed,
		OperationID: id,
		Settings:    settings,
		Stats: Stats{
			Runs:             int(run.stats.runs.Load()),
			Sweeps:           int(run.stats.sweeps.Load()),
			Candidates:       int(run.stats.candidates.Load()),
			ForcedCandidates: int(run.stats.forced.Load()),
			Harvested:        int(run.stats.harvested.Load()),
			Split:            int(run.stats.split.Load()),
			NullRuns:         int(run.stats.nullRuns.Load()),
			Unstructured:     int(run.stats.unstructured.Load()),
			Duration:         time.Since(start),
		},
	}

	if settings.Verbose {
		timer.Done(logging.InfoLevel, logging.Int("levels", len(levels)), logging.Int("communities", result.Membership().Count()))
	} else {
		timer.Done(logging.DebugLevel)
	}
	return result, nil
}

func (c *Clusterer) record(start time.Time, err error) {
	if c.metrics != nil {
		c.metrics.RecordOperation("cluster", metrics.StatusOf(err), time.Since(start))
	}
}
