package speakeasy

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dd0wney/cluso-speakeasy2/pkg/graph"
	"github.com/dd0wney/cluso-speakeasy2/pkg/logging"
	"github.com/dd0wney/cluso-speakeasy2/pkg/metrics"
	"github.com/dd0wney/cluso-speakeasy2/pkg/parallel"
	"github.com/dd0wney/cluso-speakeasy2/pkg/partition"
)

// workItem is one (sub)graph to cluster at a hierarchy level.
type workItem struct {
	label int   // community label at the previous level, 0 at level 0
	nodes []int // local node index -> node of the full graph
	sub   *graph.Graph

	runs      [][]partition.Membership // harvested partitions per run
	null      []nullSample             // runs on rewired copies of sub
	consensus partition.Membership
}

// counters accumulate statistics from concurrently executing runs
type counters struct {
	runs       atomic.Int64
	sweeps     atomic.Int64
	candidates atomic.Int64
	forced     atomic.Int64
	harvested  atomic.Int64
	split      atomic.Int64

	nullRuns     atomic.Int64
	unstructured atomic.Int64
}

// clusterRun is the state of one clustering call. Levels are built strictly
// in order; within a level every run of every work item shares one pool.
type clusterRun struct {
	ctx      context.Context
	g        *graph.Graph
	settings Settings
	pool     *parallel.WorkerPool
	log      logging.Logger
	metrics  *metrics.Registry
	stats    counters
}

// hierarchy builds exactly settings.Subcluster levels, coarsest first.
func (r *clusterRun) hierarchy() (partition.Hierarchy, error) {
	levels := make(partition.Hierarchy, 0, r.settings.Subcluster)
	if r.g.N == 0 {
		for i := 0; i < r.settings.Subcluster; i++ {
			levels = append(levels, partition.Membership{})
		}
		return levels, nil
	}

	nodes := make([]int, r.g.N)
	for i := range nodes {
		nodes[i] = i
	}
	root := &workItem{nodes: nodes, sub: r.g}
	if err := r.runLevel(0, []*workItem{root}); err != nil {
		return nil, err
	}
	levels = append(levels, root.consensus)
	r.finishLevel(0, root.consensus)

	for depth := 1; depth < r.settings.Subcluster; depth++ {
		if err := r.ctx.Err(); err != nil {
			return nil, &Error{Op: "Subcluster", Level: depth, Cause: err}
		}

		prev := levels[depth-1]
		items, err := r.split(depth, prev)
		if err != nil {
			return nil, err
		}
		if err := r.runLevel(depth, items); err != nil {
			return nil, err
		}

		next := r.merge(prev, items)
		levels = append(levels, next)
		r.finishLevel(depth, next)
	}
	return levels, nil
}

// split selects the communities of prev that are reclustered at depth: those
// with at least MinCluster members and at least one internal link. The rest
// keep their label.
func (r *clusterRun) split(depth int, prev partition.Membership) ([]*workItem, error) {
	labels, members := prev.Communities()

	items := make([]*workItem, 0, len(labels))
	tooSmall, noLinks := 0, 0
	for i, nodes := range members {
		if len(nodes) < r.settings.MinCluster {
			tooSmall++
			continue
		}
		sub, err := r.g.Induced(nodes)
		if err != nil {
			return nil, &Error{Op: "Subcluster", Level: depth, Cause: err,
				Context: fmt.Sprintf("community %d", labels[i])}
		}
		if !sub.HasLinks() {
			noLinks++
			continue
		}
		items = append(items, &workItem{label: labels[i], nodes: nodes, sub: sub})
	}

	if r.metrics != nil {
		r.metrics.RecordSplit(depth, len(items), tooSmall, noLinks)
	}
	r.progress("subclustering level",
		logging.Depth(depth),
		logging.Int("communities", len(labels)),
		logging.Int("reclustered", len(items)),
		logging.Int("too_small", tooSmall),
		logging.Int("no_links", noLinks),
	)
	return items, nil
}

// merge writes the sub-partitions of items into a copy of prev. Every
// community that actually split gets fresh labels above prev's largest.
func (r *clusterRun) merge(prev partition.Membership, items []*workItem) partition.Membership {
	next := prev.Clone()
	nextLabel := prev.MaxLabel() + 1

	for _, item := range items {
		k := item.consensus.MaxLabel() + 1
		if k <= 1 {
			continue
		}
		for local, node := range item.nodes {
			next[node] = nextLabel + item.consensus[local]
		}
		nextLabel += k
		r.stats.split.Add(1)
	}
	return next
}

// runLevel executes every independent run and every null run of every item
// on the shared pool, waits for all of them, and then forms each item's
// consensus.
func (r *clusterRun) runLevel(depth int, items []*workItem) error {
	for _, item := range items {
		item.runs = make([][]partition.Membership, r.settings.IndependentRuns)
		cfg := r.settings.engineConfig(item.sub.N)

		for run := 0; run < r.settings.IndependentRuns; run++ {
			seed := DeriveSeed(r.settings.Seed, uint64(depth), uint64(item.label), uint64(run))
			if err := r.pool.Submit(func() error {
				return r.execute(depth, item, run, seed, cfg)
			}); err != nil {
				return &Error{Op: "Run", Level: depth, Cause: err}
			}
		}

		if !item.sub.HasLinks() {
			continue
		}
		item.null = make([]nullSample, NullRuns)
		for run := range item.null {
			seed := DeriveSeed(r.settings.Seed, uint64(depth), uint64(item.label), nullStream, uint64(run))
			if err := r.pool.Submit(func() error {
				return r.executeNull(item, run, seed, cfg)
			}); err != nil {
				return &Error{Op: "Run", Level: depth, Cause: err}
			}
		}
	}
	if err := r.wait(depth); err != nil {
		return err
	}

	for _, item := range items {
		if err := r.pool.Submit(func() error {
			r.decide(depth, item)
			return nil
		}); err != nil {
			return &Error{Op: "Consensus", Level: depth, Cause: err}
		}
	}
	return r.wait(depth)
}

func (r *clusterRun) wait(depth int) error {
	err := r.pool.Wait()
	if err == nil {
		return nil
	}
	if ctxErr := r.ctx.Err(); ctxErr != nil {
		return &Error{Op: "Run", Level: depth, Cause: ctxErr}
	}
	return &Error{Op: "Run", Level: depth, Cause: fmt.Errorf("%w: %w", ErrRunFailed, err)}
}

// execute performs one independent run. It only writes its own slot of
// item.runs.
func (r *clusterRun) execute(depth int, item *workItem, run int, seed uint64, cfg engineConfig) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	res := newEngine(item.sub, newRand(seed)).run(cfg)
	elapsed := time.Since(start)

	item.runs[run] = res.partitions

	r.stats.runs.Add(1)
	r.stats.sweeps.Add(int64(res.sweeps))
	r.stats.candidates.Add(int64(res.candidates))
	r.stats.forced.Add(int64(res.forced))
	r.stats.harvested.Add(int64(len(res.partitions)))

	if r.metrics != nil {
		r.metrics.RecordRun(metrics.StatusSuccess, elapsed, res.sweeps, len(res.partitions), res.forced)
	}
	r.log.Debug("run finished",
		logging.Depth(depth),
		logging.Int("community", item.label),
		logging.Run(run),
		logging.Seed(seed),
		logging.Nodes(item.sub.N),
		logging.Int("sweeps", res.sweeps),
		logging.Int("forced", res.forced),
		logging.Latency(elapsed),
	)
	return nil
}

// executeNull runs the engine once on a rewired copy of item.sub. It only
// writes its own slot of item.null.
func (r *clusterRun) executeNull(item *workItem, run int, seed uint64, cfg engineConfig) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	rewired := item.sub.Rewired(seed)
	res := newEngine(rewired, newRand(DeriveSeed(seed))).run(cfg)
	item.null[run] = nullSample{g: rewired, partitions: res.partitions}
	r.stats.nullRuns.Add(1)
	return nil
}

// decide forms the consensus of item. When the runs found no more structure
// than the null runs did, the connected components of item.sub are used
// instead.
func (r *clusterRun) decide(depth int, item *workItem) {
	if item.null == nil || structured(item.sub, item.runs, item.null) {
		item.consensus = consensus(item.sub, flatten(item.runs))
		return
	}
	item.consensus = linkComponents(item.sub)
	r.stats.unstructured.Add(1)
	r.log.Debug("no community structure",
		logging.Depth(depth),
		logging.Int("community", item.label),
		logging.Nodes(item.sub.N),
		logging.Int("components", item.consensus.Count()),
	)
}

func (r *clusterRun) finishLevel(depth int, m partition.Membership) {
	count := m.Count()
	if r.metrics != nil {
		r.metrics.RecordLevel(depth, count)
	}
	r.progress("level complete", logging.Depth(depth), logging.Int("communities", count))
}

// progress logs at Info when verbose output was requested, Debug otherwise.
func (r *clusterRun) progress(msg string, fields ...logging.Field) {
	if r.settings.Verbose {
		r.log.Info(msg, fields...)
		return
	}
	r.log.Debug(msg, fields...)
}
