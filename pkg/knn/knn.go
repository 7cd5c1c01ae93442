// Package knn builds directed k-nearest-neighbor graphs over the columns of a
// matrix.
package knn

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/dd0wney/cluso-speakeasy2/pkg/graph"
	"github.com/dd0wney/cluso-speakeasy2/pkg/logging"
	"github.com/dd0wney/cluso-speakeasy2/pkg/metrics"
	"github.com/dd0wney/cluso-speakeasy2/pkg/parallel"
	"github.com/dd0wney/cluso-speakeasy2/pkg/validation"
)

// chunkSize is the number of points whose neighbors one task computes
const chunkSize = 64

// BuilderConfig holds the collaborators of a Builder
type BuilderConfig struct {
	Workers int // 0 uses every CPU
	Logger  logging.Logger
	Metrics *metrics.Registry // nil disables metrics
}

// DefaultBuilderConfig returns the default builder configuration
func DefaultBuilderConfig() BuilderConfig {
	return BuilderConfig{
		Workers: parallel.DefaultWorkers(),
		Logger:  logging.DefaultLogger(),
		Metrics: metrics.DefaultRegistry(),
	}
}

// Builder computes k-NN graphs
type Builder struct {
	workers int
	logger  logging.Logger
	metrics *metrics.Registry
}

// NewBuilder creates a builder
func NewBuilder(config BuilderConfig) *Builder {
	logger := config.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	workers := config.Workers
	if workers <= 0 {
		workers = parallel.DefaultWorkers()
	}
	return &Builder{
		workers: workers,
		logger:  logger.With(logging.Component("knn")),
		metrics: config.Metrics,
	}
}

// Build connects every column of cols to its k nearest columns with the
// default builder. See Builder.Build.
func Build(cols mat.Matrix, k int, weighted bool) (*graph.Graph, error) {
	return NewBuilder(DefaultBuilderConfig()).Build(cols, k, weighted)
}

// neighbor is a candidate during the search
type neighbor struct {
	index    int
	distance float64
}

// Build treats every column of cols as a point and returns the directed graph
// with an edge from each point to each of its k nearest other points under
// Euclidean distance. Nearer points come first; equal distances go to the
// lower index. When weighted, an edge weighs 1/distance, and coincident points
// get twice the largest finite weight (1 if there is none).
func (b *Builder) Build(cols mat.Matrix, k int, weighted bool) (g *graph.Graph, err error) {
	start := time.Now()
	defer func() {
		if b.metrics != nil {
			b.metrics.RecordOperation("knn", metrics.StatusOf(err), time.Since(start))
		}
	}()

	points, err := b.columns(cols, k)
	if err != nil {
		return nil, err
	}
	n := len(points)

	found := make([][]neighbor, n)
	pool, err := parallel.NewWorkerPool(b.workers)
	if err != nil {
		return nil, &BuildError{K: k, Points: n, Cause: err}
	}
	defer pool.Close()

	for lo := 0; lo < n; lo += chunkSize {
		hi := min(lo+chunkSize, n)
		if err := pool.Submit(func() error {
			for i := lo; i < hi; i++ {
				found[i] = nearest(points, i, k)
			}
			return nil
		}); err != nil {
			return nil, &BuildError{K: k, Points: n, Cause: err}
		}
	}
	if err := pool.Wait(); err != nil {
		return nil, &BuildError{K: k, Points: n, Cause: err}
	}

	edges := make([]graph.Edge, 0, n*k)
	for i, list := range found {
		for _, nb := range list {
			edges = append(edges, graph.Edge{From: i, To: nb.index, Weight: nb.distance})
		}
	}
	if weighted {
		inverseDistances(edges)
	}

	g, err = graph.New(n, true, edges, weighted)
	if err != nil {
		return nil, &BuildError{K: k, Points: n, Cause: err}
	}

	if b.metrics != nil {
		b.metrics.RecordGraphSize("knn", n, len(edges))
	}
	b.logger.Debug("knn graph built",
		logging.Nodes(n),
		logging.Edges(len(edges)),
		logging.Int("k", k),
		logging.Bool("weighted", weighted),
		logging.Latency(time.Since(start)),
	)
	return g, nil
}

// columns validates the request and copies the points out of cols.
func (b *Builder) columns(cols mat.Matrix, k int) ([][]float64, error) {
	if cols == nil {
		return nil, &BuildError{K: k, Cause: ErrShape, Context: "nil matrix"}
	}
	dims, n := cols.Dims()

	if k < 0 {
		return nil, &BuildError{K: k, Points: n, Cause: ErrNegativeK}
	}
	if k >= n {
		return nil, &BuildError{K: k, Points: n, Cause: ErrKTooLarge}
	}
	req := validation.KNNRequest{Points: n, Dimensions: dims, K: k}
	if err := validation.ValidateKNNRequest(&req); err != nil {
		return nil, &BuildError{K: k, Points: n, Cause: fmt.Errorf("%w: %w", ErrShape, err)}
	}

	points := make([][]float64, n)
	for j := range points {
		points[j] = mat.Col(nil, j, cols)
		for d, v := range points[j] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &BuildError{K: k, Points: n, Cause: ErrNonFinite,
					Context: fmt.Sprintf("column %d, row %d", j, d)}
			}
		}
	}
	return points, nil
}

// nearest returns the k points closest to point i, excluding i itself.
func nearest(points [][]float64, i, k int) []neighbor {
	if k == 0 {
		return nil
	}
	all := make([]neighbor, 0, len(points)-1)
	for j, p := range points {
		if j == i {
			continue
		}
		all = append(all, neighbor{index: j, distance: floats.Distance(points[i], p, 2)})
	}
	sort.Slice(all, func(a, b int) bool {
		if all[a].distance != all[b].distance {
			return all[a].distance < all[b].distance
		}
		return all[a].index < all[b].index
	})
	return all[:k]
}

// inverseDistances replaces the distance stored in each edge weight by its
// reciprocal.
func inverseDistances(edges []graph.Edge) {
	largest := 0.0
	for _, e := range edges {
		if inv := 1 / e.Weight; !math.IsInf(inv, 0) && inv > largest {
			largest = inv
		}
	}
	coincident := 1.0
	if largest > 0 {
		coincident = 2 * largest
	}

	for i := range edges {
		inv := 1 / edges[i].Weight
		if math.IsInf(inv, 0) {
			inv = coincident
		}
		edges[i].Weight = inv
	}
}
