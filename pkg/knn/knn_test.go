package knn

import (
	"errors"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/dd0wney/cluso-speakeasy2/pkg/logging"
	"github.com/dd0wney/cluso-speakeasy2/pkg/metrics"
)

func testBuilder(workers int) *Builder {
	return NewBuilder(BuilderConfig{Workers: workers, Logger: logging.NewNopLogger()})
}

// line places points on the x axis at the given positions, one per column.
func line(xs ...float64) *mat.Dense {
	data := make([]float64, 0, 2*len(xs))
	data = append(data, xs...)
	data = append(data, make([]float64, len(xs))...)
	return mat.NewDense(2, len(xs), data)
}

func targets(edges []struct{ from, to int }, from int) []int {
	var out []int
	for _, e := range edges {
		if e.from == from {
			out = append(out, e.to)
		}
	}
	return out
}

func TestBuildNearestNeighbors(t *testing.T) {
	g, err := testBuilder(2).Build(line(0, 1, 3, 7), 2, false)
	require.NoError(t, err)

	assert.True(t, g.Directed)
	assert.False(t, g.Weighted)
	require.Equal(t, 4, g.N)
	require.Equal(t, 8, g.EdgeCount())

	var edges []struct{ from, to int }
	for _, e := range g.Edges {
		edges = append(edges, struct{ from, to int }{e.From, e.To})
	}
	assert.Equal(t, []int{1, 2}, targets(edges, 0))
	assert.Equal(t, []int{0, 2}, targets(edges, 1))
	assert.Equal(t, []int{1, 0}, targets(edges, 2))
	assert.Equal(t, []int{2, 1}, targets(edges, 3))
}

func TestBuildTiesGoToLowerIndex(t *testing.T) {
	// Points 0 and 2 are both at distance 1 from point 1
	g, err := testBuilder(1).Build(line(0, 1, 2), 1, false)
	require.NoError(t, err)
	assert.Equal(t, 0, g.Edges[1].To)
}

func TestBuildWeighted(t *testing.T) {
	g, err := testBuilder(1).Build(line(0, 0.5, 2.5), 1, true)
	require.NoError(t, err)
	require.True(t, g.Weighted)

	assert.InDelta(t, 2.0, g.Edges[0].Weight, 1e-12)
	assert.InDelta(t, 2.0, g.Edges[1].Weight, 1e-12)
	assert.InDelta(t, 0.5, g.Edges[2].Weight, 1e-12)
}

func TestBuildCoincidentPoints(t *testing.T) {
	g, err := testBuilder(1).Build(line(0, 0, 4), 1, true)
	require.NoError(t, err)

	// Largest finite weight is 1/4 from point 2
	assert.InDelta(t, 0.5, g.Edges[0].Weight, 1e-12)
	assert.InDelta(t, 0.5, g.Edges[1].Weight, 1e-12)
	assert.InDelta(t, 0.25, g.Edges[2].Weight, 1e-12)

	all, err := testBuilder(1).Build(line(1, 1), 1, true)
	require.NoError(t, err)
	assert.Equal(t, 1.0, all.Edges[0].Weight)
}

func TestBuildZeroK(t *testing.T) {
	g, err := testBuilder(1).Build(line(0, 1, 2), 0, true)
	require.NoError(t, err)
	assert.Equal(t, 3, g.N)
	assert.Zero(t, g.EdgeCount())
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		cols mat.Matrix
		k    int
		want error
	}{
		{"k equals columns", line(0, 1, 2), 3, ErrKTooLarge},
		{"k above columns", line(0, 1, 2), 10, ErrKTooLarge},
		{"negative k", line(0, 1, 2), -1, ErrNegativeK},
		{"nil matrix", nil, 1, ErrShape},
		{"nan entry", line(0, math.NaN(), 2), 1, ErrNonFinite},
		{"infinite entry", line(0, math.Inf(1), 2), 1, ErrNonFinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := testBuilder(1).Build(tt.cols, tt.k, false)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)

			var buildErr *BuildError
			assert.True(t, errors.As(err, &buildErr))
		})
	}
}

func TestBuildIndependentOfWorkers(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	data := make([]float64, 3*300)
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	cols := mat.NewDense(3, 300, data)

	one, err := testBuilder(1).Build(cols, 5, true)
	require.NoError(t, err)
	many, err := testBuilder(8).Build(cols, 5, true)
	require.NoError(t, err)
	assert.Equal(t, one.Edges, many.Edges)
}

func TestBuildRecordsMetrics(t *testing.T) {
	registry := metrics.NewRegistry()
	b := NewBuilder(BuilderConfig{Workers: 1, Logger: logging.NewNopLogger(), Metrics: registry})

	_, err := b.Build(line(0, 1, 2), 1, false)
	require.NoError(t, err)
	_, err = b.Build(line(0, 1, 2), 5, false)
	require.Error(t, err)

	var metric dto.Metric
	for status, want := range map[string]float64{metrics.StatusSuccess: 1, metrics.StatusError: 1} {
		counter, err := registry.OperationsTotal.GetMetricWithLabelValues("knn", status)
		require.NoError(t, err)
		require.NoError(t, counter.Write(&metric))
		assert.Equal(t, want, metric.Counter.GetValue(), status)
	}
}

func TestBuildProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("every point has out-degree k without self loops", prop.ForAll(
		func(n, dims, kSeed int, seed uint64) bool {
			k := kSeed % n
			rng := rand.New(rand.NewSource(seed))
			data := make([]float64, dims*n)
			for i := range data {
				data[i] = float64(rng.Intn(5)) // coincident points are common
			}

			g, err := testBuilder(2).Build(mat.NewDense(dims, n, data), k, true)
			if err != nil {
				return false
			}

			out := make([]map[int]bool, n)
			for i := range out {
				out[i] = make(map[int]bool)
			}
			for _, e := range g.Edges {
				if e.From == e.To || out[e.From][e.To] {
					return false
				}
				if math.IsInf(e.Weight, 0) || e.Weight <= 0 {
					return false
				}
				out[e.From][e.To] = true
			}
			for _, targets := range out {
				if len(targets) != k {
					return false
				}
			}
			return true
		},
		gen.IntRange(2, 40),
		gen.IntRange(1, 4),
		gen.IntRange(0, 1000),
		gen.UInt64(),
	))

	properties.Property("k at or above the column count fails", prop.ForAll(
		func(n, extra int) bool {
			_, err := testBuilder(1).Build(mat.NewDense(1, n, make([]float64, n)), n+extra, false)
			return errors.Is(err, ErrKTooLarge)
		},
		gen.IntRange(1, 20),
		gen.IntRange(0, 5),
	))

	properties.TestingRun(t)
}
