package speakeasy

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaults(t *testing.T) {
	s, err := DefaultOptions().Resolve(500)
	require.NoError(t, err)

	assert.Equal(t, DefaultDiscardTransient, s.DiscardTransient)
	assert.Equal(t, DefaultIndependentRuns, s.IndependentRuns)
	assert.Equal(t, runtime.NumCPU(), s.MaxThreads)
	assert.Equal(t, 0, s.TargetClusters, "target clusters are chosen per graph")
	assert.Equal(t, DefaultTargetPartitions, s.TargetPartitions)
	assert.Equal(t, DefaultSubcluster, s.Subcluster)
	assert.Equal(t, DefaultMinCluster, s.MinCluster)
	assert.True(t, s.SeedGenerated)
	assert.False(t, s.Verbose)
}

func TestResolveExplicitZero(t *testing.T) {
	opts := Options{
		DiscardTransient: Ptr(uint(0)),
		IndependentRuns:  Ptr(uint(0)),
		MaxThreads:       Ptr(uint(0)),
		Seed:             Ptr(uint64(0)),
		TargetClusters:   Ptr(uint(0)),
		TargetPartitions: Ptr(uint(0)),
		Subcluster:       Ptr(uint(0)),
		MinCluster:       Ptr(uint(0)),
	}
	s, err := opts.Resolve(100)
	require.NoError(t, err)

	// Zero is a real value for these
	assert.Equal(t, 0, s.DiscardTransient)
	assert.Equal(t, 0, s.MinCluster)
	assert.Equal(t, uint64(0), s.Seed)
	assert.False(t, s.SeedGenerated)

	// ...and means "default" for these
	assert.Equal(t, DefaultIndependentRuns, s.IndependentRuns)
	assert.Equal(t, runtime.NumCPU(), s.MaxThreads)
	assert.Equal(t, 0, s.TargetClusters)
	assert.Equal(t, DefaultTargetPartitions, s.TargetPartitions)
	assert.Equal(t, DefaultSubcluster, s.Subcluster)
}

func TestResolveExplicitValues(t *testing.T) {
	opts := Options{
		DiscardTransient: Ptr(uint(1)),
		IndependentRuns:  Ptr(uint(4)),
		MaxThreads:       Ptr(uint(2)),
		Seed:             Ptr(uint64(99)),
		TargetClusters:   Ptr(uint(7)),
		TargetPartitions: Ptr(uint(3)),
		Subcluster:       Ptr(uint(2)),
		MinCluster:       Ptr(uint(8)),
		Verbose:          true,
	}
	s, err := opts.Resolve(100)
	require.NoError(t, err)

	assert.Equal(t, Settings{
		DiscardTransient: 1,
		IndependentRuns:  4,
		MaxThreads:       2,
		Seed:             99,
		TargetClusters:   7,
		TargetPartitions: 3,
		Subcluster:       2,
		MinCluster:       8,
		Verbose:          true,
	}, s)
}

func TestResolveTooManyTargetClusters(t *testing.T) {
	_, err := Options{TargetClusters: Ptr(uint(11))}.Resolve(10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooManyTargetClusters))

	_, err = Options{TargetClusters: Ptr(uint(10))}.Resolve(10)
	assert.NoError(t, err)
}

func TestResolveRejectsOutOfRange(t *testing.T) {
	_, err := Options{MaxThreads: Ptr(uint(100000))}.Resolve(10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidOptions))

	_, err = Options{IndependentRuns: Ptr(uint(1) << 40)}.Resolve(10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidOptions))
}

func TestDefaultTargetClusters(t *testing.T) {
	tests := []struct {
		nodes, want int
	}{
		{0, 0},
		{1, 1},
		{9, 9},
		{10, 10},
		{100, 10},
		{1000, 10},
		{1099, 10},
		{2500, 25},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DefaultTargetClusters(tt.nodes), "nodes=%d", tt.nodes)
	}
}

func TestTargetClustersForSubgraph(t *testing.T) {
	s := Settings{TargetClusters: 12}
	assert.Equal(t, 12, s.targetClustersFor(100))
	assert.Equal(t, 6, s.targetClustersFor(6), "explicit count is capped at the subgraph size")

	s.TargetClusters = 0
	assert.Equal(t, 5, s.targetClustersFor(5))
	assert.Equal(t, 10, s.targetClustersFor(50))
}
