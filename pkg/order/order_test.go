package order

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-speakeasy2/pkg/graph"
	"github.com/dd0wney/cluso-speakeasy2/pkg/partition"
)

func mustGraph(t *testing.T, n int, edges []graph.Edge, weighted bool) *graph.Graph {
	t.Helper()
	g, err := graph.New(n, false, edges, weighted)
	require.NoError(t, err)
	return g
}

func TestSingleOrdersBySizeThenDegree(t *testing.T) {
	// Community 1 = {0, 2, 4, 5} (larger), community 0 = {1, 3}
	g := mustGraph(t, 6, []graph.Edge{
		{From: 0, To: 2}, {From: 2, To: 4}, {From: 2, To: 5}, {From: 4, To: 5},
		{From: 1, To: 3},
		{From: 0, To: 1}, {From: 0, To: 3},
	}, false)
	m := partition.Membership{1, 0, 1, 0, 1, 1}

	got, err := Single(g, m)
	require.NoError(t, err)

	// Intra degrees: 0->1, 2->3, 4->2, 5->2, 1->1, 3->1
	assert.Equal(t, []int{2, 4, 5, 0, 1, 3}, got)
}

func TestSingleEqualSizesUseSmallerLabel(t *testing.T) {
	g := mustGraph(t, 4, nil, false)
	got, err := Single(g, partition.Membership{7, 3, 7, 3})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 0, 2}, got)
}

func TestSingleUsesWeights(t *testing.T) {
	g := mustGraph(t, 3, []graph.Edge{
		{From: 0, To: 1, Weight: 1},
		{From: 1, To: 2, Weight: 5},
	}, true)
	got, err := Single(g, partition.Membership{0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 0}, got)
}

func TestNodesHierarchyRefinesBlocks(t *testing.T) {
	g := mustGraph(t, 8, []graph.Edge{
		{From: 0, To: 1}, {From: 1, To: 2}, {From: 3, To: 4},
		{From: 5, To: 6}, {From: 6, To: 7},
	}, false)
	h := partition.Hierarchy{
		{0, 0, 0, 0, 0, 1, 1, 1},
		{2, 2, 2, 3, 3, 1, 1, 4},
	}

	orders, err := Nodes(g, h)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, []int{1, 0, 2, 3, 4, 6, 5, 7}, orders[0])
	// Top block {0..4} splits into {0,1,2} then {3,4}; block {5,6,7} into {5,6} then {7}
	assert.Equal(t, []int{1, 0, 2, 3, 4, 5, 6, 7}, orders[1])
}

func TestNodesErrors(t *testing.T) {
	g := mustGraph(t, 3, nil, false)

	_, err := Nodes(g, partition.Hierarchy{{0, 0, 0}, {0, 1}})
	assert.True(t, errors.Is(err, ErrMembershipLength))

	_, err = Nodes(g, nil)
	assert.True(t, errors.Is(err, ErrNoLevels))

	_, err = Single(nil, partition.Membership{0})
	assert.True(t, errors.Is(err, ErrNilGraph))
}

func TestPermute(t *testing.T) {
	m := partition.Membership{5, 6, 7}
	assert.Equal(t, partition.Membership{7, 5, 6}, Permute(m, []int{2, 0, 1}))
}

func TestNodesProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("orderings are permutations with contiguous blocks by descending size", prop.ForAll(
		func(top, fine []int) bool {
			n := len(top)
			if len(fine) < n {
				return true
			}
			fine = fine[:n]

			g, err := graph.New(n, false, nil, false)
			if err != nil {
				return false
			}
			orders, err := Nodes(g, partition.Hierarchy{top, fine})
			if err != nil {
				return false
			}

			for _, ordering := range orders {
				if !isPermutation(ordering, n) {
					return false
				}
			}
			if !contiguousBySize(Permute(top, orders[0])) {
				return false
			}
			return refines(Permute(top, orders[1]))
		},
		gen.SliceOf(gen.IntRange(0, 4)),
		gen.SliceOf(gen.IntRange(0, 4)),
	))

	properties.TestingRun(t)
}

func isPermutation(ordering []int, n int) bool {
	if len(ordering) != n {
		return false
	}
	seen := make([]bool, n)
	for _, v := range ordering {
		if v < 0 || v >= n || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

// contiguousBySize checks that equal labels form runs whose lengths do not
// increase.
func contiguousBySize(labels []int) bool {
	done := make(map[int]bool)
	prevSize := len(labels) + 1
	for i := 0; i < len(labels); {
		l := labels[i]
		if done[l] {
			return false
		}
		j := i
		for j < len(labels) && labels[j] == l {
			j++
		}
		if j-i > prevSize {
			return false
		}
		prevSize = j - i
		done[l] = true
		i = j
	}
	return true
}

// refines checks that the top-level labels still form contiguous runs.
func refines(labels []int) bool {
	done := make(map[int]bool)
	for i := 0; i < len(labels); i++ {
		if i > 0 && labels[i] != labels[i-1] {
			done[labels[i-1]] = true
		}
		if done[labels[i]] {
			return false
		}
	}
	return true
}
