// Package order arranges nodes so that communities appear as contiguous
// blocks, which makes community structure visible in adjacency heatmaps.
package order

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dd0wney/cluso-speakeasy2/pkg/graph"
	"github.com/dd0wney/cluso-speakeasy2/pkg/partition"
)

var (
	ErrMembershipLength = errors.New("membership length does not match number of nodes")
	ErrNoLevels         = errors.New("at least one membership level is required")
	ErrNilGraph         = errors.New("graph is nil")
)

// Nodes returns one ordering per level of h. At level 0 communities are
// laid out by descending size (ties to the smaller label) and the nodes of
// a community by descending weighted degree inside it (ties to the smaller
// index). Every deeper level reorders each block of the level above by the
// same rule using its own labels, so level l always refines level l-1.
func Nodes(g *graph.Graph, h partition.Hierarchy) ([][]int, error) {
	if g == nil {
		return nil, ErrNilGraph
	}
	if len(h) == 0 {
		return nil, ErrNoLevels
	}
	for lvl, m := range h {
		if len(m) != g.N {
			return nil, fmt.Errorf("%w: level %d has %d labels for %d nodes", ErrMembershipLength, lvl, len(m), g.N)
		}
	}

	all := make([]int, g.N)
	for i := range all {
		all[i] = i
	}
	blocks := [][]int{all}

	orders := make([][]int, len(h))
	for lvl, m := range h {
		degree := intraDegree(g, m)

		next := make([][]int, 0, len(blocks))
		for _, block := range blocks {
			next = append(next, arrange(block, m, degree)...)
		}
		blocks = next

		orders[lvl] = make([]int, 0, g.N)
		for _, block := range blocks {
			orders[lvl] = append(orders[lvl], block...)
		}
	}
	return orders, nil
}

// Single orders the nodes of g by a single membership.
func Single(g *graph.Graph, m partition.Membership) ([]int, error) {
	orders, err := Nodes(g, partition.Hierarchy{m})
	if err != nil {
		return nil, err
	}
	return orders[0], nil
}

// Permute applies an ordering to a membership, e.g. to label heatmap rows.
func Permute(m partition.Membership, ordering []int) partition.Membership {
	out := make(partition.Membership, len(ordering))
	for i, node := range ordering {
		out[i] = m[node]
	}
	return out
}

// intraDegree returns, for every node, the summed weight of its links to
// nodes with the same label.
func intraDegree(g *graph.Graph, m partition.Membership) []float64 {
	degree := make([]float64, g.N)
	for i, nbrs := range g.Adjacency() {
		for _, nb := range nbrs {
			if m[nb.Node] == m[i] {
				degree[i] += nb.Weight
			}
		}
	}
	return degree
}

// arrange splits block into its communities under m and sorts both the
// communities and their members.
func arrange(block []int, m partition.Membership, degree []float64) [][]int {
	byLabel := make(map[int][]int)
	labels := make([]int, 0)
	for _, node := range block {
		l := m[node]
		if _, ok := byLabel[l]; !ok {
			labels = append(labels, l)
		}
		byLabel[l] = append(byLabel[l], node)
	}

	sort.Slice(labels, func(a, b int) bool {
		sa, sb := len(byLabel[labels[a]]), len(byLabel[labels[b]])
		if sa != sb {
			return sa > sb
		}
		return labels[a] < labels[b]
	})

	out := make([][]int, len(labels))
	for i, l := range labels {
		members := byLabel[l]
		sort.Slice(members, func(a, b int) bool {
			da, db := degree[members[a]], degree[members[b]]
			if da != db {
				return da > db
			}
			return members[a] < members[b]
		})
		out[i] = members
	}
	return out
}
