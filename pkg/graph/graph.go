package graph

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// Edge is a single (possibly weighted) edge between two node indices.
type Edge struct {
	From   int
	To     int
	Weight float64
}

// Neighbor is an entry in a node's symmetrized neighborhood.
type Neighbor struct {
	Node   int
	Weight float64
}

// Graph is the canonical graph structure consumed by the clustering,
// ordering and k-NN code. Nodes are the integers [0, N). A Graph must not be
// modified after construction; it is safe for concurrent readers.
type Graph struct {
	N        int
	Directed bool
	Weighted bool
	Edges    []Edge

	adjOnce sync.Once
	adj     [][]Neighbor
	degree  []float64
	total   float64
}

// New validates the edges and builds a graph. When weighted is false every
// edge weight is set to 1.
func New(n int, directed bool, edges []Edge, weighted bool) (*Graph, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative node count %d", ErrInvalidGraph, n)
	}

	owned := make([]Edge, len(edges))
	for i, e := range edges {
		if e.From < 0 || e.From >= n || e.To < 0 || e.To >= n {
			return nil, &GraphError{Op: "New", Index: i, Cause: ErrEdgeOutOfRange,
				Context: fmt.Sprintf("(%d, %d) with %d nodes", e.From, e.To, n)}
		}
		if !weighted {
			e.Weight = 1
		} else if math.IsNaN(e.Weight) || math.IsInf(e.Weight, 0) || e.Weight <= 0 {
			return nil, &GraphError{Op: "New", Index: i, Cause: ErrInvalidWeight,
				Context: fmt.Sprintf("weight %v", e.Weight)}
		}
		owned[i] = e
	}

	return &Graph{
		N:        n,
		Directed: directed,
		Weighted: weighted,
		Edges:    owned,
	}, nil
}

// EdgeCount returns the number of edges
func (g *Graph) EdgeCount() int {
	return len(g.Edges)
}

// build computes the symmetrized, merged neighbor lists once.
func (g *Graph) build() {
	g.adjOnce.Do(func() {
		adj := make([][]Neighbor, g.N)
		for _, e := range g.Edges {
			if e.From == e.To {
				continue
			}
			adj[e.From] = append(adj[e.From], Neighbor{Node: e.To, Weight: e.Weight})
			adj[e.To] = append(adj[e.To], Neighbor{Node: e.From, Weight: e.Weight})
		}

		degree := make([]float64, g.N)
		total := 0.0
		for i, list := range adj {
			sort.Slice(list, func(a, b int) bool { return list[a].Node < list[b].Node })

			// Merge parallel arcs (e.g. i->j and j->i of a directed graph)
			merged := list[:0]
			for _, nb := range list {
				if len(merged) > 0 && merged[len(merged)-1].Node == nb.Node {
					merged[len(merged)-1].Weight += nb.Weight
					continue
				}
				merged = append(merged, nb)
			}
			adj[i] = merged

			for _, nb := range merged {
				degree[i] += nb.Weight
			}
			total += degree[i]
		}

		g.adj = adj
		g.degree = degree
		g.total = total
	})
}

// Neighbors returns the symmetrized neighborhood of node i sorted by node
// index. Direction is ignored and self loops are excluded. The returned slice
// must not be modified.
func (g *Graph) Neighbors(i int) []Neighbor {
	g.build()
	return g.adj[i]
}

// Adjacency returns all neighbor lists. The result must not be modified.
func (g *Graph) Adjacency() [][]Neighbor {
	g.build()
	return g.adj
}

// WeightedDegree returns the summed neighbor weight of node i
func (g *Graph) WeightedDegree(i int) float64 {
	g.build()
	return g.degree[i]
}

// TotalDegree returns the sum of all weighted degrees (twice the symmetrized
// edge weight).
func (g *Graph) TotalDegree() float64 {
	g.build()
	return g.total
}

// HasLinks reports whether any two distinct nodes are connected.
func (g *Graph) HasLinks() bool {
	return g.TotalDegree() > 0
}

// Weights returns the edge weights in edge order, or nil when unweighted.
func (g *Graph) Weights() []float64 {
	if !g.Weighted {
		return nil
	}
	out := make([]float64, len(g.Edges))
	for i, e := range g.Edges {
		out[i] = e.Weight
	}
	return out
}

// Induced returns the subgraph over nodes. Node nodes[i] becomes node i of
// the result; only edges with both endpoints in nodes are kept, weights are
// preserved.
func (g *Graph) Induced(nodes []int) (*Graph, error) {
	local := make(map[int]int, len(nodes))
	for i, node := range nodes {
		if node < 0 || node >= g.N {
			return nil, &GraphError{Op: "Induced", Index: i, Cause: ErrNodeOutOfRange,
				Context: fmt.Sprintf("node %d", node)}
		}
		if _, dup := local[node]; dup {
			return nil, &GraphError{Op: "Induced", Index: i, Cause: ErrDuplicateNode,
				Context: fmt.Sprintf("node %d", node)}
		}
		local[node] = i
	}

	edges := make([]Edge, 0)
	for _, e := range g.Edges {
		from, okFrom := local[e.From]
		to, okTo := local[e.To]
		if okFrom && okTo {
			edges = append(edges, Edge{From: from, To: to, Weight: e.Weight})
		}
	}

	return &Graph{
		N:        len(nodes),
		Directed: g.Directed,
		Weighted: g.Weighted,
		Edges:    edges,
	}, nil
}
