package graph

import (
	"fmt"
	"sort"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// FromGonum converts a gonum graph. Node IDs are renumbered in ascending ID
// order; the returned slice maps node index -> gonum ID. Graphs implementing
// graph.Weighted keep their edge weights.
func FromGonum(g gonum.Graph) (*Graph, []int64, error) {
	if g == nil {
		return nil, nil, ErrNilInput
	}

	ids := make([]int64, 0)
	nodes := g.Nodes()
	for nodes.Next() {
		ids = append(ids, nodes.Node().ID())
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	index := make(map[int64]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	_, directed := g.(gonum.Directed)
	weighter, weighted := g.(gonum.Weighted)

	edges := make([]Edge, 0)
	for _, uid := range ids {
		to := g.From(uid)
		targets := make([]int64, 0, to.Len())
		for to.Next() {
			targets = append(targets, to.Node().ID())
		}
		sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })

		for _, vid := range targets {
			if !directed && vid < uid {
				// Undirected edges are visited from both ends
				continue
			}
			e := Edge{From: index[uid], To: index[vid], Weight: 1}
			if weighted {
				w, ok := weighter.Weight(uid, vid)
				if !ok {
					return nil, nil, fmt.Errorf("%w: missing weight for edge %d-%d", ErrInvalidGraph, uid, vid)
				}
				e.Weight = w
			}
			edges = append(edges, e)
		}
	}

	out, err := New(len(ids), directed, edges, weighted)
	if err != nil {
		return nil, nil, err
	}
	return out, ids, nil
}

// ToGonum converts the graph into a gonum simple weighted graph with node IDs
// equal to node indices. Self loops are dropped and parallel edges merged.
func (g *Graph) ToGonum() gonum.Weighted {
	type key struct{ from, to int }
	merged := make(map[key]float64)
	order := make([]key, 0, len(g.Edges))
	for _, e := range g.Edges {
		if e.From == e.To {
			continue
		}
		k := key{e.From, e.To}
		if !g.Directed && k.from > k.to {
			k = key{e.To, e.From}
		}
		if _, ok := merged[k]; !ok {
			order = append(order, k)
		}
		merged[k] += e.Weight
	}

	if g.Directed {
		out := simple.NewWeightedDirectedGraph(0, 0)
		for i := 0; i < g.N; i++ {
			out.AddNode(simple.Node(i))
		}
		for _, k := range order {
			out.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(k.from), T: simple.Node(k.to), W: merged[k]})
		}
		return out
	}

	out := simple.NewWeightedUndirectedGraph(0, 0)
	for i := 0; i < g.N; i++ {
		out.AddNode(simple.Node(i))
	}
	for _, k := range order {
		out.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(k.from), T: simple.Node(k.to), W: merged[k]})
	}
	return out
}
