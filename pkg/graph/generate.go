package graph

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// PlantedOptions configures the planted-partition generator.
type PlantedOptions struct {
	Nodes    int
	Groups   int
	PIn      float64 // Edge probability inside a group
	POut     float64 // Edge probability between groups
	Weighted bool    // Draw weights uniformly from [0.5, 1.5)
	Seed     uint64
}

// PlantedPartition generates an undirected graph where node i belongs to
// group i*Groups/Nodes and every pair is linked with probability PIn inside
// a group and POut across groups. It returns the graph and the ground truth.
func PlantedPartition(opts PlantedOptions) (*Graph, []int, error) {
	if opts.Nodes <= 0 || opts.Groups <= 0 || opts.Groups > opts.Nodes {
		return nil, nil, fmt.Errorf("%w: %d nodes in %d groups", ErrInvalidGraph, opts.Nodes, opts.Groups)
	}
	if opts.PIn < 0 || opts.PIn > 1 || opts.POut < 0 || opts.POut > 1 {
		return nil, nil, fmt.Errorf("%w: probabilities must be within [0, 1]", ErrInvalidGraph)
	}

	rng := rand.New(rand.NewSource(opts.Seed))

	truth := make([]int, opts.Nodes)
	for i := range truth {
		truth[i] = i * opts.Groups / opts.Nodes
	}

	edges := make([]Edge, 0)
	for i := 0; i < opts.Nodes; i++ {
		for j := i + 1; j < opts.Nodes; j++ {
			p := opts.POut
			if truth[i] == truth[j] {
				p = opts.PIn
			}
			if rng.Float64() >= p {
				continue
			}
			e := Edge{From: i, To: j, Weight: 1}
			if opts.Weighted {
				e.Weight = 0.5 + rng.Float64()
			}
			edges = append(edges, e)
		}
	}

	g, err := New(opts.Nodes, false, edges, opts.Weighted)
	if err != nil {
		return nil, nil, err
	}
	return g, truth, nil
}

// Complete returns the undirected complete graph on n nodes.
func Complete(n int) *Graph {
	edges := make([]Edge, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			edges = append(edges, Edge{From: i, To: j, Weight: 1})
		}
	}
	return &Graph{N: n, Edges: edges}
}

// AdjacencyRows renders the graph as dense adjacency rows. Edge (i, j) is
// written to row i only, so undirected graphs yield a triangular matrix.
func (g *Graph) AdjacencyRows() [][]float64 {
	rows := make([][]float64, g.N)
	for i := range rows {
		rows[i] = make([]float64, g.N)
	}
	for _, e := range g.Edges {
		rows[e.From][e.To] = e.Weight
	}
	return rows
}

// EdgeInput renders the graph back into an edge-list input, exposing its
// weights under the default attribute when weighted.
func (g *Graph) EdgeInput() EdgeInput {
	in := EdgeInput{N: g.N, Directed: g.Directed, Edges: make([][2]int, len(g.Edges))}
	for i, e := range g.Edges {
		in.Edges[i] = [2]int{e.From, e.To}
	}
	if g.Weighted {
		in.Attributes = map[string][]float64{DefaultWeightAttribute: g.Weights()}
	}
	return in
}

// Rewired returns a random undirected graph with approximately the degrees
// of g. Every end of every non-loop edge becomes a stub, stubs are paired
// uniformly at random and the edge weights are shuffled over the new pairs.
// Pairs that form a self loop are dropped; parallel pairs merge when the
// neighbor lists are built.
func (g *Graph) Rewired(seed uint64) *Graph {
	rng := rand.New(rand.NewSource(seed))

	stubs := make([]int, 0, 2*len(g.Edges))
	weights := make([]float64, 0, len(g.Edges))
	for _, e := range g.Edges {
		if e.From == e.To {
			continue
		}
		stubs = append(stubs, e.From, e.To)
		weights = append(weights, e.Weight)
	}
	rng.Shuffle(len(stubs), func(i, j int) { stubs[i], stubs[j] = stubs[j], stubs[i] })
	rng.Shuffle(len(weights), func(i, j int) { weights[i], weights[j] = weights[j], weights[i] })

	edges := make([]Edge, 0, len(weights))
	for i, w := range weights {
		from, to := stubs[2*i], stubs[2*i+1]
		if from == to {
			continue
		}
		edges = append(edges, Edge{From: from, To: to, Weight: w})
	}
	return &Graph{N: g.N, Weighted: g.Weighted, Edges: edges}
}
