package partition

import (
	"sort"

	"github.com/dd0wney/cluso-speakeasy2/pkg/graph"
)

// Metrics summarizes the quality of a membership on a graph
type Metrics struct {
	Communities int     // Number of communities
	Sizes       []int   // Community sizes, descending
	Singletons  int     // Communities with a single node
	CutEdges    int     // Edges crossing communities
	CutRatio    float64 // Fraction of edges that are cuts
	Modularity  float64 // Newman modularity on the symmetrized graph
}

// ComputeMetrics analyzes a membership against the graph it partitions.
func ComputeMetrics(g *graph.Graph, m Membership) (*Metrics, error) {
	if err := m.Validate(g.N); err != nil {
		return nil, err
	}

	_, members := m.Communities()
	sizes := make([]int, len(members))
	singletons := 0
	for i, nodes := range members {
		sizes[i] = len(nodes)
		if len(nodes) == 1 {
			singletons++
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sizes)))

	cuts := 0
	for _, e := range g.Edges {
		if m[e.From] != m[e.To] {
			cuts++
		}
	}
	cutRatio := 0.0
	if len(g.Edges) > 0 {
		cutRatio = float64(cuts) / float64(len(g.Edges))
	}

	return &Metrics{
		Communities: len(members),
		Sizes:       sizes,
		Singletons:  singletons,
		CutEdges:    cuts,
		CutRatio:    cutRatio,
		Modularity:  Modularity(g, m),
	}, nil
}

// Modularity computes Q = 1/2m * sum_ij [A_ij - k_i k_j / 2m] delta(c_i, c_j)
// over the symmetrized neighbor lists. Returns 0 for graphs without links.
func Modularity(g *graph.Graph, m Membership) float64 {
	total := g.TotalDegree()
	if total == 0 {
		return 0
	}

	internal := make(map[int]float64)
	degree := make(map[int]float64)
	for i := 0; i < g.N; i++ {
		degree[m[i]] += g.WeightedDegree(i)
		for _, nb := range g.Neighbors(i) {
			if m[nb.Node] == m[i] {
				internal[m[i]] += nb.Weight
			}
		}
	}

	q := 0.0
	for label, d := range degree {
		q += internal[label]/total - (d/total)*(d/total)
	}
	return q
}
