package speakeasy

import (
	"github.com/dd0wney/cluso-speakeasy2/pkg/graph"
	"github.com/dd0wney/cluso-speakeasy2/pkg/partition"
)

// Consensus combines an ensemble of partitions of g into one. Two linked
// nodes agree when they share a label in a partition; links on which a
// strict majority of the ensemble agrees are kept, and the connected
// components of the kept links become the communities. Communities are
// numbered in order of their lowest node index. Nodes without any kept link
// end up alone.
func Consensus(g *graph.Graph, ensemble []partition.Membership) (partition.Membership, error) {
	for _, m := range ensemble {
		if err := m.Validate(g.N); err != nil {
			return nil, &Error{Op: "Consensus", Level: -1, Cause: err}
		}
	}
	return consensus(g, ensemble), nil
}

func consensus(g *graph.Graph, ensemble []partition.Membership) partition.Membership {
	uf := newUnionFind(g.N)
	total := len(ensemble)

	if total > 0 {
		for i, nbrs := range g.Adjacency() {
			for _, nb := range nbrs {
				j := nb.Node
				if j <= i {
					continue
				}
				agree := 0
				for _, m := range ensemble {
					if m[i] == m[j] {
						agree++
					}
				}
				if 2*agree > total {
					uf.union(i, j)
				}
			}
		}
	}

	return uf.membership()
}

// linkComponents returns the connected components of g, numbered in order of
// their lowest node index.
func linkComponents(g *graph.Graph) partition.Membership {
	uf := newUnionFind(g.N)
	for i, nbrs := range g.Adjacency() {
		for _, nb := range nbrs {
			uf.union(i, nb.Node)
		}
	}
	return uf.membership()
}

// unionFind is a disjoint-set forest with path halving and union by size.
type unionFind struct {
	parent []int
	size   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), size: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.size[ra] < uf.size[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	uf.size[ra] += uf.size[rb]
}

// membership numbers the sets in order of their lowest element.
func (uf *unionFind) membership() partition.Membership {
	out := make(partition.Membership, len(uf.parent))
	ids := make(map[int]int)
	for i := range out {
		root := uf.find(i)
		id, ok := ids[root]
		if !ok {
			id = len(ids)
			ids[root] = id
		}
		out[i] = id
	}
	return out
}

// flatten concatenates the harvested partitions of every run in run order.
func flatten(runs [][]partition.Membership) []partition.Membership {
	count := 0
	for _, r := range runs {
		count += len(r)
	}
	out := make([]partition.Membership, 0, count)
	for _, r := range runs {
		out = append(out, r...)
	}
	return out
}
