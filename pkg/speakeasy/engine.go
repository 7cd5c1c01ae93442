package speakeasy

import (
	"math"

	"golang.org/x/exp/rand"

	"github.com/dd0wney/cluso-speakeasy2/pkg/graph"
	"github.com/dd0wney/cluso-speakeasy2/pkg/partition"
)

// burstMinSize is the smallest community that is seeded with a fresh label
// after each candidate partition.
const burstMinSize = 4

type engineConfig struct {
	targetClusters   int
	discardTransient int
	targetPartitions int
	maxSweeps        int // sweeps allowed per candidate
}

// runResult is the outcome of one independent run
type runResult struct {
	partitions []partition.Membership // harvested candidates, oldest first
	sweeps     int
	candidates int
	forced     int // candidates recorded at the sweep limit
}

// engine holds the private state of one label propagation run. The graph is
// shared read-only between engines.
type engine struct {
	g      *graph.Graph
	adj    [][]graph.Neighbor
	degree []float64
	total  float64
	rng    *rand.Rand

	labels      []int
	labelDegree []float64 // summed degree of the nodes holding each label

	// scratch space for a single node update
	scores  []float64
	seen    []bool
	touched []int
}

func newEngine(g *graph.Graph, rng *rand.Rand) *engine {
	e := &engine{
		g:      g,
		adj:    g.Adjacency(),
		degree: make([]float64, g.N),
		total:  g.TotalDegree(),
		rng:    rng,
		labels: make([]int, g.N),
	}
	for i := range e.degree {
		e.degree[i] = g.WeightedDegree(i)
	}
	return e
}

// run performs sweeps until discardTransient+targetPartitions candidates have
// been observed and returns the last targetPartitions of them. Every
// candidate costs at most cfg.maxSweeps sweeps, so the run always terminates.
func (e *engine) run(cfg engineConfig) runResult {
	n := e.g.N
	var res runResult
	if n == 0 {
		return res
	}

	e.initLabels(cfg.targetClusters)

	needed := cfg.discardTransient + cfg.targetPartitions
	limit := needed * cfg.maxSweeps
	threshold := n / 1000
	sinceCandidate := 0

	for res.sweeps < limit && res.candidates < needed {
		changed := e.sweep()
		res.sweeps++
		sinceCandidate++

		stable := changed <= threshold
		if !stable && sinceCandidate < cfg.maxSweeps {
			continue
		}

		if !stable {
			res.forced++
		}
		res.candidates++
		sinceCandidate = 0

		if res.candidates > cfg.discardTransient {
			res.partitions = append(res.partitions, e.snapshot())
		}
		if res.candidates < needed {
			e.burst()
		}
	}

	if len(res.partitions) == 0 {
		res.partitions = append(res.partitions, e.snapshot())
	}
	return res
}

// initLabels assigns one of k labels uniformly at random to every node.
func (e *engine) initLabels(k int) {
	if k < 1 {
		k = 1
	}
	e.labelDegree = make([]float64, k)
	e.scores = make([]float64, k)
	e.seen = make([]bool, k)
	for i := range e.labels {
		l := e.rng.Intn(k)
		e.labels[i] = l
		e.labelDegree[l] += e.degree[i]
	}
}

// sweep updates every node once in random order and returns how many nodes
// changed label.
func (e *engine) sweep() int {
	changed := 0
	for _, i := range e.rng.Perm(e.g.N) {
		if e.update(i) {
			changed++
		}
	}
	return changed
}

// update moves node i to the label whose neighbor support most exceeds what
// the label's total degree predicts (the node's own degree excluded).
// A node keeps its label when that label is among the best; otherwise the
// lowest best label wins.
func (e *engine) update(i int) bool {
	nbrs := e.adj[i]
	if len(nbrs) == 0 {
		return false
	}

	own := e.labels[i]
	e.touch(own)
	for _, nb := range nbrs {
		l := e.labels[nb.Node]
		e.touch(l)
		e.scores[l] += nb.Weight
	}

	d := e.degree[i]
	best := math.Inf(-1)
	for _, l := range e.touched {
		background := e.labelDegree[l]
		if l == own {
			background -= d
		}
		e.scores[l] -= d * background / e.total
		if e.scores[l] > best {
			best = e.scores[l]
		}
	}

	tolerance := 1e-12 * (1 + math.Abs(best))
	choice := -1
	for _, l := range e.touched {
		if best-e.scores[l] > tolerance {
			continue
		}
		if l == own {
			choice = own
			break
		}
		if choice == -1 || l < choice {
			choice = l
		}
	}

	for _, l := range e.touched {
		e.scores[l] = 0
		e.seen[l] = false
	}
	e.touched = e.touched[:0]

	if choice == own {
		return false
	}
	e.labelDegree[own] -= d
	e.labelDegree[choice] += d
	e.labels[i] = choice
	return true
}

func (e *engine) touch(l int) {
	if !e.seen[l] {
		e.seen[l] = true
		e.touched = append(e.touched, l)
	}
}

// burst gives a random seed node of every community with at least
// burstMinSize members, together with its same-label neighbors, a fresh
// label. Communities that wrongly merged can then split apart again.
func (e *engine) burst() {
	e.compact()

	k := len(e.labelDegree)
	members := make([][]int, k)
	for i, l := range e.labels {
		members[l] = append(members[l], i)
	}

	for l, nodes := range members {
		if len(nodes) < burstMinSize {
			continue
		}
		seed := nodes[e.rng.Intn(len(nodes))]
		fresh := e.newLabel()

		e.relabel(seed, fresh)
		for _, nb := range e.adj[seed] {
			if e.labels[nb.Node] == l {
				e.relabel(nb.Node, fresh)
			}
		}
	}
}

func (e *engine) newLabel() int {
	e.labelDegree = append(e.labelDegree, 0)
	e.scores = append(e.scores, 0)
	e.seen = append(e.seen, false)
	return len(e.labelDegree) - 1
}

func (e *engine) relabel(i, l int) {
	e.labelDegree[e.labels[i]] -= e.degree[i]
	e.labelDegree[l] += e.degree[i]
	e.labels[i] = l
}

// compact renumbers labels densely by first appearance and drops unused ones.
func (e *engine) compact() {
	dense := partition.Membership(e.labels).Normalize()
	copy(e.labels, dense)

	k := dense.MaxLabel() + 1
	e.labelDegree = make([]float64, k)
	e.scores = make([]float64, k)
	e.seen = make([]bool, k)
	for i, l := range e.labels {
		e.labelDegree[l] += e.degree[i]
	}
}

func (e *engine) snapshot() partition.Membership {
	return partition.Membership(e.labels).Normalize()
}
