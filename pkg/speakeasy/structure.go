package speakeasy

import (
	"github.com/dd0wney/cluso-speakeasy2/pkg/graph"
	"github.com/dd0wney/cluso-speakeasy2/pkg/partition"
)

const (
	// NullRuns is the number of runs made on rewired copies of every
	// (sub)graph to learn how much modularity label propagation finds in a
	// graph without communities.
	NullRuns = 3

	// StructureMargin is the factor by which the modularity reached on a
	// graph must exceed the modularity reached on its rewired copies for the
	// consensus to be kept. Below it the graph falls back to its connected
	// components.
	StructureMargin = 1.5

	// StructureMinGain is the least absolute modularity the graph must gain
	// over its rewired copies, whatever the ratio.
	StructureMinGain = 0.05

	// nullStream separates the seeds of null runs from those of real runs.
	nullStream = ^uint64(0)
)

// nullSample is a rewired copy of a graph and the partitions one run
// harvested on it.
type nullSample struct {
	g          *graph.Graph
	partitions []partition.Membership
}

// structured reports whether the runs found clearly more community structure
// in g than the same engine finds in degree-preserving random copies of it.
// Graphs without links never have structure.
func structured(g *graph.Graph, runs [][]partition.Membership, null []nullSample) bool {
	observed := 0.0
	for _, partitions := range runs {
		observed += bestModularity(g, partitions)
	}
	if len(runs) > 0 {
		observed /= float64(len(runs))
	}
	if observed <= 0 {
		return false
	}

	expected := 0.0
	for _, s := range null {
		expected += bestModularity(s.g, s.partitions)
	}
	if len(null) > 0 {
		expected /= float64(len(null))
	}
	expected = max(expected, 0)
	return observed > StructureMargin*expected && observed-expected > StructureMinGain
}

// bestModularity returns the highest modularity among partitions, or 0 when
// there are none.
func bestModularity(g *graph.Graph, partitions []partition.Membership) float64 {
	best := 0.0
	for i, m := range partitions {
		if q := partition.Modularity(g, m); i == 0 || q > best {
			best = q
		}
	}
	return best
}
