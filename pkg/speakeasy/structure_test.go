package speakeasy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dd0wney/cluso-speakeasy2/pkg/partition"
)

func TestStructured(t *testing.T) {
	g := twoCliques(t, 6)
	cliques := partition.Membership{0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1}
	whole := make(partition.Membership, 12)
	halves := partition.Membership{0, 0, 0, 1, 1, 1, 0, 0, 0, 1, 1, 1}

	runs := [][]partition.Membership{{whole, cliques}, {cliques}}
	flat := []nullSample{{g: g, partitions: []partition.Membership{whole}}}

	tests := []struct {
		name string
		runs [][]partition.Membership
		null []nullSample
		want bool
	}{
		{"clear gain over null", runs, flat, true},
		{"no null runs", runs, nil, true},
		{"null as good as observed", runs, []nullSample{{g: g, partitions: []partition.Membership{cliques}}}, false},
		{"single community", [][]partition.Membership{{whole}}, flat, false},
		{"negative modularity", [][]partition.Membership{{halves}}, flat, false},
		{"no runs", nil, flat, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, structured(g, tt.runs, tt.null))
		})
	}
}

func TestBestModularity(t *testing.T) {
	g := twoCliques(t, 4)
	cliques := partition.Membership{0, 0, 0, 0, 1, 1, 1, 1}
	whole := make(partition.Membership, 8)

	assert.Zero(t, bestModularity(g, nil))
	assert.InDelta(t, 0.5, bestModularity(g, []partition.Membership{whole, cliques}), 1e-9)
	assert.InDelta(t, 0, bestModularity(g, []partition.Membership{whole}), 1e-9)
}
