package partition

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-speakeasy2/pkg/graph"
)

func TestMembershipValidate(t *testing.T) {
	tests := []struct {
		name string
		m    Membership
		n    int
		want error
	}{
		{"valid", Membership{0, 1, 1}, 3, nil},
		{"too short", Membership{0, 1}, 3, ErrLengthMismatch},
		{"negative label", Membership{0, -1, 1}, 3, ErrNegativeLabel},
		{"empty", Membership{}, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate(tt.n)
			if tt.want == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMembershipCommunities(t *testing.T) {
	m := Membership{4, 2, 4, 9, 2}

	labels, members := m.Communities()
	assert.Equal(t, []int{2, 4, 9}, labels)
	assert.Equal(t, [][]int{{1, 4}, {0, 2}, {3}}, members)

	assert.Equal(t, 3, m.Count())
	assert.Equal(t, map[int]int{2: 2, 4: 2, 9: 1}, m.Sizes())
	assert.Equal(t, 9, m.MaxLabel())
	assert.Equal(t, -1, Membership{}.MaxLabel())
}

func TestMembershipNormalize(t *testing.T) {
	m := Membership{7, 7, 3, 9, 3}
	assert.Equal(t, Membership{0, 0, 1, 2, 1}, m.Normalize())
	assert.True(t, m.SameGrouping(Membership{1, 1, 0, 5, 0}))
	assert.False(t, m.SameGrouping(Membership{1, 1, 0, 0, 0}))
	assert.False(t, m.Equal(m.Normalize()))
}

func TestMembershipClone(t *testing.T) {
	m := Membership{1, 2}
	c := m.Clone()
	c[0] = 5
	assert.Equal(t, 1, m[0])
}

func TestHierarchy(t *testing.T) {
	h := Hierarchy{{0, 0, 1}, {0, 2, 1}}
	require.NoError(t, h.Validate(3))
	assert.Equal(t, Membership{0, 0, 1}, h.Top())
	assert.Equal(t, [][]int{{0, 0, 1}, {0, 2, 1}}, h.Ints())

	assert.True(t, errors.Is(Hierarchy{}.Validate(3), ErrEmptyHierarchy))
	assert.True(t, errors.Is(Hierarchy{{0, 0, 1}, {0}}.Validate(3), ErrLengthMismatch))
	assert.Nil(t, Hierarchy{}.Top())
}

func TestNMI(t *testing.T) {
	tests := []struct {
		name string
		a, b Membership
		want float64
	}{
		{"identical", Membership{0, 0, 1, 1}, Membership{0, 0, 1, 1}, 1},
		{"relabelled", Membership{0, 0, 1, 1}, Membership{5, 5, 2, 2}, 1},
		{"independent", Membership{0, 0, 1, 1}, Membership{0, 1, 0, 1}, 0},
		{"single communities", Membership{3, 3, 3}, Membership{0, 0, 0}, 1},
		{"empty", Membership{}, Membership{}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NMI(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}

	_, err := NMI(Membership{0}, Membership{0, 1})
	assert.True(t, errors.Is(err, ErrLengthMismatch))
}

func TestNMIPartialAgreement(t *testing.T) {
	got, err := NMI(Membership{0, 0, 0, 1, 1, 1}, Membership{0, 0, 1, 1, 1, 1})
	require.NoError(t, err)
	assert.Greater(t, got, 0.0)
	assert.Less(t, got, 1.0)
}

func twoTriangles(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.New(6, false, []graph.Edge{
		{From: 0, To: 1}, {From: 1, To: 2}, {From: 0, To: 2},
		{From: 3, To: 4}, {From: 4, To: 5}, {From: 3, To: 5},
		{From: 2, To: 3},
	}, false)
	require.NoError(t, err)
	return g
}

func TestModularity(t *testing.T) {
	g := twoTriangles(t)

	// 2m = 14; each side holds 3 internal edges and total degree 7
	want := 2 * (6.0/14 - math.Pow(7.0/14, 2))
	assert.InDelta(t, want, Modularity(g, Membership{0, 0, 0, 1, 1, 1}), 1e-12)
	assert.InDelta(t, 0.0, Modularity(g, Membership{0, 0, 0, 0, 0, 0}), 1e-12)

	empty, err := graph.New(3, false, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 0.0, Modularity(empty, Membership{0, 1, 2}))
}

func TestComputeMetrics(t *testing.T) {
	g := twoTriangles(t)

	m, err := ComputeMetrics(g, Membership{0, 0, 0, 1, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, 3, m.Communities)
	assert.Equal(t, []int{3, 2, 1}, m.Sizes)
	assert.Equal(t, 1, m.Singletons)
	assert.Equal(t, 3, m.CutEdges)
	assert.InDelta(t, 3.0/7, m.CutRatio, 1e-12)

	_, err = ComputeMetrics(g, Membership{0})
	assert.True(t, errors.Is(err, ErrLengthMismatch))
}
