package partition

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrLengthMismatch = errors.New("membership length mismatch")
	ErrNegativeLabel  = errors.New("community labels must be non-negative")
	ErrEmptyHierarchy = errors.New("hierarchy has no levels")
)

// Membership assigns every node (by index) a community label.
type Membership []int

// Hierarchy is an ordered sequence of memberships, coarsest level first.
type Hierarchy []Membership

// Clone returns a copy of the membership
func (m Membership) Clone() Membership {
	out := make(Membership, len(m))
	copy(out, m)
	return out
}

// Validate checks that m covers exactly n nodes with non-negative labels.
func (m Membership) Validate(n int) error {
	if len(m) != n {
		return fmt.Errorf("%w: got %d labels for %d nodes", ErrLengthMismatch, len(m), n)
	}
	for i, l := range m {
		if l < 0 {
			return fmt.Errorf("%w: node %d has label %d", ErrNegativeLabel, i, l)
		}
	}
	return nil
}

// Count returns the number of distinct communities
func (m Membership) Count() int {
	return len(m.Sizes())
}

// Sizes returns community label -> number of member nodes
func (m Membership) Sizes() map[int]int {
	sizes := make(map[int]int)
	for _, l := range m {
		sizes[l]++
	}
	return sizes
}

// MaxLabel returns the largest label, or -1 for an empty membership.
func (m Membership) MaxLabel() int {
	max := -1
	for _, l := range m {
		if l > max {
			max = l
		}
	}
	return max
}

// Communities groups nodes by label. Labels are returned in ascending order
// and members of each community in ascending node order.
func (m Membership) Communities() (labels []int, members [][]int) {
	byLabel := make(map[int][]int)
	for node, l := range m {
		byLabel[l] = append(byLabel[l], node)
	}

	labels = make([]int, 0, len(byLabel))
	for l := range byLabel {
		labels = append(labels, l)
	}
	sort.Ints(labels)

	members = make([][]int, len(labels))
	for i, l := range labels {
		members[i] = byLabel[l]
	}
	return labels, members
}

// Normalize relabels communities densely (0..k-1) in order of first appearance.
func (m Membership) Normalize() Membership {
	out := make(Membership, len(m))
	seen := make(map[int]int)
	for i, l := range m {
		id, ok := seen[l]
		if !ok {
			id = len(seen)
			seen[l] = id
		}
		out[i] = id
	}
	return out
}

// Equal reports whether both memberships assign identical labels.
func (m Membership) Equal(other Membership) bool {
	if len(m) != len(other) {
		return false
	}
	for i := range m {
		if m[i] != other[i] {
			return false
		}
	}
	return true
}

// SameGrouping reports whether both memberships induce the same partition,
// ignoring the label values themselves.
func (m Membership) SameGrouping(other Membership) bool {
	if len(m) != len(other) {
		return false
	}
	return m.Normalize().Equal(other.Normalize())
}

// Validate checks every level of the hierarchy against n nodes.
func (h Hierarchy) Validate(n int) error {
	if len(h) == 0 {
		return ErrEmptyHierarchy
	}
	for lvl, m := range h {
		if err := m.Validate(n); err != nil {
			return fmt.Errorf("level %d: %w", lvl, err)
		}
	}
	return nil
}

// Top returns the coarsest level
func (h Hierarchy) Top() Membership {
	if len(h) == 0 {
		return nil
	}
	return h[0]
}

// Ints converts the hierarchy to plain nested slices.
func (h Hierarchy) Ints() [][]int {
	out := make([][]int, len(h))
	for i, m := range h {
		out[i] = []int(m.Clone())
	}
	return out
}
