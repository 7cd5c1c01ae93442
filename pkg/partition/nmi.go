package partition

import (
	"fmt"
	"math"
)

// NMI computes the normalized mutual information between two memberships,
// normalized by the arithmetic mean of their entropies. Two single-community
// memberships are considered identical (NMI 1).
func NMI(a, b Membership) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(a), len(b))
	}
	n := len(a)
	if n == 0 {
		return 1, nil
	}

	type pair struct{ x, y int }
	joint := make(map[pair]int)
	countA := make(map[int]int)
	countB := make(map[int]int)
	for i := 0; i < n; i++ {
		joint[pair{a[i], b[i]}]++
		countA[a[i]]++
		countB[b[i]]++
	}

	total := float64(n)
	mi := 0.0
	for p, c := range joint {
		pxy := float64(c) / total
		px := float64(countA[p.x]) / total
		py := float64(countB[p.y]) / total
		mi += pxy * math.Log(pxy/(px*py))
	}

	ha := entropy(countA, total)
	hb := entropy(countB, total)
	mean := (ha + hb) / 2
	if mean == 0 {
		// Both memberships are a single community
		return 1, nil
	}

	nmi := mi / mean
	// Guard rounding drift
	if nmi > 1 {
		nmi = 1
	}
	if nmi < 0 {
		nmi = 0
	}
	return nmi, nil
}

func entropy(counts map[int]int, total float64) float64 {
	h := 0.0
	for _, c := range counts {
		p := float64(c) / total
		h -= p * math.Log(p)
	}
	return h
}
