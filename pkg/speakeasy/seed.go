package speakeasy

import "golang.org/x/exp/rand"

// splitmix64 is the finalizer of the SplitMix64 generator.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// DeriveSeed mixes a root seed with a path of indices (hierarchy level,
// community label, run index). The result depends only on its inputs, so a
// run's random stream is independent of when or where it is scheduled.
func DeriveSeed(root uint64, path ...uint64) uint64 {
	h := splitmix64(root)
	for _, p := range path {
		h = splitmix64(h ^ splitmix64(p))
	}
	return h
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
