package speakeasy

import (
	"fmt"
	"math"
	"time"

	"github.com/dd0wney/cluso-speakeasy2/pkg/parallel"
	"github.com/dd0wney/cluso-speakeasy2/pkg/validation"
)

// Defaults applied by Options.Resolve
const (
	DefaultDiscardTransient = 3
	DefaultIndependentRuns  = 10
	DefaultTargetPartitions = 5
	DefaultSubcluster       = 1
	DefaultMinCluster       = 5

	// MaxSweepsPerCandidate bounds the sweeps spent waiting for one candidate
	// partition to stabilize.
	MaxSweepsPerCandidate = 50

	// maxCount keeps resolved counts well inside int range
	maxCount = math.MaxInt32
)

// Options configures a clustering call. Every field is optional: a nil
// pointer selects the default. For IndependentRuns, TargetPartitions,
// Subcluster and TargetClusters an explicit zero also selects the default.
type Options struct {
	DiscardTransient *uint
	IndependentRuns  *uint
	MaxThreads       *uint
	Seed             *uint64
	TargetClusters   *uint
	TargetPartitions *uint
	Subcluster       *uint
	MinCluster       *uint
	Verbose          bool
}

// Ptr returns a pointer to v, for filling Options literals.
func Ptr[T any](v T) *T {
	return &v
}

// DefaultOptions returns options with every field unset
func DefaultOptions() Options {
	return Options{}
}

// Settings are fully resolved options. TargetClusters of zero means the
// initial label count is chosen per (sub)graph by DefaultTargetClusters.
type Settings struct {
	DiscardTransient int `validate:"gte=0"`
	IndependentRuns  int `validate:"gte=1"`
	MaxThreads       int `validate:"gte=1,lte=4096"`
	Seed             uint64
	SeedGenerated    bool
	TargetClusters   int `validate:"gte=0"`
	TargetPartitions int `validate:"gte=1"`
	Subcluster       int `validate:"gte=1"`
	MinCluster       int `validate:"gte=0"`
	Verbose          bool
}

// DefaultTargetClusters is the initial label count for a graph of n nodes
func DefaultTargetClusters(n int) int {
	if n < 10 {
		return n
	}
	if n/100 > 10 {
		return n / 100
	}
	return 10
}

// Resolve normalizes the options for a graph of the given node count. It is
// the only place defaults are applied.
func (o Options) Resolve(nodes int) (Settings, error) {
	s := Settings{Verbose: o.Verbose}

	var err error
	if s.DiscardTransient, err = explicitOr("DiscardTransient", o.DiscardTransient, DefaultDiscardTransient, false); err != nil {
		return Settings{}, err
	}
	if s.IndependentRuns, err = explicitOr("IndependentRuns", o.IndependentRuns, DefaultIndependentRuns, true); err != nil {
		return Settings{}, err
	}
	if s.MaxThreads, err = explicitOr("MaxThreads", o.MaxThreads, parallel.DefaultWorkers(), true); err != nil {
		return Settings{}, err
	}
	if s.TargetClusters, err = explicitOr("TargetClusters", o.TargetClusters, 0, true); err != nil {
		return Settings{}, err
	}
	if s.TargetPartitions, err = explicitOr("TargetPartitions", o.TargetPartitions, DefaultTargetPartitions, true); err != nil {
		return Settings{}, err
	}
	if s.Subcluster, err = explicitOr("Subcluster", o.Subcluster, DefaultSubcluster, true); err != nil {
		return Settings{}, err
	}
	if s.MinCluster, err = explicitOr("MinCluster", o.MinCluster, DefaultMinCluster, false); err != nil {
		return Settings{}, err
	}

	if o.Seed != nil {
		s.Seed = *o.Seed
	} else {
		s.Seed = uint64(time.Now().UnixNano())
		s.SeedGenerated = true
	}

	if s.TargetClusters > nodes {
		return Settings{}, optionsError("TargetClusters",
			fmt.Errorf("%w: %d target clusters for %d nodes", ErrTooManyTargetClusters, s.TargetClusters, nodes))
	}

	if err := validation.Struct(&s); err != nil {
		return Settings{}, optionsError("Settings", fmt.Errorf("%w: %v", ErrInvalidOptions, err))
	}
	return s, nil
}

// explicitOr returns *p, or def when p is nil (or zero and zeroIsDefault).
func explicitOr(field string, p *uint, def int, zeroIsDefault bool) (int, error) {
	if p == nil || (zeroIsDefault && *p == 0) {
		return def, nil
	}
	if *p > maxCount {
		return 0, optionsError(field, fmt.Errorf("%w: %d is too large", ErrInvalidOptions, *p))
	}
	return int(*p), nil
}

// targetClustersFor returns the initial label count for a (sub)graph of n nodes
func (s Settings) targetClustersFor(n int) int {
	if s.TargetClusters == 0 {
		return DefaultTargetClusters(n)
	}
	if s.TargetClusters > n {
		return n
	}
	return s.TargetClusters
}

// engineConfig derives the per-run engine parameters for a graph of n nodes
func (s Settings) engineConfig(n int) engineConfig {
	return engineConfig{
		targetClusters:   s.targetClustersFor(n),
		discardTransient: s.DiscardTransient,
		targetPartitions: s.TargetPartitions,
		maxSweeps:        MaxSweepsPerCandidate,
	}
}
