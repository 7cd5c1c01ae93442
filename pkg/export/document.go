// Package export encodes clustering results and delivers them to files,
// writers or S3 buckets.
package export

import (
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-speakeasy2/pkg/partition"
	"github.com/dd0wney/cluso-speakeasy2/pkg/speakeasy"
)

// Document kinds
const (
	KindCluster = "cluster"
	KindOrder   = "order"
)

// Document is the serialized form of a result.
type Document struct {
	ID          string    `json:"id" yaml:"id"`
	Kind        string    `json:"kind" yaml:"kind"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	Nodes       int       `json:"nodes" yaml:"nodes"`
	Seed        *uint64   `json:"seed,omitempty" yaml:"seed,omitempty"`
	Communities []int     `json:"communities,omitempty" yaml:"communities,omitempty"` // per level
	Levels      [][]int   `json:"levels,omitempty" yaml:"levels,omitempty"`
	Orderings   [][]int   `json:"orderings,omitempty" yaml:"orderings,omitempty"`
	Stats       *Stats    `json:"stats,omitempty" yaml:"stats,omitempty"`
}

// Stats is the exported subset of speakeasy.Stats
type Stats struct {
	Runs             int     `json:"runs" yaml:"runs"`
	Sweeps           int     `json:"sweeps" yaml:"sweeps"`
	ForcedCandidates int     `json:"forced_candidates" yaml:"forced_candidates"`
	Split            int     `json:"split" yaml:"split"`
	Unstructured     int     `json:"unstructured" yaml:"unstructured"`
	Seconds          float64 `json:"seconds" yaml:"seconds"`
}

// FromResult builds a document from a clustering result
func FromResult(res *speakeasy.Result) *Document {
	seed := res.Seed
	doc := &Document{
		ID:        res.OperationID,
		Kind:      KindCluster,
		CreatedAt: time.Now().UTC(),
		Nodes:     len(res.Membership()),
		Seed:      &seed,
		Levels:    res.Levels.Ints(),
		Stats: &Stats{
			Runs:             res.Stats.Runs,
			Sweeps:           res.Stats.Sweeps,
			ForcedCandidates: res.Stats.ForcedCandidates,
			Split:            res.Stats.Split,
			Unstructured:     res.Stats.Unstructured,
			Seconds:          res.Stats.Duration.Seconds(),
		},
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	for _, m := range res.Levels {
		doc.Communities = append(doc.Communities, m.Count())
	}
	return doc
}

// FromOrderings builds a document from node orderings, optionally carrying
// the hierarchy they were computed from.
func FromOrderings(orders [][]int, h partition.Hierarchy) *Document {
	doc := &Document{
		ID:        uuid.NewString(),
		Kind:      KindOrder,
		CreatedAt: time.Now().UTC(),
		Orderings: orders,
	}
	if len(orders) > 0 {
		doc.Nodes = len(orders[0])
	}
	if len(h) > 0 {
		doc.Levels = h.Ints()
	}
	return doc
}

// Hierarchy returns the document levels as a hierarchy
func (d *Document) Hierarchy() partition.Hierarchy {
	h := make(partition.Hierarchy, len(d.Levels))
	for i, level := range d.Levels {
		h[i] = partition.Membership(level)
	}
	return h
}
