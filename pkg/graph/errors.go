package graph

import (
	"errors"
	"fmt"
)

// Input validation errors
var (
	ErrInvalidGraph           = errors.New("invalid graph")
	ErrEdgeOutOfRange         = errors.New("edge endpoint out of range")
	ErrNodeOutOfRange         = errors.New("node index out of range")
	ErrDuplicateNode          = errors.New("duplicate node")
	ErrInvalidWeight          = errors.New("edge weights must be finite and positive")
	ErrWeightCount            = errors.New("number of weights does not match number of edges in graph")
	ErrUnknownWeightAttribute = errors.New("graph does not have edge attribute")
	ErrWeightsNotName         = errors.New("weights must be an attribute name for an adjacency matrix")
	ErrShape                  = errors.New("adjacency matrix must be a non-empty 2-d square matrix")
	ErrNonFinite              = errors.New("matrix entries must be finite")
	ErrNilInput               = errors.New("graph input is nil")
)

// GraphError describes which part of an input failed validation.
type GraphError struct {
	Op      string // Operation that failed (e.g., "New", "Resolve")
	Index   int    // Offending edge/node/row index, -1 if not applicable
	Cause   error  // Underlying sentinel
	Context string // Additional context
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	if e.Index >= 0 {
		if e.Context != "" {
			return fmt.Sprintf("%s: index %d %s: %v", e.Op, e.Index, e.Context, e.Cause)
		}
		return fmt.Sprintf("%s: index %d: %v", e.Op, e.Index, e.Cause)
	}
	if e.Context != "" {
		return fmt.Sprintf("%s (%s): %v", e.Op, e.Context, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *GraphError) Unwrap() error {
	return e.Cause
}
