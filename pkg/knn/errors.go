package knn

import (
	"errors"
	"fmt"
)

var (
	ErrKTooLarge = errors.New("k must be less than the number of columns")
	ErrNegativeK = errors.New("k must not be negative")
	ErrNonFinite = errors.New("point coordinates must be finite")
	ErrShape     = errors.New("points must be a non-empty 2-d matrix")
)

// BuildError describes a rejected k-NN request
type BuildError struct {
	K       int
	Points  int
	Cause   error
	Context string
}

func (e *BuildError) Error() string {
	msg := fmt.Sprintf("knn (k=%d, points=%d): %v", e.K, e.Points, e.Cause)
	if e.Context != "" {
		msg += " (" + e.Context + ")"
	}
	return msg
}

func (e *BuildError) Unwrap() error {
	return e.Cause
}
