package speakeasy

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrTooManyTargetClusters = errors.New("number of target clusters must be less than or equal to the number of nodes")
	ErrInvalidOptions        = errors.New("invalid clustering options")
	ErrNilGraph              = errors.New("graph is nil")
	ErrRunFailed             = errors.New("independent run failed")
)

// Error provides structured information about a failed clustering step.
type Error struct {
	Op      string // Operation that failed (e.g., "Resolve", "Run", "Subcluster")
	Level   int    // Hierarchy level, -1 if not applicable
	Cause   error  // Underlying error
	Context string // Additional context
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Level >= 0 {
		if e.Context != "" {
			return fmt.Sprintf("%s level %d (%s): %v", e.Op, e.Level, e.Context, e.Cause)
		}
		return fmt.Sprintf("%s level %d: %v", e.Op, e.Level, e.Cause)
	}
	if e.Context != "" {
		return fmt.Sprintf("%s (%s): %v", e.Op, e.Context, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error or its cause.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

func optionsError(field string, cause error) error {
	return &Error{Op: "Resolve", Level: -1, Cause: cause, Context: field}
}
