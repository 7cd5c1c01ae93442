package ioformat

import (
	"errors"
	"fmt"
)

var (
	ErrParse       = errors.New("parse error")
	ErrEmpty       = errors.New("no records")
	ErrColumnCount = errors.New("unexpected number of columns")
)

// LineError locates a parse failure in the input
type LineError struct {
	Line  int // 1-based record number, 0 if unknown
	Cause error
}

func (e *LineError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %v", e.Line, e.Cause)
	}
	return e.Cause.Error()
}

func (e *LineError) Unwrap() error {
	return e.Cause
}

func lineError(line int, format string, args ...any) error {
	return &LineError{Line: line, Cause: fmt.Errorf("%w: "+format, append([]any{ErrParse}, args...)...)}
}
