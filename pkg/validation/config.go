package validation

import (
	"errors"
	"fmt"
	"slices"
)

// FieldError reports one invalid configuration field
type FieldError struct {
	Field  string // dotted key, e.g. "cluster.subcluster"
	Reason string
	Cause  error // optional underlying error
}

func (e *FieldError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Field, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Unwrap exposes both ErrInvalid and the cause
func (e *FieldError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrInvalid, e.Cause}
	}
	return []error{ErrInvalid}
}

// Checker collects every field error of a configuration instead of
// stopping at the first.
type Checker struct {
	errs []error
}

// NewChecker returns an empty checker
func NewChecker() *Checker {
	return &Checker{}
}

func (c *Checker) fail(field, reason string) *Checker {
	c.errs = append(c.errs, &FieldError{Field: field, Reason: reason})
	return c
}

// Require fails when value is empty
func (c *Checker) Require(field, value string) *Checker {
	if value == "" {
		return c.fail(field, "required")
	}
	return c
}

// Between fails when value is outside [lo, hi]
func (c *Checker) Between(field string, value, lo, hi int) *Checker {
	if value < lo || value > hi {
		return c.fail(field, fmt.Sprintf("%d is outside [%d, %d]", value, lo, hi))
	}
	return c
}

// OneOf fails when value is not among allowed
func (c *Checker) OneOf(field, value string, allowed ...string) *Checker {
	if !slices.Contains(allowed, value) {
		return c.fail(field, fmt.Sprintf("%q must be one of %v", value, allowed))
	}
	return c
}

// Check records err against field when it is non-nil
func (c *Checker) Check(field string, err error) *Checker {
	if err != nil {
		c.errs = append(c.errs, &FieldError{Field: field, Cause: err})
	}
	return c
}

// If runs fn only when cond holds
func (c *Checker) If(cond bool, fn func(*Checker)) *Checker {
	if cond {
		fn(c)
	}
	return c
}

// Errors returns the collected field errors in the order they were found
func (c *Checker) Errors() []error {
	return c.errs
}

// Err returns nil when every check passed, otherwise all errors joined
func (c *Checker) Err() error {
	return errors.Join(c.errs...)
}
