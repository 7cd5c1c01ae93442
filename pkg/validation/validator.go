package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// ErrInvalid wraps every struct-tag validation failure
	ErrInvalid = errors.New("invalid value")

	// Validation constants
	MaxThreads         = 4096
	MaxAttributeLength = 100

	// Regular expressions
	attributePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.-]*$`)
)

func init() {
	validate = validator.New()
}

// KNNRequest is the shape check for a k-nearest-neighbor graph build
type KNNRequest struct {
	Points     int `validate:"gt=0"`
	Dimensions int `validate:"gt=0"`
	K          int `validate:"gte=0,ltfield=Points"`
}

// Struct validates v against its `validate` struct tags.
func Struct(v any) error {
	if v == nil {
		return errors.New("value to validate cannot be nil")
	}
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateKNNRequest validates the dimensions of a k-NN request
func ValidateKNNRequest(req *KNNRequest) error {
	if req == nil {
		return errors.New("knn request cannot be nil")
	}
	return Struct(req)
}

// ValidateThreadCount validates a worker thread count
func ValidateThreadCount(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: thread count must be at least 1, got %d", ErrInvalid, n)
	}
	if n > MaxThreads {
		return fmt.Errorf("%w: thread count must not exceed %d, got %d", ErrInvalid, MaxThreads, n)
	}
	return nil
}

// ValidateAttributeName validates an edge attribute name used for weights
func ValidateAttributeName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: attribute name cannot be empty", ErrInvalid)
	}
	if len(name) > MaxAttributeLength {
		return fmt.Errorf("%w: attribute name '%s' exceeds maximum length of %d characters", ErrInvalid, name, MaxAttributeLength)
	}
	if !attributePattern.MatchString(name) {
		return fmt.Errorf("%w: attribute name '%s' is invalid (must start with letter or underscore, followed by alphanumeric, underscore, dot or dash)", ErrInvalid, name)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Field()
		tag := e.Tag()
		param := e.Param()

		switch tag {
		case "required":
			return fmt.Errorf("%w: %s: field is required", ErrInvalid, field)
		case "min", "gte":
			return fmt.Errorf("%w: %s: must be at least %s", ErrInvalid, field, param)
		case "max", "lte":
			return fmt.Errorf("%w: %s: must not exceed %s", ErrInvalid, field, param)
		case "gt":
			return fmt.Errorf("%w: %s: must be greater than %s", ErrInvalid, field, param)
		case "lt":
			return fmt.Errorf("%w: %s: must be less than %s", ErrInvalid, field, param)
		case "ltfield":
			return fmt.Errorf("%w: %s: must be less than %s", ErrInvalid, field, param)
		case "oneof":
			return fmt.Errorf("%w: %s: must be one of [%s]", ErrInvalid, field, param)
		case "dive":
			return fmt.Errorf("%w: %s: invalid element in array", ErrInvalid, field)
		default:
			return fmt.Errorf("%w: %s: validation failed (%s)", ErrInvalid, field, tag)
		}
	}

	return err
}
