package analysis

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is matched by every input validation failure
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError describes a rejected field
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is reports ErrInvalidInput as a match so callers can use errors.Is
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalid(field, reason string) error {
	return &InvalidInputError{Field: field, Reason: reason}
}

// safeDiv treats division by zero as 0 so empty inputs never produce NaN or Inf
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
