package domain

import (
	"errors"
	"fmt"
)

// ErrValidation marks expected domain validation failures. Callers classify
// these as INVALID rather than ERROR.
var ErrValidation = errors.New("validation failed")

// validationError builds a field-level validation failure wrapping
// ErrValidation so errors.Is works across package boundaries.
func validationError(field, cause string) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, cause)
}
