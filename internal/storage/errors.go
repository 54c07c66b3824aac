package storage

import (
	"errors"
	"fmt"
)

// ErrDuplicateFood is returned when a food insert collides with an existing
// name, compared case-insensitively.
var ErrDuplicateFood = errors.New("food already exists in database")

// ValidationError reports malformed or out-of-range input. Operations that
// return one leave the store unchanged.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validationErrorf(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
