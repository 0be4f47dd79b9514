package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("invalid note")
	// ErrStorage wraps failures of the persistence medium (unavailable, disk full, corruption).
	// Operations are attempted once; callers decide what to surface.
	ErrStorage  = errors.New("storage error")
	ErrReadOnly = errors.New("repository is in read-only mode")
)

// ValidationError reports the first empty field of a Draft.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s must not be empty", ErrValidation, e.Field)
}

// Is makes errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
