// Package sanitizer normalizes arbitrary JSON into a valid workflow document.
package sanitizer

import (
	"errors"
	"fmt"
)

// Sentinel defects the sanitizer refuses to repair.
var (
	// ErrMissingNodes indicates the payload has no nodes array.
	ErrMissingNodes = errors.New("missing nodes array")

	// ErrMissingNodeType indicates a node has no type field. Type determines
	// executable behavior, so it cannot be invented.
	ErrMissingNodeType = errors.New("missing type field")

	// ErrInvalidJSON indicates the payload could not be parsed even after repair.
	ErrInvalidJSON = errors.New("invalid JSON payload")
)

// ValidationError is fatal to the current document: no partial artifact is
// produced and the caller must not retry with the same payload.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidationError(err error, format string, args ...any) *ValidationError {
	return &ValidationError{
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// IsValidationError checks whether an error is a sanitizer validation failure.
func IsValidationError(err error) bool {
	var ve *ValidationError

	return errors.As(err, &ve)
}
