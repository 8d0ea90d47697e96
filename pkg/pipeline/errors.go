// Package pipeline orchestrates generation runs around the external generator.
package pipeline

import (
	"errors"
	"fmt"
)

// ErrRunCancelled halts a run between stages. No further generator calls are
// made and no credits are deducted; artifacts already produced stay
// discoverable on the aborted result.
var ErrRunCancelled = errors.New("generation run cancelled")

// GenerationError wraps an external generator failure. The current run's
// progress log records an error step, no credits are deducted, and partial
// batch results already produced are preserved.
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed at %s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsGenerationError checks whether an error is an external generator failure.
func IsGenerationError(err error) bool {
	var ge *GenerationError

	return errors.As(err, &ge)
}
