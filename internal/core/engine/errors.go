package engine

import (
	"fmt"

	"github.com/martijn/cmdgate/internal/core/domain"
)

// ValidationError is returned when a command is rejected before any
// process is spawned. The embedded result carries the reason and any
// suggested alternatives.
type ValidationError struct {
	Command string
	Result  domain.ValidationResult
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("command rejected: %s", e.Result.Reason)
}

// SpawnError is returned when the OS could not start the process at all
// (missing executable, permission denied). No result and no history entry
// exist in that case.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}
