package domain

import (
	"time"

	"github.com/google/uuid"
)

type ExecutionStatus string

const (
	ExecutionStatusSuccess ExecutionStatus = "success"
	ExecutionStatusFailed  ExecutionStatus = "failed"
)

// ExecutionRequest describes a single command invocation. Zero values fall
// back to the configured defaults; the struct is never mutated after
// construction.
type ExecutionRequest struct {
	Command   string            `json:"command"`
	Workdir   string            `json:"workdir,omitempty"`
	TimeoutMs int               `json:"timeout_ms,omitempty"`
	Env       map[string]string `json:"env,omitempty"`
	Shell     bool              `json:"shell,omitempty"`
}

// ExecutionResult is produced exactly once per completed execution and is
// immutable afterwards. A process that never reported a real exit code
// (it was signaled) carries exit code 0 with Killed set when the timeout
// watchdog fired.
type ExecutionResult struct {
	Command    string `json:"command"`
	ExitCode   int    `json:"exit_code"`
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	DurationMs int64  `json:"duration_ms"`
	Killed     bool   `json:"killed"`
	PID        int    `json:"pid"`
}

// Success reports whether the process exited cleanly.
func (r ExecutionResult) Success() bool {
	return r.ExitCode == 0 && !r.Killed
}

// StreamResult is the streaming-mode counterpart of ExecutionResult.
// Output was handed to the caller chunk by chunk and is not retained,
// so only the lifecycle fields remain.
type StreamResult struct {
	Command    string `json:"command"`
	DurationMs int64  `json:"duration_ms"`
	Killed     bool   `json:"killed"`
	PID        int    `json:"pid"`
}

// ExecutionRecord is the archived form of a result, persisted to sqlite
// after the execution completes.
type ExecutionRecord struct {
	ID         string          `db:"id" json:"id"`
	Command    string          `db:"command" json:"command"`
	Status     ExecutionStatus `db:"status" json:"status"`
	ExitCode   int             `db:"exit_code" json:"exit_code"`
	Stdout     string          `db:"stdout" json:"stdout"`
	Stderr     string          `db:"stderr" json:"stderr"`
	DurationMs int64           `db:"duration_ms" json:"duration_ms"`
	Killed     bool            `db:"killed" json:"killed"`
	PID        int             `db:"pid" json:"pid"`
	StartTime  time.Time       `db:"start_time" json:"start_time"`
	EndTime    time.Time       `db:"end_time" json:"end_time"`
}

func NewExecutionRecord(res ExecutionResult, startTime, endTime time.Time) *ExecutionRecord {
	status := ExecutionStatusSuccess
	if !res.Success() {
		status = ExecutionStatusFailed
	}

	return &ExecutionRecord{
		ID:         uuid.New().String(),
		Command:    res.Command,
		Status:     status,
		ExitCode:   res.ExitCode,
		Stdout:     res.Stdout,
		Stderr:     res.Stderr,
		DurationMs: res.DurationMs,
		Killed:     res.Killed,
		PID:        res.PID,
		StartTime:  startTime,
		EndTime:    endTime,
	}
}
