package dto

// ExecuteRequest is the body for POST /executions.
type ExecuteRequest struct {
	Command   string            `json:"command" binding:"required"`
	Workdir   string            `json:"workdir"`
	TimeoutMs int               `json:"timeout_ms"`
	Env       map[string]string `json:"env"`
	Shell     bool              `json:"shell"`
}

// ExecutionResponse mirrors a completed execution result.
type ExecutionResponse struct {
	Command    string `json:"command"`
	ExitCode   int    `json:"exit_code"`
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	DurationMs int64  `json:"duration_ms"`
	Killed     bool   `json:"killed"`
	PID        int    `json:"pid"`
}

// ValidateRequest is the body for POST /validate.
type ValidateRequest struct {
	Command string `json:"command" binding:"required"`
}

// ValidationResponse reports a dry-run policy decision.
type ValidationResponse struct {
	Valid       bool     `json:"valid"`
	Reason      string   `json:"reason"`
	Suggestions []string `json:"suggestions,omitempty"`
}
