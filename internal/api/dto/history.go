package dto

import "time"

// HistoryResponse is the in-memory history in completion order.
type HistoryResponse struct {
	Items []ExecutionResponse `json:"items"`
	Count int                 `json:"count"`
}

// AnalysisResponse is derived from the in-memory history.
type AnalysisResponse struct {
	TotalCount        int                 `json:"total_count"`
	SuccessRate       float64             `json:"success_rate"`
	AverageDurationMs float64             `json:"average_duration_ms"`
	TopCommands       []CommandCount      `json:"top_commands"`
	RecentFailures    []ExecutionResponse `json:"recent_failures"`
}

type CommandCount struct {
	Command string `json:"command"`
	Count   int    `json:"count"`
}

// ExecutionRecordResponse is one archived execution.
type ExecutionRecordResponse struct {
	ID         string    `json:"id"`
	Command    string    `json:"command"`
	Status     string    `json:"status"`
	ExitCode   int       `json:"exit_code"`
	Stdout     string    `json:"stdout"`
	Stderr     string    `json:"stderr"`
	DurationMs int64     `json:"duration_ms"`
	Killed     bool      `json:"killed"`
	PID        int       `json:"pid"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
}

// ExecutionListResponse is a paginated archive listing.
type ExecutionListResponse struct {
	Items      []ExecutionRecordResponse `json:"items"`
	Pagination PaginationInfo            `json:"pagination"`
}
