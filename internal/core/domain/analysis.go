package domain

// CommandCount pairs a command with how often it appears in history.
type CommandCount struct {
	Command string `json:"command"`
	Count   int    `json:"count"`
}

// HistoryAnalysis is derived from the in-memory history on demand.
type HistoryAnalysis struct {
	TotalCount        int               `json:"total_count"`
	SuccessRate       float64           `json:"success_rate"`
	AverageDurationMs float64           `json:"average_duration_ms"`
	TopCommands       []CommandCount    `json:"top_commands"`
	RecentFailures    []ExecutionResult `json:"recent_failures"`
}
