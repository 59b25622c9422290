package domain

// ValidationResult is the outcome of checking a command against the
// configured policy. It is computed fresh per call and never persisted.
type ValidationResult struct {
	Valid       bool     `json:"valid"`
	Reason      string   `json:"reason"`
	Suggestions []string `json:"suggestions,omitempty"`
}
