package engine

import (
	"fmt"
	"strings"

	"github.com/martijn/cmdgate/internal/core/domain"
)

const maxAllowSuggestions = 3

// Validator gates commands before execution. Checks run in a fixed order:
// block-list first, then the allow-list, then the concurrency limit, so a
// caller always gets the most specific reason for a rejection.
//
// Block-list matching is substring-based over the whole command text. That
// both over-blocks (a pattern appearing inside a longer, harmless command)
// and under-blocks (the same dangerous invocation phrased differently);
// it is kept deliberately simple and should not be mistaken for a sandbox.
type Validator struct {
	allowed       []string
	blocked       []string
	maxConcurrent int
	running       func() int
}

// NewValidator builds a validator. running reports the current number of
// registered processes; it is read as a snapshot, not under a lock.
func NewValidator(allowed, blocked []string, maxConcurrent int, running func() int) *Validator {
	return &Validator{
		allowed:       allowed,
		blocked:       blocked,
		maxConcurrent: maxConcurrent,
		running:       running,
	}
}

// Validate checks a command against the configured policy. First match
// wins; a valid command yields no suggestions.
func (v *Validator) Validate(command string) domain.ValidationResult {
	trimmed := strings.TrimSpace(command)
	if trimmed == "" {
		return domain.ValidationResult{
			Valid:  false,
			Reason: "empty command",
		}
	}

	for _, pattern := range v.blocked {
		if strings.Contains(command, pattern) {
			return domain.ValidationResult{
				Valid:  false,
				Reason: fmt.Sprintf("command contains blocked pattern %q", pattern),
				Suggestions: []string{
					fmt.Sprintf("remove %q from the command", pattern),
				},
			}
		}
	}

	if len(v.allowed) > 0 && !v.isAllowed(trimmed) {
		token := strings.Fields(trimmed)[0]
		n := len(v.allowed)
		if n > maxAllowSuggestions {
			n = maxAllowSuggestions
		}
		suggestions := make([]string, 0, n)
		for _, entry := range v.allowed[:n] {
			suggestions = append(suggestions, fmt.Sprintf("try %q", entry))
		}
		return domain.ValidationResult{
			Valid:       false,
			Reason:      fmt.Sprintf("%q is not in the allowed command list", token),
			Suggestions: suggestions,
		}
	}

	if v.running != nil && v.running() >= v.maxConcurrent {
		return domain.ValidationResult{
			Valid:  false,
			Reason: fmt.Sprintf("concurrent process limit reached (%d)", v.maxConcurrent),
			Suggestions: []string{
				"wait for a running command to finish",
				"terminate running processes first",
			},
		}
	}

	return domain.ValidationResult{Valid: true, Reason: "ok"}
}

// isAllowed accepts a command whose first token equals an allow-list entry
// exactly, or that starts with an entry followed by a space (entries may
// be multi-word prefixes).
func (v *Validator) isAllowed(command string) bool {
	token := strings.Fields(command)[0]
	for _, entry := range v.allowed {
		if token == entry || strings.HasPrefix(command, entry+" ") {
			return true
		}
	}
	return false
}
