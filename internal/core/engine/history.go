package engine

import (
	"sort"
	"sync"

	"github.com/martijn/cmdgate/internal/core/domain"
)

const (
	topCommandCount    = 5
	recentFailureCount = 5
)

// History is the in-memory, append-only record of completed executions.
// Entries are stored in completion order and never reordered or removed;
// the store resets with the process.
type History struct {
	mu      sync.Mutex
	entries []domain.ExecutionResult
}

func NewHistory() *History {
	return &History{}
}

// Append records a completed result. Never fails.
func (h *History) Append(res domain.ExecutionResult) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, res)
}

// Snapshot returns a defensive copy of all entries in completion order.
func (h *History) Snapshot() []domain.ExecutionResult {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]domain.ExecutionResult, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of recorded results.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Analyze derives aggregate statistics from the stored sequence. An empty
// history yields zero values throughout.
func (h *History) Analyze() domain.HistoryAnalysis {
	entries := h.Snapshot()

	analysis := domain.HistoryAnalysis{
		TotalCount:     len(entries),
		TopCommands:    []domain.CommandCount{},
		RecentFailures: []domain.ExecutionResult{},
	}
	if len(entries) == 0 {
		return analysis
	}

	successes := 0
	var totalDuration int64
	counts := make(map[string]int)
	var firstSeen []string

	for _, entry := range entries {
		if entry.Success() {
			successes++
		}
		totalDuration += entry.DurationMs

		if _, seen := counts[entry.Command]; !seen {
			firstSeen = append(firstSeen, entry.Command)
		}
		counts[entry.Command]++
	}

	analysis.SuccessRate = float64(successes) / float64(len(entries))
	analysis.AverageDurationMs = float64(totalDuration) / float64(len(entries))

	// Rank by frequency; SliceStable keeps first-seen order for ties.
	ranked := append([]string(nil), firstSeen...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})
	if len(ranked) > topCommandCount {
		ranked = ranked[:topCommandCount]
	}
	for _, command := range ranked {
		analysis.TopCommands = append(analysis.TopCommands, domain.CommandCount{
			Command: command,
			Count:   counts[command],
		})
	}

	var failures []domain.ExecutionResult
	for _, entry := range entries {
		if entry.ExitCode != 0 {
			failures = append(failures, entry)
		}
	}
	if len(failures) > recentFailureCount {
		failures = failures[len(failures)-recentFailureCount:]
	}
	analysis.RecentFailures = append(analysis.RecentFailures, failures...)

	return analysis
}
