package service

import (
	"context"
	"errors"
	"time"

	"github.com/martijn/cmdgate/internal/core/domain"
	"github.com/martijn/cmdgate/internal/core/engine"
	"github.com/martijn/cmdgate/internal/core/ports"
	"github.com/martijn/cmdgate/internal/core/repository"
)

var errArchiveDisabled = errors.New("execution archive is disabled")

// ExecutionService fronts the execution engine for the API and CLI and
// archives every completed result. The archive is best effort: a failed
// write is logged, never surfaced, and the in-memory history stays
// authoritative.
type ExecutionService struct {
	executor   *engine.Executor
	registry   *engine.Registry
	history    *engine.History
	executions repository.ExecutionRepository
	log        ports.Logger
}

// NewExecutionService wires the engine to an optional archive repository
// (nil disables archiving).
func NewExecutionService(
	executor *engine.Executor,
	registry *engine.Registry,
	history *engine.History,
	executions repository.ExecutionRepository,
	log ports.Logger,
) *ExecutionService {
	return &ExecutionService{
		executor:   executor,
		registry:   registry,
		history:    history,
		executions: executions,
		log:        log,
	}
}

// Run executes a command and archives the result.
func (s *ExecutionService) Run(ctx context.Context, req domain.ExecutionRequest) (*domain.ExecutionResult, error) {
	start := time.Now()
	res, err := s.executor.Execute(req)
	if err != nil {
		return nil, err
	}

	s.archive(ctx, *res, start)
	return res, nil
}

// RunStream executes a command in streaming mode. The exit code reported
// through the handler is also captured for the archive record.
func (s *ExecutionService) RunStream(ctx context.Context, req domain.ExecutionRequest, handler engine.StreamHandler) (*domain.StreamResult, error) {
	start := time.Now()

	exitCode := 0
	callerExit := handler.OnExit
	handler.OnExit = func(code int) {
		exitCode = code
		if callerExit != nil {
			callerExit(code)
		}
	}

	res, err := s.executor.ExecuteStream(req, handler)
	if err != nil {
		return nil, err
	}

	s.archive(ctx, domain.ExecutionResult{
		Command:    res.Command,
		ExitCode:   exitCode,
		DurationMs: res.DurationMs,
		Killed:     res.Killed,
		PID:        res.PID,
	}, start)
	return res, nil
}

// Validate checks a command against the policy without executing it.
func (s *ExecutionService) Validate(command string) domain.ValidationResult {
	return s.executor.Validator().Validate(command)
}

// History returns the in-memory history in completion order.
func (s *ExecutionService) History() []domain.ExecutionResult {
	return s.history.Snapshot()
}

// Analyze derives statistics from the in-memory history.
func (s *ExecutionService) Analyze() domain.HistoryAnalysis {
	return s.history.Analyze()
}

// Running lists the currently registered processes.
func (s *ExecutionService) Running() []engine.ProcessInfo {
	return s.registry.List()
}

// Terminate requests graceful termination of one process.
func (s *ExecutionService) Terminate(pid int) bool {
	return s.registry.TerminateOne(pid)
}

// TerminateAll requests graceful termination of every running process.
func (s *ExecutionService) TerminateAll() int {
	count := s.registry.TerminateAll()
	s.log.Info("terminated all running processes", "count", count)
	return count
}

// ListArchived queries the sqlite archive.
func (s *ExecutionService) ListArchived(ctx context.Context, filter repository.ExecutionFilter) ([]*domain.ExecutionRecord, error) {
	if s.executions == nil {
		return nil, errArchiveDisabled
	}
	return s.executions.List(ctx, filter)
}

// CountArchived counts archived executions matching the filter.
func (s *ExecutionService) CountArchived(ctx context.Context, filter repository.ExecutionFilter) (int, error) {
	if s.executions == nil {
		return 0, errArchiveDisabled
	}
	return s.executions.Count(ctx, filter)
}

// GetArchived fetches one archived execution by id.
func (s *ExecutionService) GetArchived(ctx context.Context, id string) (*domain.ExecutionRecord, error) {
	if s.executions == nil {
		return nil, errArchiveDisabled
	}
	return s.executions.FindByID(ctx, id)
}

func (s *ExecutionService) archive(ctx context.Context, res domain.ExecutionResult, start time.Time) {
	if s.executions == nil {
		return
	}

	record := domain.NewExecutionRecord(res, start, time.Now())
	if err := s.executions.Create(ctx, record); err != nil {
		s.log.Error("failed to archive execution", "command", res.Command, "error", err)
	}
}
