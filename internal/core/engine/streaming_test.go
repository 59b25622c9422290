package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/martijn/cmdgate/internal/core/domain"
)

func TestExecuteStreamDeliversStdout(t *testing.T) {
	env := newTestEngine(t, nil, nil)

	var chunks []string
	exitCode := -1
	handler := StreamHandler{
		OnStdout: func(chunk string) { chunks = append(chunks, chunk) },
		OnExit:   func(code int) { exitCode = code },
	}

	result, err := env.executor.ExecuteStream(domain.ExecutionRequest{
		Command: `printf 'alpha\nbeta\n'`,
		Shell:   true,
	}, handler)
	if err != nil {
		t.Fatalf("ExecuteStream returned error: %v", err)
	}

	if got := strings.Join(chunks, ""); got != "alpha\nbeta\n" {
		t.Errorf("stdout chunks = %q, want %q", got, "alpha\nbeta\n")
	}
	if exitCode != 0 {
		t.Errorf("OnExit received %d, want 0", exitCode)
	}
	if result.Killed {
		t.Error("Killed = true, want false")
	}
	if result.PID <= 0 {
		t.Errorf("PID = %d, want > 0", result.PID)
	}
}

func TestExecuteStreamDeliversStderr(t *testing.T) {
	env := newTestEngine(t, nil, nil)

	var stderrChunks []string
	handler := StreamHandler{
		OnStderr: func(chunk string) { stderrChunks = append(stderrChunks, chunk) },
	}

	_, err := env.executor.ExecuteStream(domain.ExecutionRequest{
		Command: "echo failure detail 1>&2; exit 2",
		Shell:   true,
	}, handler)
	if err != nil {
		t.Fatalf("ExecuteStream returned error: %v", err)
	}

	if got := strings.Join(stderrChunks, ""); !strings.Contains(got, "failure detail") {
		t.Errorf("stderr chunks = %q, want the error text", got)
	}
}

func TestExecuteStreamReportsExitCode(t *testing.T) {
	env := newTestEngine(t, nil, nil)

	exitCode := -1
	handler := StreamHandler{OnExit: func(code int) { exitCode = code }}

	_, err := env.executor.ExecuteStream(domain.ExecutionRequest{
		Command: "exit 5",
		Shell:   true,
	}, handler)
	if err != nil {
		t.Fatalf("ExecuteStream returned error: %v", err)
	}
	if exitCode != 5 {
		t.Errorf("OnExit received %d, want 5", exitCode)
	}
}

func TestExecuteStreamTimeout(t *testing.T) {
	env := newTestEngine(t, nil, nil)

	result, err := env.executor.ExecuteStream(domain.ExecutionRequest{
		Command:   "sleep 30",
		TimeoutMs: 100,
	}, StreamHandler{})
	if err != nil {
		t.Fatalf("ExecuteStream returned error: %v", err)
	}

	if !result.Killed {
		t.Error("Killed = false, want true after timeout")
	}
	if env.registry.Count() != 0 {
		t.Errorf("registry still has %d entries after the run", env.registry.Count())
	}
}

func TestExecuteStreamAppendsToHistory(t *testing.T) {
	env := newTestEngine(t, nil, nil)

	_, err := env.executor.ExecuteStream(domain.ExecutionRequest{
		Command: "echo streamed",
	}, StreamHandler{})
	if err != nil {
		t.Fatalf("ExecuteStream returned error: %v", err)
	}

	snapshot := env.history.Snapshot()
	if len(snapshot) != 1 {
		t.Fatalf("history has %d entries, want 1", len(snapshot))
	}
	entry := snapshot[0]
	if entry.Command != "echo streamed" {
		t.Errorf("history entry command = %q", entry.Command)
	}
	if entry.Stdout != "" || entry.Stderr != "" {
		t.Errorf("streamed history entry should not retain output, got stdout=%q stderr=%q", entry.Stdout, entry.Stderr)
	}
}

func TestExecuteStreamValidationRejection(t *testing.T) {
	env := newTestEngine(t, nil, []string{"sudo"})

	called := false
	handler := StreamHandler{
		OnStdout: func(string) { called = true },
		OnExit:   func(int) { called = true },
	}

	_, err := env.executor.ExecuteStream(domain.ExecutionRequest{Command: "sudo ls"}, handler)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error is %T, want *ValidationError", err)
	}
	if called {
		t.Error("no callback should fire for a rejected command")
	}
	if env.history.Len() != 0 {
		t.Errorf("history has %d entries, want 0", env.history.Len())
	}
}

func TestExecuteStreamSpawnFailure(t *testing.T) {
	env := newTestEngine(t, nil, nil)

	_, err := env.executor.ExecuteStream(domain.ExecutionRequest{
		Command: "definitely-not-a-real-binary-xyz",
	}, StreamHandler{})
	if err == nil {
		t.Fatal("expected a spawn error")
	}
	var sErr *SpawnError
	if !errors.As(err, &sErr) {
		t.Fatalf("error is %T, want *SpawnError", err)
	}
	if env.history.Len() != 0 {
		t.Errorf("history has %d entries, want 0", env.history.Len())
	}
}
