package engine

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/martijn/cmdgate/internal/core/domain"
	"github.com/martijn/cmdgate/internal/core/ports"
)

// killGracePeriod is how long the watchdog waits after SIGTERM before
// escalating to SIGKILL.
const killGracePeriod = 1000 * time.Millisecond

const shellPath = "/bin/sh"

// Options are the executor defaults, read-only after construction.
type Options struct {
	DefaultTimeoutMs int
	DefaultWorkdir   string
}

// Executor runs one command per call: validate, spawn, capture output,
// enforce the timeout with SIGTERM-then-SIGKILL escalation, and produce an
// immutable result appended to history. Output buffering is unbounded; a
// long-running command with very large output will grow memory
// accordingly.
type Executor struct {
	opts      Options
	validator *Validator
	registry  *Registry
	history   *History
	log       ports.Logger
}

func NewExecutor(opts Options, validator *Validator, registry *Registry, history *History, log ports.Logger) *Executor {
	return &Executor{
		opts:      opts,
		validator: validator,
		registry:  registry,
		history:   history,
		log:       log,
	}
}

// Validator exposes the gate for dry-run validation.
func (e *Executor) Validator() *Validator {
	return e.validator
}

// Execute runs a single command to completion. A rejected command returns
// a *ValidationError and a failed spawn returns a *SpawnError; in both
// cases no result exists and history is untouched. A non-zero exit or a
// timeout kill is a normal completion with a full result.
func (e *Executor) Execute(req domain.ExecutionRequest) (*domain.ExecutionResult, error) {
	timeout, workdir := e.resolve(req)

	if vr := e.validator.Validate(req.Command); !vr.Valid {
		return nil, &ValidationError{Command: req.Command, Result: vr}
	}

	cmd := buildCmd(req, workdir)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Command: req.Command, Err: err}
	}

	pid := cmd.Process.Pid
	e.registry.Register(pid, req.Command, cmd.Process)
	e.log.Debug("process spawned", "pid", pid, "command", req.Command, "timeout_ms", timeout.Milliseconds())

	done := make(chan struct{})
	var killed atomic.Bool
	go e.watchdog(timeout, cmd.Process, done, &killed)

	waitErr := cmd.Wait()
	close(done)
	e.registry.Unregister(pid)

	if waitErr != nil {
		if _, ok := waitErr.(*exec.ExitError); !ok {
			// The exit status is still valid; only stream copying failed.
			e.log.Warn("wait returned a non-exit error", "pid", pid, "error", waitErr)
		}
	}

	res := domain.ExecutionResult{
		Command:    req.Command,
		ExitCode:   normalizeExitCode(cmd.ProcessState.ExitCode()),
		Stdout:     trimTrailing(stdout.String()),
		Stderr:     trimTrailing(stderr.String()),
		DurationMs: time.Since(start).Milliseconds(),
		Killed:     killed.Load(),
		PID:        pid,
	}

	e.history.Append(res)
	e.log.Debug("process finished", "pid", pid, "exit_code", res.ExitCode, "killed", res.Killed, "duration_ms", res.DurationMs)

	return &res, nil
}

// resolve applies the configured defaults over the request fields.
func (e *Executor) resolve(req domain.ExecutionRequest) (time.Duration, string) {
	timeoutMs := req.TimeoutMs
	if timeoutMs <= 0 {
		timeoutMs = e.opts.DefaultTimeoutMs
	}
	workdir := req.Workdir
	if workdir == "" {
		workdir = e.opts.DefaultWorkdir
	}
	return time.Duration(timeoutMs) * time.Millisecond, workdir
}

// watchdog waits for the timeout, then requests graceful termination and
// escalates to SIGKILL after the grace period. It is cancelled through
// done the moment the process exits, so a stray timer never fires against
// a reused pid.
func (e *Executor) watchdog(timeout time.Duration, proc *os.Process, done <-chan struct{}, killed *atomic.Bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return
	case <-timer.C:
	}

	killed.Store(true)
	e.log.Warn("timeout reached, sending SIGTERM", "pid", proc.Pid, "timeout", timeout)
	_ = proc.Signal(syscall.SIGTERM)

	select {
	case <-done:
	case <-time.After(killGracePeriod):
		e.log.Warn("grace period elapsed, sending SIGKILL", "pid", proc.Pid)
		_ = proc.Kill()
	}
}

// buildCmd turns a request into an exec.Cmd. Without Shell the command
// text is split on whitespace only; quoted arguments and shell operators
// are not interpreted. With Shell the raw string is handed to /bin/sh -c.
func buildCmd(req domain.ExecutionRequest, workdir string) *exec.Cmd {
	var cmd *exec.Cmd
	if req.Shell {
		cmd = exec.Command(shellPath, "-c", req.Command)
	} else {
		argv := strings.Fields(req.Command)
		cmd = exec.Command(argv[0], argv[1:]...)
	}
	cmd.Dir = workdir
	cmd.Env = mergeEnv(req.Env)
	return cmd
}

// mergeEnv layers the request overrides on top of the ambient environment.
// Later entries win for duplicate keys.
func mergeEnv(overrides map[string]string) []string {
	env := os.Environ()
	if len(overrides) == 0 {
		return env
	}

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, fmt.Sprintf("%s=%s", k, overrides[k]))
	}
	return env
}

// normalizeExitCode maps the absence of a real exit code (the process was
// signaled) to 0; the killed flag carries that information.
func normalizeExitCode(code int) int {
	if code < 0 {
		return 0
	}
	return code
}

func trimTrailing(s string) string {
	return strings.TrimRight(s, " \t\r\n")
}
