package engine

import (
	"io"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/martijn/cmdgate/internal/core/domain"
)

const streamChunkSize = 4096

// StreamHandler receives process output as it is produced instead of
// having it buffered. Stdout chunks arrive in emission order, as do stderr
// chunks; the two streams interleave arbitrarily relative to each other.
// Any nil callback is simply skipped.
type StreamHandler struct {
	OnStdout func(chunk string)
	OnStderr func(chunk string)
	OnExit   func(exitCode int)
}

// ExecuteStream runs a command with the same validate/spawn/timeout
// lifecycle as Execute, but forwards output to the handler chunk by chunk
// and reports the exit code through OnExit. The returned result omits the
// captured-text fields since nothing was retained.
func (e *Executor) ExecuteStream(req domain.ExecutionRequest, handler StreamHandler) (*domain.StreamResult, error) {
	timeout, workdir := e.resolve(req)

	if vr := e.validator.Validate(req.Command); !vr.Valid {
		return nil, &ValidationError{Command: req.Command, Result: vr}
	}

	cmd := buildCmd(req, workdir)
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &SpawnError{Command: req.Command, Err: err}
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, &SpawnError{Command: req.Command, Err: err}
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Command: req.Command, Err: err}
	}

	pid := cmd.Process.Pid
	e.registry.Register(pid, req.Command, cmd.Process)
	e.log.Debug("streaming process spawned", "pid", pid, "command", req.Command)

	var wg sync.WaitGroup
	wg.Add(2)
	go forwardChunks(stdoutPipe, handler.OnStdout, &wg)
	go forwardChunks(stderrPipe, handler.OnStderr, &wg)

	done := make(chan struct{})
	var killed atomic.Bool
	go e.watchdog(timeout, cmd.Process, done, &killed)

	// Drain both pipes before Wait closes them.
	wg.Wait()
	waitErr := cmd.Wait()
	close(done)
	e.registry.Unregister(pid)

	if waitErr != nil {
		if _, ok := waitErr.(*exec.ExitError); !ok {
			e.log.Warn("wait returned a non-exit error", "pid", pid, "error", waitErr)
		}
	}

	exitCode := normalizeExitCode(cmd.ProcessState.ExitCode())
	if handler.OnExit != nil {
		handler.OnExit(exitCode)
	}

	res := domain.StreamResult{
		Command:    req.Command,
		DurationMs: time.Since(start).Milliseconds(),
		Killed:     killed.Load(),
		PID:        pid,
	}

	// The lifecycle is shared with Execute, so the run still lands in
	// history; only the output text is absent.
	e.history.Append(domain.ExecutionResult{
		Command:    res.Command,
		ExitCode:   exitCode,
		DurationMs: res.DurationMs,
		Killed:     res.Killed,
		PID:        res.PID,
	})
	e.log.Debug("streaming process finished", "pid", pid, "exit_code", exitCode, "killed", res.Killed)

	return &res, nil
}

// forwardChunks reads a pipe until EOF, invoking the callback for every
// chunk in read order.
func forwardChunks(r io.Reader, fn func(string), wg *sync.WaitGroup) {
	defer wg.Done()

	buf := make([]byte, streamChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 && fn != nil {
			fn(string(buf[:n]))
		}
		if err != nil {
			return
		}
	}
}
