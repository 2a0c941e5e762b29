// Package executor runs external compressor processes and reports their
// exit status. Output is captured, never interpreted.
package executor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// Result holds the outcome of one child-process invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

// Ok reports whether the process ran and exited with status zero.
func (r Result) Ok() bool {
	return r.Err == nil && r.ExitCode == 0
}

// Executor runs an argument vector to completion.
type Executor interface {
	Run(ctx context.Context, argv []string) Result
}

// CommandExecutor is the production Executor backed by os/exec.
type CommandExecutor struct {
	// Timeout bounds each invocation. Zero means no limit; a hung
	// compressor then blocks the batch, so the default config sets one.
	Timeout time.Duration
}

// NewCommandExecutor returns an executor with the given per-command timeout.
func NewCommandExecutor(timeout time.Duration) *CommandExecutor {
	return &CommandExecutor{Timeout: timeout}
}

// Run executes argv[0] with the remaining arguments and blocks until the
// process exits or the timeout elapses.
func (e *CommandExecutor) Run(ctx context.Context, argv []string) Result {
	if len(argv) == 0 {
		return Result{ExitCode: -1, Err: errors.New("empty argument vector")}
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		res.ExitCode = 0
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		// Could not start at all (missing binary, permission).
		res.ExitCode = -1
		res.Err = err
	}
	return res
}
