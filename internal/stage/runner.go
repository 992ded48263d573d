package stage

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// SpawnFailureExitCode is reported when the process never started
const SpawnFailureExitCode = -1

// signaledExitCode is reported for processes terminated by a signal
const signaledExitCode = 128

// defaultWaitDelay bounds how long Run waits for output pipes after the
// process has been killed on cancellation.
const defaultWaitDelay = 5 * time.Second

// Result is the uniform outcome of one external process invocation.
type Result struct {
	ExitCode int
	// Output holds stdout and stderr merged in arrival order.
	Output string
	// SpawnErr is set when the executable could not be started.
	SpawnErr error
	// Interrupted is set when ctx ended before the process exited.
	Interrupted bool
	Duration    time.Duration
}

// Started reports whether the process was actually launched
func (r Result) Started() bool {
	return r.SpawnErr == nil
}

// Runner invokes an external executable and reduces the outcome to a Result.
// Implementations never return an error; every failure mode is encoded in
// the Result.
type Runner interface {
	Run(ctx context.Context, executable string, args []string, dir string) Result
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, executable string, args []string, dir string) Result

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, executable string, args []string, dir string) Result {
	return f(ctx, executable, args, dir)
}

// ExecRunner runs processes with os/exec. Arguments are passed literally,
// never through a shell. The runner imposes no timeout of its own; the
// process is killed only when ctx ends.
type ExecRunner struct {
	WaitDelay time.Duration
}

// NewExecRunner returns an ExecRunner with default settings.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{WaitDelay: defaultWaitDelay}
}

// Run starts executable and waits for it while draining its output.
func (r *ExecRunner) Run(ctx context.Context, executable string, args []string, dir string) Result {
	start := time.Now()

	cmd := exec.CommandContext(ctx, executable, args...) //nolint:gosec
	cmd.Dir = dir
	cmd.WaitDelay = r.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = defaultWaitDelay
	}

	// A single comparable writer makes exec serialize writes from both streams.
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Start(); err != nil {
		return Result{
			ExitCode:    SpawnFailureExitCode,
			Output:      err.Error(),
			SpawnErr:    err,
			Interrupted: ctx.Err() != nil,
			Duration:    time.Since(start),
		}
	}

	err := cmd.Wait()
	result := Result{
		Output:      output.String(),
		Interrupted: ctx.Err() != nil,
		Duration:    time.Since(start),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result.ExitCode = 0
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
		if result.ExitCode < 0 {
			// terminated by a signal; -1 stays reserved for spawn failures
			result.ExitCode = signaledExitCode
		}
	default:
		// output copy failed or WaitDelay expired after the process ended
		result.ExitCode = signaledExitCode
		if result.Output == "" {
			result.Output = err.Error()
		}
	}
	return result
}
