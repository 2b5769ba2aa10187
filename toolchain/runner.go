package toolchain

import (
	"context"
	"errors"
	"os/exec"
	"syscall"
)

// Runner abstracts one-shot command execution for version probes and
// environment capture. The pipeline's stage runner streams instead; this
// interface is for short invocations whose full output is wanted.
type Runner interface {
	// CombinedOutput runs the command under env and returns its merged
	// stdout/stderr, its exit code, and an error when the command could
	// not be started at all (exit code is meaningless in that case).
	CombinedOutput(ctx context.Context, env Environ, name string, args ...string) ([]byte, int, error)
}

// ExecRunner runs commands via os/exec.
type ExecRunner struct{}

// CombinedOutput implements Runner.
func (ExecRunner) CombinedOutput(ctx context.Context, env Environ, name string, args ...string) ([]byte, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if env != nil {
		cmd.Env = env.Slice()
	}

	out, err := cmd.CombinedOutput()
	if err == nil {
		return out, 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			return out, status.ExitStatus(), nil
		}
		return out, -1, nil
	}

	// Start failure (binary missing, permission denied, ...)
	return out, 0, err
}
