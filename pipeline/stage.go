package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"syscall"

	"github.com/justapithecus/masonry/toolchain"
)

// Stage abstracts a running stage process for test injection.
type Stage interface {
	// Output is the merged stdout/stderr stream. Must be consumed to
	// EOF before Wait.
	Output() io.Reader
	// Wait blocks until exit and returns the exit code.
	Wait() (int, error)
}

// StageFactory starts a stage process. Tests substitute canned stages.
type StageFactory func(ctx context.Context, env toolchain.Environ, dir string, argv []string) (Stage, error)

// stageProcess runs one pipeline stage as a child process with merged
// output. The controller consumes the stream to EOF, then waits for the
// exit status; there is no timeout, a hanging tool blocks the pipeline
// until interrupted.
type stageProcess struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
}

// StartStage launches argv under env in dir and returns the running
// stage. The returned error covers start failures only (binary missing,
// permission denied); tool failures surface through Wait.
func StartStage(ctx context.Context, env toolchain.Environ, dir string, argv []string) (Stage, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty stage command")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	if env != nil {
		cmd.Env = env.Slice()
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	// Merge stderr into the same pipe; both grammars operate on the
	// combined stream.
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", argv[0], err)
	}

	return &stageProcess{cmd: cmd, stdout: stdout}, nil
}

// Output returns the merged output reader.
func (p *stageProcess) Output() io.Reader {
	return p.stdout
}

// Wait waits for the process to exit and returns its exit code.
// Must be called after Output has been drained.
func (p *stageProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			return status.ExitStatus(), nil
		}
		return -1, nil
	}
	return 0, fmt.Errorf("stage wait failed: %w", err)
}
