package artifacttool

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// LineHandler consumes one line of child stderr at a time, in emission
// order. Returning an error terminates the child and fails the run with
// that error.
type LineHandler func(line string) error

// Runner holds the metadata for a single artifact tool invocation.
type Runner struct {
	Executable string
	Arguments  []string

	cmd   *exec.Cmd
	lines LineHandler
}

// Command builds a runner for a specific executable.
func Command(ctx context.Context, executable string, opts ...RunnerOpt) (*Runner, error) {
	cmd := exec.CommandContext(ctx, executable)
	cmd.Stdout = os.Stdout

	r := Runner{
		Executable: executable,
		cmd:        cmd,
	}

	for _, opt := range opts {
		if err := opt(&r); err != nil {
			return nil, err
		}
	}

	cmd.Args = append([]string{executable}, r.Arguments...)

	return &r, nil
}

// Exec runs the command, blocking until the child exits or the line handler
// aborts the stream. A handler error wins over the child's own exit error.
func (r *Runner) Exec() error {
	if r.lines == nil {
		if err := r.cmd.Run(); err != nil {
			return fmt.Errorf("%s: %w", r.Executable, err)
		}
		return nil
	}

	stderr, err := r.cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to attach stderr pipe: %w", err)
	}

	if err := r.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", r.Executable, err)
	}

	var handlerErr error
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if err := r.lines(scanner.Text()); err != nil {
			handlerErr = err
			_ = r.cmd.Process.Kill()
			break
		}
	}

	// unblock the child if the handler bailed mid-stream
	_, _ = io.Copy(io.Discard, stderr)

	waitErr := r.cmd.Wait()

	if handlerErr != nil {
		return handlerErr
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s output: %w", r.Executable, err)
	}
	if waitErr != nil {
		return fmt.Errorf("%s: %w", r.Executable, waitErr)
	}

	return nil
}

// Run is a helper to build and execute a command in one call.
func Run(ctx context.Context, executable string, opts ...RunnerOpt) error {
	rnr, err := Command(ctx, executable, opts...)
	if err != nil {
		return err
	}

	return rnr.Exec()
}

// RunnerOpt allows customizing the behavior of the command runner.
type RunnerOpt func(r *Runner) error

// WithArgs sets the command arguments.
func WithArgs(args ...string) RunnerOpt {
	return func(r *Runner) error {
		r.Arguments = args
		return nil
	}
}

// WithEnv appends variables to a copy of the current process environment.
// This is the channel for secret passing; secrets never go through argv.
func WithEnv(vars ...string) RunnerOpt {
	return func(r *Runner) error {
		r.cmd.Env = os.Environ()
		for _, vrb := range vars {
			if !strings.Contains(vrb, "=") {
				return fmt.Errorf("invalid env format; %s doesn't match NAME=value expectation", vrb)
			}
			r.cmd.Env = append(r.cmd.Env, vrb)
		}
		return nil
	}
}

// WithStderrLines streams the child's stderr through the handler line by
// line instead of forwarding it.
func WithStderrLines(handler LineHandler) RunnerOpt {
	return func(r *Runner) error {
		r.lines = handler
		r.cmd.Stderr = nil
		return nil
	}
}

// WithStdout sets up the stdout writer.
func WithStdout(w io.Writer) RunnerOpt {
	return func(r *Runner) error {
		r.cmd.Stdout = w
		return nil
	}
}
