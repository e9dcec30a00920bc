// Package process spawns external programs for the tooling collaborators.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"
	"golang.org/x/sync/errgroup"
)

// ErrExecutableNotFound is returned when the program to spawn cannot be
// located.
var ErrExecutableNotFound = errors.New("executable not found")

// Spec describes one program invocation.
type Spec struct {
	Name string
	Args []string
	Dir  string
	// Env is appended to the inherited environment.
	Env []string
	// Stdout and Stderr additionally receive the output as it is produced.
	Stdout io.Writer
	Stderr io.Writer
}

// CommandLine renders the invocation as a shell-quoted string for logs.
func (s Spec) CommandLine() string {
	return shellquote.Join(append([]string{s.Name}, s.Args...)...)
}

// ExitError reports a program that ran but exited non-zero.
type ExitError struct {
	Command string
	Code    int
	Stderr  string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Command, e.Code)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// Runner runs a program to completion and returns its trimmed stdout.
type Runner interface {
	Run(ctx context.Context, spec Spec) (string, error)
}

// Local runs programs on the host.
type Local struct{}

// NewLocal creates a Runner for the host.
func NewLocal() *Local {
	return &Local{}
}

// Run executes spec. Cancelling ctx kills the process.
func (l *Local) Run(ctx context.Context, spec Spec) (string, error) {
	slog.Debug("running command", "dir", spec.Dir, "command", spec.CommandLine())

	path, err := exec.LookPath(spec.Name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrExecutableNotFound, spec.Name)
	}

	cmd := exec.CommandContext(ctx, path, spec.Args...)
	cmd.Dir = spec.Dir
	if len(spec.Env) > 0 {
		cmd.Env = append(os.Environ(), spec.Env...)
	}

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("creating stdout pipe: %w", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return "", fmt.Errorf("creating stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrExecutableNotFound, spec.Name)
		}
		return "", fmt.Errorf("starting %s: %w", spec.Name, err)
	}

	// Both pipes must be drained before Wait closes them.
	var stdout, stderr bytes.Buffer
	var g errgroup.Group
	g.Go(func() error { return drain(stdoutPipe, &stdout, spec.Stdout) })
	g.Go(func() error { return drain(stderrPipe, &stderr, spec.Stderr) })
	drainErr := g.Wait()

	if err := cmd.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%s: %w", spec.Name, ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &ExitError{Command: spec.Name, Code: exitErr.ExitCode(), Stderr: stderr.String()}
		}
		return "", fmt.Errorf("waiting for %s: %w", spec.Name, err)
	}
	if drainErr != nil {
		return "", fmt.Errorf("reading output of %s: %w", spec.Name, drainErr)
	}

	return strings.TrimSpace(stdout.String()), nil
}

func drain(r io.Reader, buf *bytes.Buffer, stream io.Writer) error {
	var w io.Writer = buf
	if stream != nil {
		w = io.MultiWriter(buf, stream)
	}
	_, err := io.Copy(w, r)
	return err
}
