// Package hyperfine drives the hyperfine benchmarking tool.
package hyperfine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/spachava753/revbench/internal/tooling"
	"github.com/spachava753/revbench/internal/tooling/process"
)

var _ tooling.TimingTool = (*Tool)(nil)

// ErrNotInstalled is returned when the hyperfine executable cannot be found.
var ErrNotInstalled = errors.New("hyperfine is required but not installed. Please install it (e.g., 'brew install hyperfine' on macOS).")

// Tool runs hyperfine through a process runner. Its progress output is
// streamed to Stdout and Stderr.
type Tool struct {
	runner process.Runner
	binary string
	Stdout io.Writer
	Stderr io.Writer
}

// New creates a Tool. An empty binary defaults to "hyperfine".
func New(runner process.Runner, binary string) *Tool {
	if binary == "" {
		binary = "hyperfine"
	}
	return &Tool{runner: runner, binary: binary, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Args builds the hyperfine argument list for inv. Every command gets an
// explicit --prepare, empty when it has none, so prepare commands line up
// with their benchmark.
func Args(inv tooling.TimingInvocation) []string {
	args := []string{
		"--warmup", strconv.Itoa(inv.Warmup),
		"--runs", strconv.Itoa(inv.Runs),
	}
	for _, c := range inv.Commands {
		args = append(args, "--prepare", c.Prepare)
		args = append(args, "--command-name", c.Name, c.Command)
	}
	return append(args, "--export-json", inv.ExportPath)
}

// Run executes one hyperfine invocation and waits for it to finish.
func (t *Tool) Run(ctx context.Context, inv tooling.TimingInvocation) error {
	spec := process.Spec{
		Name:   t.binary,
		Args:   Args(inv),
		Dir:    inv.Dir,
		Env:    inv.Env,
		Stdout: t.Stdout,
		Stderr: t.Stderr,
	}
	slog.Info("executing hyperfine", "benchmarks", len(inv.Commands), "command", spec.CommandLine())

	if _, err := t.runner.Run(ctx, spec); err != nil {
		if errors.Is(err, process.ErrExecutableNotFound) {
			return fmt.Errorf("%w: %w", ErrNotInstalled, err)
		}
		return fmt.Errorf("hyperfine exited with non-zero code: %w", err)
	}
	return nil
}
