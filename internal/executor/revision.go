package executor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kballard/go-shellquote"

	"github.com/spachava753/revbench/internal/models"
	"github.com/spachava753/revbench/internal/tooling"
	"github.com/spachava753/revbench/internal/tooling/hyperfine"
	"github.com/spachava753/revbench/internal/tooling/process"
	"github.com/spachava753/revbench/internal/util"
)

// CLIOptions describe how the command under test is launched.
type CLIOptions struct {
	// Runner is the interpreter that starts the CLI, e.g. "node".
	Runner string
	// Path is the absolute path of the CLI entry point.
	Path string
	// Env is added to the timing tool's environment.
	Env []string
}

// RevisionRequest is the work for one revision in one project directory.
type RevisionRequest struct {
	Plan   models.RevisionPlan
	Warmup int
	Runs   int
	// ProjectDir is where the benchmarks run and the result file is written.
	ProjectDir string
	// Namespace prefixes the result file name so that different projects
	// never share a result file.
	Namespace string
}

// RevisionExecutor runs the benchmarks of one revision with a single timing
// tool invocation.
type RevisionExecutor struct {
	workspace *Workspace
	timing    tooling.TimingTool
	cli       CLIOptions
}

// NewRevisionExecutor creates a RevisionExecutor.
func NewRevisionExecutor(ws *Workspace, timing tooling.TimingTool, cli CLIOptions) *RevisionExecutor {
	return &RevisionExecutor{workspace: ws, timing: timing, cli: cli}
}

// ResultPath returns the file the timing tool exports a revision's results
// to. The revision key is reduced to file name characters.
func ResultPath(projectDir, namespace, revisionKey, commitHash string) string {
	name := fmt.Sprintf("%s-%s-%s.json", namespace, util.SafeName(revisionKey), commitHash)
	return filepath.Join(projectDir, name)
}

// CommandLine returns the shell command measured for a benchmark command.
func (e *RevisionExecutor) CommandLine(command string) string {
	return shellquote.Join(e.cli.Runner, e.cli.Path) + " " + command
}

// Run executes req. Failures are reported in the outcome, never returned,
// so that the remaining revisions can still run.
func (e *RevisionExecutor) Run(ctx context.Context, req RevisionRequest) models.ExecutionOutcome {
	plan := req.Plan
	log := slog.With("revision", plan.RevisionKey, "name", plan.Name, "commit", plan.CommitHash)

	if len(plan.Benchmarks) == 0 {
		log.Info("no benchmarks to run for this revision")
		return models.ExecutionOutcome{Success: true}
	}

	release, err := e.workspace.Acquire()
	if err != nil {
		return fail(log, models.ErrWorkspaceBusy, err)
	}
	defer release()

	if err := e.workspace.Checkout(ctx, plan.CommitHash); err != nil {
		return fail(log, models.ErrCheckoutFailed, err)
	}
	if err := e.workspace.Install(ctx); err != nil {
		return fail(log, models.ErrInstallFailed, err)
	}

	resultPath := ResultPath(req.ProjectDir, req.Namespace, plan.RevisionKey, plan.CommitHash)
	if err := os.Remove(resultPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fail(log, models.ErrInternalError, fmt.Errorf("removing stale result file: %w", err))
	}

	inv := tooling.TimingInvocation{
		Dir:        req.ProjectDir,
		Env:        e.cli.Env,
		Warmup:     req.Warmup,
		Runs:       req.Runs,
		Commands:   make([]tooling.TimedCommand, 0, len(plan.Benchmarks)),
		ExportPath: resultPath,
	}
	for _, b := range plan.Benchmarks {
		inv.Commands = append(inv.Commands, tooling.TimedCommand{
			Name:    plan.CommandLabel(b),
			Prepare: b.Prepare,
			Command: e.CommandLine(b.Command),
		})
	}

	if err := e.timing.Run(ctx, inv); err != nil {
		if errors.Is(err, hyperfine.ErrNotInstalled) || errors.Is(err, process.ErrExecutableNotFound) {
			return fail(log, models.ErrTimingToolMissing, hyperfine.ErrNotInstalled)
		}
		return fail(log, models.ErrTimingToolFailed, err)
	}

	log.Info("benchmarks completed", "benchmarks", len(plan.Benchmarks), "result_file", resultPath)
	return models.ExecutionOutcome{Success: true, ResultFilePath: resultPath}
}

func fail(log *slog.Logger, t models.ErrorType, err error) models.ExecutionOutcome {
	log.Error("benchmarks failed", "error_type", t, "error", err)
	return models.ExecutionOutcome{Err: models.NewRevisionError(t, err)}
}
