package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spachava753/revbench/internal/aggregate"
	"github.com/spachava753/revbench/internal/config"
	"github.com/spachava753/revbench/internal/models"
	"github.com/spachava753/revbench/internal/planner"
	"github.com/spachava753/revbench/internal/report"
	"github.com/spachava753/revbench/internal/resolver"
	"github.com/spachava753/revbench/internal/tooling"
	"github.com/spachava753/revbench/internal/util"
)

// ErrDirtyRepository is returned when the repository under test has
// uncommitted changes. Checking out revisions would destroy them.
var ErrDirtyRepository = errors.New("repository has uncommitted changes")

// errCancelled marks revisions that were never started because the run was
// interrupted.
var errCancelled = errors.New("run cancelled before this revision started")

// ReportWriter persists the reports of one project.
type ReportWriter interface {
	Write(ctx context.Context, dir string, doc report.Document) ([]string, error)
}

// RunOptions select what a run benchmarks.
type RunOptions struct {
	ConfigPath string
	// ProjectDirs are benchmarked one after another. Empty means the
	// current working directory.
	ProjectDirs []string
}

// Runner drives a whole benchmark run: it validates the repository, loads
// the configuration, resolves and plans revisions and then executes,
// aggregates and reports every project directory.
type Runner struct {
	settings config.Settings
	vcs      tooling.VCS
	pm       tooling.PackageManager
	timing   tooling.TimingTool

	reports ReportWriter
	files   aggregate.Files
	out     io.Writer
	now     func() time.Time
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithReportWriter replaces the report writer derived from the settings.
func WithReportWriter(w ReportWriter) RunnerOption {
	return func(r *Runner) { r.reports = w }
}

// WithFiles replaces the filesystem result files are read from.
func WithFiles(f aggregate.Files) RunnerOption {
	return func(r *Runner) { r.files = f }
}

// WithOutput sets where progress banners and the plan summary are printed.
func WithOutput(w io.Writer) RunnerOption {
	return func(r *Runner) { r.out = w }
}

// WithClock sets the source of the run timestamp.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

// NewRunner creates a Runner.
func NewRunner(settings config.Settings, vcs tooling.VCS, pm tooling.PackageManager, timing tooling.TimingTool, opts ...RunnerOption) *Runner {
	r := &Runner{
		settings: settings,
		vcs:      vcs,
		pm:       pm,
		timing:   timing,
		reports:  report.NewWriter(settings.ReportFormats),
		files:    aggregate.OSFiles{},
		out:      os.Stdout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// PlanOnly loads the configuration, resolves its revisions and returns the
// plan without running anything.
func (r *Runner) PlanOnly(ctx context.Context, configPath string) (*models.ExecutionPlan, error) {
	_, plan, err := r.prepare(ctx, configPath)
	return plan, err
}

// Run executes a full benchmark run. Configuration, resolution and
// precondition failures are returned as errors. Revision failures are
// collected in the result and never abort the run.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (*models.RunResult, error) {
	startTime := r.now()
	r.banner("Benchmark Run")

	repo := r.settings.RepositoryPath
	fmt.Fprintf(r.out, "Checking repository status: %s\n", repo)
	clean, err := r.vcs.IsClean(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("checking repository status: %w", err)
	}
	if !clean {
		return nil, ErrDirtyRepository
	}
	fmt.Fprintf(r.out, "✓ Repository is clean\n\n")

	cfg, plan, err := r.prepare(ctx, opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(r.out, planner.Summary(plan, r.settings.CLIName))

	dirs := opts.ProjectDirs
	if len(dirs) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		dirs = []string{wd}
	}

	result := &models.RunResult{
		RunID:     uuid.NewString(),
		Failures:  []models.FailureInfo{},
		Projects:  make([]models.ProjectResult, 0, len(dirs)),
		StartedAt: startTime,
	}

	ws := NewWorkspace(repo, r.vcs, r.pm)
	revExec := NewRevisionExecutor(ws, r.timing, CLIOptions{
		Runner: r.settings.CLIRunner,
		Path:   r.settings.CLIAbsPath(),
		Env:    r.settings.ToolEnv,
	})

	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run cancelled: %w", err)
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("resolving project directory %s: %w", dir, err)
		}
		r.banner("Benchmarking project: " + abs)

		pr, err := r.runProject(ctx, cfg, plan, revExec, result.RunID, startTime, abs)
		if err != nil {
			return nil, err
		}
		result.Projects = append(result.Projects, *pr)
		result.Failures = append(result.Failures, pr.Results.Failures...)
	}

	result.Success = len(result.Failures) == 0
	result.EndedAt = r.now()
	result.TotalDurationSec = result.EndedAt.Sub(result.StartedAt).Seconds()

	fmt.Fprintln(r.out, "\n"+strings.Repeat("=", 80))
	if result.Success {
		fmt.Fprintln(r.out, "✅ All benchmarks completed successfully!")
	} else {
		fmt.Fprintf(r.out, "⚠️ Completed with %d failure(s)\n", len(result.Failures))
	}
	fmt.Fprintln(r.out, strings.Repeat("=", 80))

	return result, nil
}

func (r *Runner) prepare(ctx context.Context, configPath string) (*config.Configuration, *models.ExecutionPlan, error) {
	fmt.Fprintf(r.out, "Loading configuration from: %s\n", configPath)
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, nil, err
	}
	fmt.Fprintf(r.out, "✓ Configuration loaded successfully\n\n")

	fmt.Fprintln(r.out, "Resolving revisions...")
	resolved, err := resolver.New(r.vcs).ResolveAll(ctx, cfg, r.settings.RepositoryPath)
	if err != nil {
		return nil, nil, err
	}
	for _, rev := range resolved {
		fmt.Fprintf(r.out, "  %s (%s): %s\n", rev.Name, rev.Key, rev.CommitHash)
	}
	fmt.Fprintf(r.out, "✓ Resolved %d revision(s)\n\n", len(resolved))

	return cfg, planner.Plan(cfg, resolved), nil
}

func (r *Runner) runProject(ctx context.Context, cfg *config.Configuration, plan *models.ExecutionPlan, revExec *RevisionExecutor, runID string, ts time.Time, dir string) (*models.ProjectResult, error) {
	log := slog.With("project", dir)

	projectRevision, err := r.vcs.HeadRevision(ctx, dir)
	if err != nil {
		log.Debug("project revision unavailable", "error", err)
		projectRevision = ""
		fmt.Fprintf(r.out, "Project is not a git repository\n\n")
	} else {
		fmt.Fprintf(r.out, "Project Git Revision: %s\n\n", projectRevision)
	}

	slug, err := util.ProjectSlug(dir)
	if err != nil {
		return nil, err
	}
	namespace := r.settings.ResultPrefix + "-" + slug

	outcomes := make(map[string]models.ExecutionOutcome, len(plan.Revisions))
	for _, rp := range plan.Revisions {
		if ctx.Err() != nil {
			outcomes[rp.RevisionKey] = models.ExecutionOutcome{
				Err: models.NewRevisionError(models.ErrInternalError, errCancelled),
			}
			continue
		}
		fmt.Fprintf(r.out, "\n=== Running benchmarks for %s (%s): %s ===\n\n", rp.Name, rp.RevisionKey, rp.CommitHash)
		outcomes[rp.RevisionKey] = revExec.Run(ctx, RevisionRequest{
			Plan:       rp,
			Warmup:     cfg.Warmup(),
			Runs:       cfg.Runs(),
			ProjectDir: dir,
			Namespace:  namespace,
		})
	}

	log.Info("aggregating results")
	results := aggregate.New(r.files).Aggregate(cfg, plan, outcomes)

	// Each project gets its own subdirectory of a shared report directory.
	reportDir := dir
	if r.settings.ReportDir != "" {
		reportDir = filepath.Join(r.settings.ReportDir, slug)
		if err := os.MkdirAll(reportDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating report directory: %w", err)
		}
	}
	doc := report.Document{
		RunID:           runID,
		Timestamp:       ts,
		ProjectDir:      dir,
		ProjectRevision: projectRevision,
		Results:         results,
	}
	// Partial results of an interrupted run are still written.
	paths, err := r.reports.Write(context.WithoutCancel(ctx), reportDir, doc)
	if err != nil {
		return nil, fmt.Errorf("writing reports for %s: %w", dir, err)
	}
	for _, p := range paths {
		fmt.Fprintf(r.out, "  ✓ Report: %s\n", p)
	}

	return &models.ProjectResult{
		Directory:       dir,
		ProjectRevision: projectRevision,
		Results:         results,
		Reports:         paths,
	}, nil
}

func (r *Runner) banner(title string) {
	line := strings.Repeat("=", 80)
	fmt.Fprintf(r.out, "%s\n%s\n%s\n\n", line, title, line)
}
