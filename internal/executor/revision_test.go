package executor_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spachava753/revbench/internal/executor"
	"github.com/spachava753/revbench/internal/models"
	"github.com/spachava753/revbench/internal/tooling"
	"github.com/spachava753/revbench/internal/tooling/hyperfine"
	"github.com/spachava753/revbench/internal/tooling/process"
)

var cli = executor.CLIOptions{
	Runner: "node",
	Path:   "/repo/packages/cli/bin/ui5.cjs",
	Env:    []string{"UI5_CLI_NO_LOCAL=X"},
}

func currentPlan() models.RevisionPlan {
	return models.RevisionPlan{
		RevisionKey: "current",
		Name:        "Current",
		CommitHash:  "c0ffee",
		Benchmarks: []models.BenchmarkExecution{
			{Index: 0, Command: "build", GroupMemberships: []models.GroupMembership{{GroupKey: "build", DisplayName: "ui5 build"}}},
			{Index: 2, Command: "serve --port 0", Prepare: "rm -rf .cache", GroupMemberships: []models.GroupMembership{{GroupKey: "serve", DisplayName: "serve"}}},
		},
	}
}

type harness struct {
	vcs    *fakeVCS
	pm     *fakePM
	timing *fakeTiming
	ws     *executor.Workspace
	exec   *executor.RevisionExecutor
	dir    string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{vcs: &fakeVCS{}, pm: &fakePM{}, timing: &fakeTiming{}, dir: t.TempDir()}
	h.ws = executor.NewWorkspace("/repo", h.vcs, h.pm)
	h.exec = executor.NewRevisionExecutor(h.ws, h.timing, cli)
	return h
}

func (h *harness) run(plan models.RevisionPlan) models.ExecutionOutcome {
	return h.exec.Run(context.Background(), executor.RevisionRequest{
		Plan:       plan,
		Warmup:     2,
		Runs:       5,
		ProjectDir: h.dir,
		Namespace:  "benchmark-results-app-0011",
	})
}

func TestRevisionExecutorRun(t *testing.T) {
	h := newHarness(t)

	outcome := h.run(currentPlan())
	require.Nil(t, outcome.Err)
	assert.True(t, outcome.Success)

	wantPath := filepath.Join(h.dir, "benchmark-results-app-0011-current-c0ffee.json")
	assert.Equal(t, wantPath, outcome.ResultFilePath)
	assert.FileExists(t, wantPath)

	assert.Equal(t, []string{"c0ffee"}, h.vcs.Checkouts())
	assert.Equal(t, "c0ffee", h.ws.Current())
	assert.Equal(t, 1, h.pm.installs)

	require.Len(t, h.timing.invocations, 1)
	inv := h.timing.invocations[0]
	assert.Equal(t, h.dir, inv.Dir)
	assert.Equal(t, []string{"UI5_CLI_NO_LOCAL=X"}, inv.Env)
	assert.Equal(t, 2, inv.Warmup)
	assert.Equal(t, 5, inv.Runs)
	assert.Equal(t, wantPath, inv.ExportPath)
	assert.Equal(t, []tooling.TimedCommand{
		{Name: "Current (current): ui5 build #0", Command: "node /repo/packages/cli/bin/ui5.cjs build"},
		{Name: "Current (current): serve #2", Prepare: "rm -rf .cache", Command: "node /repo/packages/cli/bin/ui5.cjs serve --port 0"},
	}, inv.Commands)
}

func TestRevisionExecutorEmptyPlan(t *testing.T) {
	h := newHarness(t)
	plan := currentPlan()
	plan.Benchmarks = nil

	outcome := h.run(plan)
	assert.Equal(t, models.ExecutionOutcome{Success: true}, outcome)
	assert.Empty(t, h.vcs.Checkouts())
	assert.Zero(t, h.pm.installs)
	assert.Empty(t, h.timing.invocations)
}

func TestRevisionExecutorFailures(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(h *harness)
		wantType    models.ErrorType
		wantMessage string
		wantInstall int
		wantTiming  int
	}{
		{
			name:        "checkout",
			setup:       func(h *harness) { h.vcs.badCommit = "c0ffee" },
			wantType:    models.ErrCheckoutFailed,
			wantMessage: "checking out c0ffee: git checkout failed",
		},
		{
			name:        "install",
			setup:       func(h *harness) { h.pm.err = errors.New("npm ci failed: exit 1") },
			wantType:    models.ErrInstallFailed,
			wantMessage: "installing dependencies: npm ci failed: exit 1",
			wantInstall: 1,
		},
		{
			name: "tool not installed",
			setup: func(h *harness) {
				h.timing.run = func(tooling.TimingInvocation) error {
					return fmt.Errorf("%w: exec: not found", hyperfine.ErrNotInstalled)
				}
			},
			wantType:    models.ErrTimingToolMissing,
			wantMessage: hyperfine.ErrNotInstalled.Error(),
			wantInstall: 1,
			wantTiming:  1,
		},
		{
			name: "tool executable missing",
			setup: func(h *harness) {
				h.timing.run = func(tooling.TimingInvocation) error { return process.ErrExecutableNotFound }
			},
			wantType:    models.ErrTimingToolMissing,
			wantMessage: hyperfine.ErrNotInstalled.Error(),
			wantInstall: 1,
			wantTiming:  1,
		},
		{
			name: "tool failed",
			setup: func(h *harness) {
				h.timing.run = func(tooling.TimingInvocation) error {
					return errors.New("hyperfine exited with non-zero code: exit status 1")
				}
			},
			wantType:    models.ErrTimingToolFailed,
			wantMessage: "hyperfine exited with non-zero code",
			wantInstall: 1,
			wantTiming:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			tt.setup(h)

			outcome := h.run(currentPlan())
			assert.False(t, outcome.Success)
			assert.Empty(t, outcome.ResultFilePath)
			require.NotNil(t, outcome.Err)
			assert.Equal(t, tt.wantType, outcome.Err.Type)
			assert.Contains(t, outcome.Err.Message, tt.wantMessage)
			assert.Equal(t, tt.wantInstall, h.pm.installs)
			assert.Len(t, h.timing.invocations, tt.wantTiming)
		})
	}
}

func TestRevisionExecutorWorkspaceBusy(t *testing.T) {
	h := newHarness(t)
	release, err := h.ws.Acquire()
	require.NoError(t, err)
	defer release()

	outcome := h.run(currentPlan())
	require.NotNil(t, outcome.Err)
	assert.Equal(t, models.ErrWorkspaceBusy, outcome.Err.Type)
	assert.Empty(t, h.vcs.Checkouts())
}

func TestRevisionExecutorRemovesStaleResult(t *testing.T) {
	h := newHarness(t)
	path := executor.ResultPath(h.dir, "benchmark-results-app-0011", "current", "c0ffee")
	require.NoError(t, os.WriteFile(path, []byte(`{"results":[]}`), 0o644))

	var existed bool
	h.timing.run = func(inv tooling.TimingInvocation) error {
		_, err := os.Stat(inv.ExportPath)
		existed = err == nil
		return exportResults(inv)
	}

	outcome := h.run(currentPlan())
	require.Nil(t, outcome.Err)
	assert.False(t, existed)
}

func TestResultPathSanitizesRevisionKey(t *testing.T) {
	dir := t.TempDir()
	path := executor.ResultPath(dir, "benchmark-results-app-0011", "feat/x", "c0ffee")
	assert.Equal(t, filepath.Join(dir, "benchmark-results-app-0011-feat_x-c0ffee.json"), path)
	assert.Equal(t, dir, filepath.Dir(path))

	h := newHarness(t)
	plan := currentPlan()
	plan.RevisionKey = "feat/x"
	outcome := h.run(plan)
	require.Nil(t, outcome.Err)
	assert.Equal(t, filepath.Join(h.dir, "benchmark-results-app-0011-feat_x-c0ffee.json"), outcome.ResultFilePath)
	assert.FileExists(t, outcome.ResultFilePath)
}

func TestCommandLineQuotesCLIPath(t *testing.T) {
	ws := executor.NewWorkspace("/repo", &fakeVCS{}, &fakePM{})
	e := executor.NewRevisionExecutor(ws, &fakeTiming{}, executor.CLIOptions{Runner: "node", Path: "/my repo/ui5.cjs"})
	assert.Equal(t, `node '/my repo/ui5.cjs' build --all`, e.CommandLine("build --all"))
}
