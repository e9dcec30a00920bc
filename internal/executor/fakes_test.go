package executor_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/spachava753/revbench/internal/models"
	"github.com/spachava753/revbench/internal/tooling"
)

type fakeVCS struct {
	mu sync.Mutex

	dirty     bool
	refs      map[string]string
	bases     map[string]string
	heads     map[string]string
	badCommit string

	checkouts []string
}

func (f *fakeVCS) ResolveRef(_ context.Context, _, ref string) (string, error) {
	if h, ok := f.refs[ref]; ok {
		return h, nil
	}
	return "", fmt.Errorf("unknown ref %s", ref)
}

func (f *fakeVCS) MergeBase(_ context.Context, _, target, from string) (string, error) {
	if h, ok := f.bases[target+"..."+from]; ok {
		return h, nil
	}
	return "", errors.New("no merge base")
}

func (f *fakeVCS) IsClean(context.Context, string) (bool, error) {
	return !f.dirty, nil
}

func (f *fakeVCS) Checkout(_ context.Context, _, commit string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkouts = append(f.checkouts, commit)
	if commit == f.badCommit {
		return fmt.Errorf("git checkout failed: reference is not a tree: %s", commit)
	}
	return nil
}

func (f *fakeVCS) HeadRevision(_ context.Context, dir string) (string, error) {
	if h, ok := f.heads[dir]; ok {
		return h, nil
	}
	return "", errors.New("not a git repository")
}

func (f *fakeVCS) Checkouts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.checkouts)
}

type fakePM struct {
	installs int
	err      error
}

func (f *fakePM) Install(context.Context, string) error {
	f.installs++
	return f.err
}

// fakeTiming records invocations. Unless run is set it exports one result
// per command, labelled with the command name.
type fakeTiming struct {
	invocations []tooling.TimingInvocation
	run         func(inv tooling.TimingInvocation) error
}

func (f *fakeTiming) Run(_ context.Context, inv tooling.TimingInvocation) error {
	f.invocations = append(f.invocations, inv)
	if f.run != nil {
		return f.run(inv)
	}
	return exportResults(inv)
}

func exportResults(inv tooling.TimingInvocation) error {
	var export models.TimingExport
	for i, c := range inv.Commands {
		mean := 1.0 + float64(i)
		sd := 0.1
		export.Results = append(export.Results, models.TimingResult{
			Command: c.Name,
			Mean:    mean,
			Stddev:  &sd,
			Median:  mean,
			Min:     mean - 0.1,
			Max:     mean + 0.1,
			Times:   []float64{mean - 0.1, mean, mean + 0.1},
		})
	}
	data, err := json.Marshal(export)
	if err != nil {
		return err
	}
	return os.WriteFile(inv.ExportPath, data, 0o644)
}
