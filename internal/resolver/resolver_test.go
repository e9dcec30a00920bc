package resolver_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spachava753/revbench/internal/config"
	"github.com/spachava753/revbench/internal/models"
	"github.com/spachava753/revbench/internal/resolver"
)

type call struct {
	op   string
	args []string
}

type fakeVCS struct {
	calls  []call
	refs   map[string]string
	bases  map[string]string
	failOn string
}

func (f *fakeVCS) ResolveRef(_ context.Context, repo, ref string) (string, error) {
	f.calls = append(f.calls, call{"rev-parse", []string{repo, ref}})
	if ref == f.failOn {
		return "", errors.New("unknown revision")
	}
	return f.refs[ref], nil
}

func (f *fakeVCS) MergeBase(_ context.Context, repo, target, from string) (string, error) {
	f.calls = append(f.calls, call{"merge-base", []string{repo, target, from}})
	if from == f.failOn {
		return "", errors.New("no merge base")
	}
	return f.bases[target+"..."+from], nil
}

func loadConfig(t *testing.T, doc string) *config.Configuration {
	t.Helper()
	cfg, err := config.LoadBytes([]byte(doc), config.FormatYAML)
	require.NoError(t, err)
	return cfg
}

const twoRevisions = `hyperfine: {warmup: 0, runs: 1}
revisions:
  baseline:
    name: Baseline
    revision:
      merge_base_from: feature
      target_branch: main
  current:
    name: Current
    revision: HEAD
groups:
  g: {name: G}
benchmarks:
  - command: build
    groups:
      g: {name: build}
`

func TestResolveAll(t *testing.T) {
	vcs := &fakeVCS{
		refs:  map[string]string{"HEAD": "cccc\n"},
		bases: map[string]string{"main...feature": "bbbb"},
	}
	got, err := resolver.New(vcs).ResolveAll(context.Background(), loadConfig(t, twoRevisions), "/repo")
	require.NoError(t, err)

	assert.Equal(t, []models.ResolvedRevision{
		{Key: "baseline", Name: "Baseline", CommitHash: "bbbb"},
		{Key: "current", Name: "Current", CommitHash: "cccc"},
	}, got)
	assert.Equal(t, []call{
		{"merge-base", []string{"/repo", "main", "feature"}},
		{"rev-parse", []string{"/repo", "HEAD"}},
	}, vcs.calls)
}

func TestResolveAllFailure(t *testing.T) {
	vcs := &fakeVCS{
		refs:   map[string]string{"HEAD": "cccc"},
		failOn: "feature",
	}
	got, err := resolver.New(vcs).ResolveAll(context.Background(), loadConfig(t, twoRevisions), "/repo")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.ErrorIs(t, err, resolver.ErrResolveRevision)
	assert.Contains(t, err.Error(), "'baseline'")
	assert.Len(t, vcs.calls, 1, "resolution stops at the first failure")
}

func TestResolveAllEmptyHash(t *testing.T) {
	vcs := &fakeVCS{
		refs:  map[string]string{"HEAD": "  "},
		bases: map[string]string{"main...feature": "bbbb"},
	}
	_, err := resolver.New(vcs).ResolveAll(context.Background(), loadConfig(t, twoRevisions), "/repo")
	require.Error(t, err)
	assert.ErrorIs(t, err, resolver.ErrResolveRevision)
	assert.Contains(t, err.Error(), "'current'")
	assert.Contains(t, err.Error(), "empty commit hash")
}
