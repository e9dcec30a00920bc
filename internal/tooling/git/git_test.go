package git

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spachava753/revbench/internal/tooling/process"
)

type fakeRunner struct {
	specs []process.Spec
	out   string
	err   error
}

func (f *fakeRunner) Run(_ context.Context, spec process.Spec) (string, error) {
	f.specs = append(f.specs, spec)
	return f.out, f.err
}

func TestClientCommands(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		call func(c *Client) error
		want []string
	}{
		{
			name: "resolve ref",
			call: func(c *Client) error { _, err := c.ResolveRef(ctx, "/repo", "main"); return err },
			want: []string{"rev-parse", "--verify", "main^{commit}"},
		},
		{
			name: "merge base",
			call: func(c *Client) error { _, err := c.MergeBase(ctx, "/repo", "main", "feature"); return err },
			want: []string{"merge-base", "main", "feature"},
		},
		{
			name: "status",
			call: func(c *Client) error { _, err := c.IsClean(ctx, "/repo"); return err },
			want: []string{"status", "--porcelain"},
		},
		{
			name: "checkout",
			call: func(c *Client) error { return c.Checkout(ctx, "/repo", "abc123") },
			want: []string{"checkout", "--quiet", "abc123"},
		},
		{
			name: "head",
			call: func(c *Client) error { _, err := c.HeadRevision(ctx, "/repo"); return err },
			want: []string{"rev-parse", "HEAD"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRunner{}
			c := NewClient(r, "")
			require.NoError(t, tt.call(c))
			require.Len(t, r.specs, 1)
			assert.Equal(t, "git", r.specs[0].Name)
			assert.Equal(t, "/repo", r.specs[0].Dir)
			assert.Equal(t, tt.want, r.specs[0].Args)
		})
	}
}

func TestIsClean(t *testing.T) {
	ctx := context.Background()

	clean, err := NewClient(&fakeRunner{out: ""}, "git").IsClean(ctx, "/repo")
	require.NoError(t, err)
	assert.True(t, clean)

	clean, err = NewClient(&fakeRunner{out: " M package.json"}, "git").IsClean(ctx, "/repo")
	require.NoError(t, err)
	assert.False(t, clean)
}

func TestClientWrapsErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewClient(&fakeRunner{err: boom}, "git").MergeBase(context.Background(), "/repo", "main", "x")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "git merge-base failed")
}

// TestClientIntegration runs against a real repository.
// This test is skipped with -short flag.
func TestClientIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	ctx := context.Background()
	dir := t.TempDir()
	runner := process.NewLocal()
	sh := func(args ...string) string {
		t.Helper()
		out, err := runner.Run(ctx, process.Spec{
			Name: "git",
			Args: args,
			Dir:  dir,
			Env: []string{
				"GIT_AUTHOR_NAME=revbench", "GIT_AUTHOR_EMAIL=revbench@example.com",
				"GIT_COMMITTER_NAME=revbench", "GIT_COMMITTER_EMAIL=revbench@example.com",
			},
		})
		require.NoError(t, err)
		return out
	}

	sh("init", "--quiet", "--initial-branch=main")
	sh("commit", "--quiet", "--allow-empty", "-m", "root")
	root := sh("rev-parse", "HEAD")
	sh("checkout", "--quiet", "-b", "feature")
	sh("commit", "--quiet", "--allow-empty", "-m", "feature work")
	feature := sh("rev-parse", "HEAD")
	sh("checkout", "--quiet", "main")
	sh("commit", "--quiet", "--allow-empty", "-m", "main work")

	c := NewClient(runner, "git")

	got, err := c.ResolveRef(ctx, dir, "feature")
	require.NoError(t, err)
	assert.Equal(t, feature, got)

	base, err := c.MergeBase(ctx, dir, "main", "feature")
	require.NoError(t, err)
	assert.Equal(t, root, base)

	_, err = c.ResolveRef(ctx, dir, "does-not-exist")
	assert.Error(t, err)

	clean, err := c.IsClean(ctx, dir)
	require.NoError(t, err)
	assert.True(t, clean)

	require.NoError(t, c.Checkout(ctx, dir, root))
	head, err := c.HeadRevision(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, root, head)

	_, err = c.HeadRevision(ctx, t.TempDir())
	assert.Error(t, err)
}
