package executor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spachava753/revbench/internal/executor"
)

func TestWorkspaceAcquire(t *testing.T) {
	ws := executor.NewWorkspace("/repo", &fakeVCS{}, &fakePM{})

	release, err := ws.Acquire()
	require.NoError(t, err)

	_, err = ws.Acquire()
	assert.ErrorIs(t, err, executor.ErrWorkspaceBusy)

	release()
	release()

	release, err = ws.Acquire()
	require.NoError(t, err)
	release()
}

func TestWorkspaceCheckout(t *testing.T) {
	vcs := &fakeVCS{badCommit: "bad"}
	ws := executor.NewWorkspace("/repo", vcs, &fakePM{})
	ctx := context.Background()

	assert.Equal(t, "/repo", ws.Path())
	assert.Empty(t, ws.Current())

	require.NoError(t, ws.Checkout(ctx, "abc"))
	assert.Equal(t, "abc", ws.Current())

	err := ws.Checkout(ctx, "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checking out bad")
	assert.Equal(t, "abc", ws.Current())
	assert.Equal(t, []string{"abc", "bad"}, vcs.Checkouts())
}

func TestWorkspaceInstall(t *testing.T) {
	pm := &fakePM{}
	ws := executor.NewWorkspace("/repo", &fakeVCS{}, pm)
	require.NoError(t, ws.Install(context.Background()))
	assert.Equal(t, 1, pm.installs)
}
