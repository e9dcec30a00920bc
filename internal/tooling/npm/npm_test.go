package npm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spachava753/revbench/internal/tooling/process"
)

type fakeRunner struct {
	specs []process.Spec
	err   error
}

func (f *fakeRunner) Run(_ context.Context, spec process.Spec) (string, error) {
	f.specs = append(f.specs, spec)
	return "", f.err
}

func TestInstall(t *testing.T) {
	r := &fakeRunner{}
	require.NoError(t, NewClient(r, "").Install(context.Background(), "/repo"))
	require.Len(t, r.specs, 1)
	assert.Equal(t, process.Spec{Name: "npm", Args: []string{"ci"}, Dir: "/repo"}, r.specs[0])
}

func TestInstallFailure(t *testing.T) {
	cause := &process.ExitError{Command: "npm", Code: 1, Stderr: "lockfile out of date"}
	err := NewClient(&fakeRunner{err: cause}, "/usr/bin/npm").Install(context.Background(), "/repo")
	require.Error(t, err)
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "npm ci failed")
	assert.Contains(t, err.Error(), "lockfile out of date")
}
