package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/spachava753/revbench/internal/tooling"
)

// ErrWorkspaceBusy is returned when the workspace is already held.
var ErrWorkspaceBusy = errors.New("repository workspace is in use by another run")

// Workspace owns the working tree of the repository under test. Only one
// holder may check out and install at a time, since each revision mutates
// the same tree.
type Workspace struct {
	path string
	vcs  tooling.VCS
	pm   tooling.PackageManager

	held sync.Mutex

	mu      sync.Mutex
	current string
}

// NewWorkspace creates a Workspace for the repository at path.
func NewWorkspace(path string, vcs tooling.VCS, pm tooling.PackageManager) *Workspace {
	return &Workspace{path: path, vcs: vcs, pm: pm}
}

// Path returns the repository path.
func (w *Workspace) Path() string { return w.path }

// Current returns the commit most recently checked out through the
// workspace, or "" if none was.
func (w *Workspace) Current() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Acquire takes exclusive ownership of the workspace without waiting.
// The returned function releases it.
func (w *Workspace) Acquire() (release func(), err error) {
	if !w.held.TryLock() {
		return nil, ErrWorkspaceBusy
	}
	var once sync.Once
	return func() { once.Do(w.held.Unlock) }, nil
}

// Checkout switches the tree to commit. The caller must hold the workspace.
func (w *Workspace) Checkout(ctx context.Context, commit string) error {
	slog.Info("checking out revision", "repository", w.path, "commit", commit)
	if err := w.vcs.Checkout(ctx, w.path, commit); err != nil {
		return fmt.Errorf("checking out %s: %w", commit, err)
	}
	w.mu.Lock()
	w.current = commit
	w.mu.Unlock()
	return nil
}

// Install installs dependencies for the current checkout. The caller must
// hold the workspace.
func (w *Workspace) Install(ctx context.Context) error {
	slog.Info("installing dependencies", "repository", w.path)
	if err := w.pm.Install(ctx, w.path); err != nil {
		return fmt.Errorf("installing dependencies: %w", err)
	}
	return nil
}
