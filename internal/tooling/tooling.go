// Package tooling declares the capabilities the benchmark pipeline needs from
// external programs. Concrete implementations live in the sub-packages.
package tooling

import "context"

// RefResolver turns symbolic references into commit hashes.
type RefResolver interface {
	// ResolveRef returns the commit hash a branch, tag or commit resolves to.
	ResolveRef(ctx context.Context, repoPath, ref string) (string, error)

	// MergeBase returns the best common ancestor of target and from.
	MergeBase(ctx context.Context, repoPath, target, from string) (string, error)
}

// VCS is the version control capability of the repository under test.
type VCS interface {
	RefResolver

	// IsClean reports whether the working tree has no uncommitted changes.
	IsClean(ctx context.Context, repoPath string) (bool, error)

	// Checkout switches the working tree to commit.
	Checkout(ctx context.Context, repoPath, commit string) error

	// HeadRevision returns the HEAD commit of dir. It fails when dir is not
	// inside a repository.
	HeadRevision(ctx context.Context, dir string) (string, error)
}

// PackageManager installs the dependencies of a checked out repository.
type PackageManager interface {
	Install(ctx context.Context, repoPath string) error
}

// TimedCommand is one benchmark handed to the timing tool.
type TimedCommand struct {
	// Name is the label the tool reports the command under.
	Name string
	// Prepare runs before every timed execution. Empty means none.
	Prepare string
	// Command is the shell command line that is measured.
	Command string
}

// TimingInvocation describes a single timing tool run covering every
// benchmark of one revision.
type TimingInvocation struct {
	Dir        string
	Env        []string
	Warmup     int
	Runs       int
	Commands   []TimedCommand
	ExportPath string
}

// TimingTool measures commands and exports the raw results as JSON.
type TimingTool interface {
	Run(ctx context.Context, inv TimingInvocation) error
}
