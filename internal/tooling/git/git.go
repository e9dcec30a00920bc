// Package git implements the version control capability with the git CLI.
package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/spachava753/revbench/internal/tooling"
	"github.com/spachava753/revbench/internal/tooling/process"
)

var _ tooling.VCS = (*Client)(nil)

// Client runs git commands through a process runner.
type Client struct {
	runner process.Runner
	binary string
}

// NewClient creates a Client. An empty binary defaults to "git".
func NewClient(runner process.Runner, binary string) *Client {
	if binary == "" {
		binary = "git"
	}
	return &Client{runner: runner, binary: binary}
}

func (c *Client) run(ctx context.Context, dir, name string, args ...string) (string, error) {
	out, err := c.runner.Run(ctx, process.Spec{Name: c.binary, Args: args, Dir: dir})
	if err != nil {
		return "", fmt.Errorf("git %s failed: %w", name, err)
	}
	return out, nil
}

// ResolveRef resolves ref with git rev-parse.
func (c *Client) ResolveRef(ctx context.Context, repoPath, ref string) (string, error) {
	return c.run(ctx, repoPath, "rev-parse", "rev-parse", "--verify", ref+"^{commit}")
}

// MergeBase returns git merge-base target from.
func (c *Client) MergeBase(ctx context.Context, repoPath, target, from string) (string, error) {
	return c.run(ctx, repoPath, "merge-base", "merge-base", target, from)
}

// IsClean reports whether git status --porcelain is empty.
func (c *Client) IsClean(ctx context.Context, repoPath string) (bool, error) {
	out, err := c.run(ctx, repoPath, "status", "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) == "", nil
}

// Checkout checks out commit, leaving the repository on a detached HEAD.
func (c *Client) Checkout(ctx context.Context, repoPath, commit string) error {
	_, err := c.run(ctx, repoPath, "checkout", "checkout", "--quiet", commit)
	return err
}

// HeadRevision returns the HEAD commit of dir.
func (c *Client) HeadRevision(ctx context.Context, dir string) (string, error) {
	return c.run(ctx, dir, "rev-parse", "rev-parse", "HEAD")
}
