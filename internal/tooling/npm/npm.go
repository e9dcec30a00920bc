// Package npm implements the package manager capability with npm.
package npm

import (
	"context"
	"fmt"

	"github.com/spachava753/revbench/internal/tooling"
	"github.com/spachava753/revbench/internal/tooling/process"
)

var _ tooling.PackageManager = (*Client)(nil)

// Client installs dependencies with npm ci.
type Client struct {
	runner process.Runner
	binary string
}

// NewClient creates a Client. An empty binary defaults to "npm".
func NewClient(runner process.Runner, binary string) *Client {
	if binary == "" {
		binary = "npm"
	}
	return &Client{runner: runner, binary: binary}
}

// Install runs a clean install from the lockfile in repoPath.
func (c *Client) Install(ctx context.Context, repoPath string) error {
	if _, err := c.runner.Run(ctx, process.Spec{Name: c.binary, Args: []string{"ci"}, Dir: repoPath}); err != nil {
		return fmt.Errorf("npm ci failed: %w", err)
	}
	return nil
}
