// Package resolver turns the declared revisions of a configuration into
// concrete commits.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spachava753/revbench/internal/config"
	"github.com/spachava753/revbench/internal/models"
	"github.com/spachava753/revbench/internal/tooling"
)

// ErrResolveRevision wraps every failure to resolve a revision.
var ErrResolveRevision = errors.New("failed to resolve revision")

// Resolver resolves revisions through a version control collaborator.
type Resolver struct {
	vcs tooling.RefResolver
}

// New creates a Resolver.
func New(vcs tooling.RefResolver) *Resolver {
	return &Resolver{vcs: vcs}
}

// ResolveAll resolves every revision of cfg, one at a time and in
// declaration order. The first failure aborts the whole resolution.
func (r *Resolver) ResolveAll(ctx context.Context, cfg *config.Configuration, repoPath string) ([]models.ResolvedRevision, error) {
	keys := cfg.RevisionKeys()
	resolved := make([]models.ResolvedRevision, 0, len(keys))
	for _, key := range keys {
		rev, err := cfg.Revision(key)
		if err != nil {
			return nil, fmt.Errorf("%w '%s': %w", ErrResolveRevision, key, err)
		}
		hash, err := r.resolve(ctx, rev, repoPath)
		if err != nil {
			return nil, fmt.Errorf("%w '%s': %w", ErrResolveRevision, key, err)
		}
		slog.Info("resolved revision", "revision", key, "name", rev.Name(), "commit", hash)
		resolved = append(resolved, models.ResolvedRevision{Key: key, Name: rev.Name(), CommitHash: hash})
	}
	return resolved, nil
}

func (r *Resolver) resolve(ctx context.Context, rev config.Revision, repoPath string) (string, error) {
	var (
		hash string
		err  error
	)
	switch rev.Kind() {
	case config.RevisionDirect:
		ref, _ := rev.GitReference()
		slog.Debug("resolving reference", "revision", rev.Key(), "ref", ref)
		hash, err = r.vcs.ResolveRef(ctx, repoPath, ref)
	case config.RevisionMergeBase:
		from, target, _ := rev.MergeBase()
		slog.Debug("resolving merge base", "revision", rev.Key(), "target", target, "from", from)
		hash, err = r.vcs.MergeBase(ctx, repoPath, target, from)
	default:
		return "", fmt.Errorf("unknown revision kind %q", rev.Kind())
	}
	if err != nil {
		return "", err
	}
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return "", errors.New("empty commit hash")
	}
	return hash, nil
}
