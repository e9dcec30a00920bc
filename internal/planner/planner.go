// Package planner builds the revision by benchmark execution matrix.
package planner

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spachava753/revbench/internal/config"
	"github.com/spachava753/revbench/internal/models"
	"github.com/spachava753/revbench/internal/util"
)

// Plan assigns every benchmark of cfg to the resolved revisions it applies
// to. Revisions keep resolution order; benchmarks keep declaration order.
// A revision may end up with no benchmarks.
func Plan(cfg *config.Configuration, resolved []models.ResolvedRevision) *models.ExecutionPlan {
	plan := &models.ExecutionPlan{Revisions: make([]models.RevisionPlan, len(resolved))}
	for i, rev := range resolved {
		plan.Revisions[i] = models.RevisionPlan{
			RevisionKey: rev.Key,
			Name:        rev.Name,
			CommitHash:  rev.CommitHash,
			Benchmarks:  []models.BenchmarkExecution{},
		}
	}

	for _, spec := range cfg.Benchmarks() {
		for i := range plan.Revisions {
			rp := &plan.Revisions[i]
			if !spec.ShouldRunOnRevision(rp.RevisionKey) {
				continue
			}
			rp.Benchmarks = append(rp.Benchmarks, models.BenchmarkExecution{
				Index:            spec.Index(),
				Command:          spec.Command(),
				Prepare:          spec.Prepare(),
				GroupMemberships: spec.GroupMemberships(),
			})
		}
	}

	for _, rp := range EmptyRevisions(plan) {
		slog.Warn("revision has no benchmarks assigned to it", "revision", rp.RevisionKey, "name", rp.Name)
	}
	return plan
}

// EmptyRevisions returns the revision plans without benchmarks.
func EmptyRevisions(plan *models.ExecutionPlan) []models.RevisionPlan {
	var empty []models.RevisionPlan
	for _, rp := range plan.Revisions {
		if len(rp.Benchmarks) == 0 {
			empty = append(empty, rp)
		}
	}
	return empty
}

// Summary renders plan for humans. cliName prefixes each benchmark command.
func Summary(plan *models.ExecutionPlan, cliName string) string {
	var b strings.Builder
	b.WriteString("Execution Plan:\n")
	for _, rp := range plan.Revisions {
		fmt.Fprintf(&b, "\n  %s (%s): %s\n", rp.Name, rp.RevisionKey, util.ShortHash(rp.CommitHash))
		fmt.Fprintf(&b, "    %d benchmark(s):\n", len(rp.Benchmarks))
		for _, be := range rp.Benchmarks {
			groups := make([]string, len(be.GroupMemberships))
			for i, gm := range be.GroupMemberships {
				groups[i] = fmt.Sprintf("%s: %q", gm.GroupKey, gm.DisplayName)
			}
			fmt.Fprintf(&b, "      [%d] %s %s", be.Index, cliName, be.Command)
			if be.Prepare != "" {
				fmt.Fprintf(&b, " (prepare: %s)", be.Prepare)
			}
			fmt.Fprintf(&b, "\n        Groups: %s\n", strings.Join(groups, ", "))
		}
	}
	return b.String()
}
