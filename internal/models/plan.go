package models

import "fmt"

// ResolvedRevision is a declared revision pinned to a concrete commit.
type ResolvedRevision struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	CommitHash string `json:"commit_hash"`
}

// GroupMembership places a benchmark in a group under a display name.
type GroupMembership struct {
	GroupKey    string `json:"group_key"`
	DisplayName string `json:"display_name"`
}

// BenchmarkExecution is one benchmark scheduled on one revision.
type BenchmarkExecution struct {
	Index            int               `json:"index"`
	Command          string            `json:"command"`
	Prepare          string            `json:"prepare,omitempty"`
	GroupMemberships []GroupMembership `json:"group_memberships"`
}

// RevisionPlan lists the benchmarks to run against one revision, in the
// order they are handed to the timing tool.
type RevisionPlan struct {
	RevisionKey string               `json:"revision_key"`
	Name        string               `json:"name"`
	CommitHash  string               `json:"commit_hash"`
	Benchmarks  []BenchmarkExecution `json:"benchmarks"`
}

// CommandLabel returns the name passed to the timing tool for b. The label is
// unique within the revision and comes back in the tool's output, so it
// doubles as the correlation token between plan and raw results.
func (p RevisionPlan) CommandLabel(b BenchmarkExecution) string {
	primary := b.Command
	if len(b.GroupMemberships) > 0 {
		primary = b.GroupMemberships[0].DisplayName
	}
	return fmt.Sprintf("%s (%s): %s #%d", p.Name, p.RevisionKey, primary, b.Index)
}

// ExecutionPlan maps every resolved revision to its RevisionPlan while
// keeping resolution order.
type ExecutionPlan struct {
	Revisions []RevisionPlan `json:"revisions"`
}

// Get returns the plan for a revision key.
func (p *ExecutionPlan) Get(revisionKey string) (RevisionPlan, bool) {
	for _, rp := range p.Revisions {
		if rp.RevisionKey == revisionKey {
			return rp, true
		}
	}
	return RevisionPlan{}, false
}

// Keys returns revision keys in plan order.
func (p *ExecutionPlan) Keys() []string {
	keys := make([]string, 0, len(p.Revisions))
	for _, rp := range p.Revisions {
		keys = append(keys, rp.RevisionKey)
	}
	return keys
}
