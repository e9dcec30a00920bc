package config

import (
	"fmt"
	"slices"

	"github.com/spachava753/revbench/internal/models"
)

// BenchmarkSpec is a single declared benchmark.
type BenchmarkSpec struct {
	index        int
	command      string
	prepare      string
	memberships  []models.GroupMembership
	revisionKeys []string // nil runs on every revision
}

func parseBenchmark(index int, raw any) (*BenchmarkSpec, error) {
	m, ok := asMapping(raw)
	if !ok {
		return nil, invalidf("benchmark %d configuration must be an object", index)
	}
	command, ok := nonEmptyString(get(m, "command"))
	if !ok {
		return nil, invalidf("benchmark %d must have a command string", index)
	}

	var prepare string
	if v, present := m.Get("prepare"); present && v != nil {
		s, ok := v.(string)
		if !ok {
			return nil, invalidf("benchmark %d prepare must be a string if provided", index)
		}
		prepare = s
	}

	groups, ok := asMapping(get(m, "groups"))
	if !ok || groups.Len() == 0 {
		return nil, invalidf("benchmark %d must belong to at least one group", index)
	}
	memberships := make([]models.GroupMembership, 0, groups.Len())
	for _, groupKey := range groups.Keys() {
		gm, ok := asMapping(get(groups, groupKey))
		if !ok {
			return nil, invalidf("benchmark %d group '%s' configuration must be an object", index, groupKey)
		}
		name, ok := nonEmptyString(get(gm, "name"))
		if !ok {
			return nil, invalidf("benchmark %d group '%s' must have a name", index, groupKey)
		}
		memberships = append(memberships, models.GroupMembership{GroupKey: groupKey, DisplayName: name})
	}

	var revisionKeys []string
	if v, present := m.Get("revisions"); present && v != nil {
		list, ok := asList(v)
		if !ok {
			return nil, invalidf("benchmark %d revisions must be an array if provided", index)
		}
		if len(list) == 0 {
			return nil, invalidf("benchmark %d revisions array must not be empty if provided", index)
		}
		revisionKeys = make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, invalidf("benchmark %d revision keys must be strings", index)
			}
			revisionKeys = append(revisionKeys, s)
		}
	}

	return &BenchmarkSpec{
		index:        index,
		command:      command,
		prepare:      prepare,
		memberships:  memberships,
		revisionKeys: revisionKeys,
	}, nil
}

func (b *BenchmarkSpec) Index() int      { return b.index }
func (b *BenchmarkSpec) Command() string { return b.command }

// Prepare returns the setup command, or "" when none is declared.
func (b *BenchmarkSpec) Prepare() string { return b.prepare }

// GroupMemberships returns the memberships in declaration order.
func (b *BenchmarkSpec) GroupMemberships() []models.GroupMembership {
	return slices.Clone(b.memberships)
}

// GroupKeys returns the keys of every group the benchmark belongs to.
func (b *BenchmarkSpec) GroupKeys() []string {
	keys := make([]string, len(b.memberships))
	for i, gm := range b.memberships {
		keys[i] = gm.GroupKey
	}
	return keys
}

// GroupDisplayName returns the name the benchmark carries inside groupKey.
func (b *BenchmarkSpec) GroupDisplayName(groupKey string) (string, error) {
	for _, gm := range b.memberships {
		if gm.GroupKey == groupKey {
			return gm.DisplayName, nil
		}
	}
	return "", fmt.Errorf("benchmark %d is not a member of group '%s'", b.index, groupKey)
}

// RevisionKeys returns the revision restriction. restricted is false when the
// benchmark runs on every revision.
func (b *BenchmarkSpec) RevisionKeys() (keys []string, restricted bool) {
	if b.revisionKeys == nil {
		return nil, false
	}
	return slices.Clone(b.revisionKeys), true
}

// ShouldRunOnRevision reports whether the benchmark applies to revisionKey.
func (b *BenchmarkSpec) ShouldRunOnRevision(revisionKey string) bool {
	if b.revisionKeys == nil {
		return true
	}
	return slices.Contains(b.revisionKeys, revisionKey)
}
