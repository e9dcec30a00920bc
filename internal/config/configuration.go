package config

import (
	"fmt"
	"maps"
	"slices"
)

// Configuration is the validated, immutable description of a benchmark run.
type Configuration struct {
	revisions     map[string]Revision
	revisionOrder []string
	groups        map[string]Group
	groupOrder    []string
	benchmarks    []*BenchmarkSpec
	warmup        int
	runs          int
}

// New validates the parsed object graph of a configuration document and
// builds a Configuration from it. Every violation is reported with a
// specific reason wrapped in ErrInvalidConfiguration.
func New(raw any) (*Configuration, error) {
	root, ok := asMapping(raw)
	if !ok {
		return nil, invalidf("configuration must be an object")
	}

	hyperfine, ok := asMapping(get(root, "hyperfine"))
	if !ok {
		return nil, invalidf("configuration must have a 'hyperfine' section")
	}
	warmup, ok := asInteger(get(hyperfine, "warmup"))
	if !ok || warmup < 0 {
		return nil, invalidf("hyperfine.warmup must be a non-negative integer")
	}
	runs, ok := asInteger(get(hyperfine, "runs"))
	if !ok || runs < 1 {
		return nil, invalidf("hyperfine.runs must be a positive integer")
	}

	cfg := &Configuration{
		revisions: make(map[string]Revision),
		groups:    make(map[string]Group),
		warmup:    warmup,
		runs:      runs,
	}

	revisions, ok := asMapping(get(root, "revisions"))
	if !ok || revisions.Len() == 0 {
		return nil, invalidf("configuration must have at least one revision")
	}
	for _, key := range revisions.Keys() {
		rev, err := parseRevision(key, get(revisions, key))
		if err != nil {
			return nil, err
		}
		cfg.revisions[key] = rev
		cfg.revisionOrder = append(cfg.revisionOrder, key)
	}

	groups, ok := asMapping(get(root, "groups"))
	if !ok || groups.Len() == 0 {
		return nil, invalidf("configuration must have at least one group")
	}
	for _, key := range groups.Keys() {
		g, err := parseGroup(key, get(groups, key))
		if err != nil {
			return nil, err
		}
		cfg.groups[key] = g
		cfg.groupOrder = append(cfg.groupOrder, key)
	}

	benchmarks, ok := asList(get(root, "benchmarks"))
	if !ok || len(benchmarks) == 0 {
		return nil, invalidf("configuration must have at least one benchmark")
	}
	for index, rawBench := range benchmarks {
		spec, err := parseBenchmark(index, rawBench)
		if err != nil {
			return nil, err
		}
		for _, groupKey := range spec.GroupKeys() {
			if _, ok := cfg.groups[groupKey]; !ok {
				return nil, invalidf("benchmark %d references unknown group '%s'", index, groupKey)
			}
		}
		if keys, restricted := spec.RevisionKeys(); restricted {
			for _, revKey := range keys {
				if _, ok := cfg.revisions[revKey]; !ok {
					return nil, invalidf("benchmark %d references unknown revision '%s'", index, revKey)
				}
			}
		}
		cfg.benchmarks = append(cfg.benchmarks, spec)
	}

	return cfg, nil
}

// Revisions returns a copy of the revision set keyed by revision key.
func (c *Configuration) Revisions() map[string]Revision {
	return maps.Clone(c.revisions)
}

// RevisionKeys returns revision keys in declaration order.
func (c *Configuration) RevisionKeys() []string {
	return slices.Clone(c.revisionOrder)
}

// Revision looks up a revision by key.
func (c *Configuration) Revision(key string) (Revision, error) {
	rev, ok := c.revisions[key]
	if !ok {
		return Revision{}, fmt.Errorf("unknown revision key: %s", key)
	}
	return rev, nil
}

// Groups returns a copy of the group set keyed by group key.
func (c *Configuration) Groups() map[string]Group {
	return maps.Clone(c.groups)
}

// GroupKeys returns group keys in declaration order.
func (c *Configuration) GroupKeys() []string {
	return slices.Clone(c.groupOrder)
}

// Group looks up a group by key.
func (c *Configuration) Group(key string) (Group, error) {
	g, ok := c.groups[key]
	if !ok {
		return Group{}, fmt.Errorf("unknown group key: %s", key)
	}
	return g, nil
}

// Benchmarks returns the benchmarks in declaration order. The specs
// themselves are immutable and safe to share.
func (c *Configuration) Benchmarks() []*BenchmarkSpec {
	return slices.Clone(c.benchmarks)
}

func (c *Configuration) Warmup() int { return c.warmup }
func (c *Configuration) Runs() int   { return c.runs }
