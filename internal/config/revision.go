package config

import "fmt"

// RevisionKind selects how a Revision is turned into a commit.
type RevisionKind string

const (
	// RevisionDirect resolves a branch, tag or commit reference.
	RevisionDirect RevisionKind = "direct"
	// RevisionMergeBase resolves the common ancestor of two branches.
	RevisionMergeBase RevisionKind = "merge_base"
)

// Revision is a declared code revision. Exactly one resolution strategy is
// populated, matching Kind.
type Revision struct {
	key           string
	name          string
	kind          RevisionKind
	gitReference  string
	mergeBaseFrom string
	targetBranch  string
}

// NewDirectRevision builds a revision that resolves ref directly.
func NewDirectRevision(key, name, ref string) Revision {
	return Revision{key: key, name: name, kind: RevisionDirect, gitReference: ref}
}

// NewMergeBaseRevision builds a revision that resolves to the merge base of
// from and target.
func NewMergeBaseRevision(key, name, from, target string) Revision {
	return Revision{key: key, name: name, kind: RevisionMergeBase, mergeBaseFrom: from, targetBranch: target}
}

func parseRevision(key string, raw any) (Revision, error) {
	if key == "" {
		return Revision{}, invalidf("revision key must be a non-empty string")
	}
	m, ok := asMapping(raw)
	if !ok {
		return Revision{}, invalidf("revision '%s' configuration must be an object", key)
	}
	name, ok := nonEmptyString(get(m, "name"))
	if !ok {
		return Revision{}, invalidf("revision '%s' must have a name", key)
	}

	def, present := m.Get("revision")
	if !present || def == nil || def == "" {
		return Revision{}, invalidf("revision '%s' must have a revision definition", key)
	}

	switch t := def.(type) {
	case string:
		return NewDirectRevision(key, name, t), nil
	default:
		mb, ok := asMapping(t)
		if !ok {
			return Revision{}, invalidf("revision '%s' has invalid revision type", key)
		}
		from, okFrom := nonEmptyString(get(mb, "merge_base_from"))
		target, okTarget := nonEmptyString(get(mb, "target_branch"))
		if !okFrom || !okTarget {
			return Revision{}, invalidf("revision '%s' with merge_base must specify both 'merge_base_from' and 'target_branch'", key)
		}
		return NewMergeBaseRevision(key, name, from, target), nil
	}
}

func (r Revision) Key() string        { return r.key }
func (r Revision) Name() string       { return r.name }
func (r Revision) Kind() RevisionKind { return r.kind }

// IsDirect reports whether the revision resolves a reference directly.
func (r Revision) IsDirect() bool { return r.kind == RevisionDirect }

// IsMergeBase reports whether the revision resolves to a merge base.
func (r Revision) IsMergeBase() bool { return r.kind == RevisionMergeBase }

// GitReference returns the reference of a direct revision.
func (r Revision) GitReference() (string, error) {
	if r.kind != RevisionDirect {
		return "", fmt.Errorf("revision '%s' is not a direct reference", r.key)
	}
	return r.gitReference, nil
}

// MergeBase returns the branch pair of a merge-base revision.
func (r Revision) MergeBase() (from, target string, err error) {
	if r.kind != RevisionMergeBase {
		return "", "", fmt.Errorf("revision '%s' is not a merge_base reference", r.key)
	}
	return r.mergeBaseFrom, r.targetBranch, nil
}

func get(m *Mapping, key string) any {
	v, _ := m.Get(key)
	return v
}
