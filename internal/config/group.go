package config

// Group clusters benchmark results for comparison.
type Group struct {
	key  string
	name string
}

func parseGroup(key string, raw any) (Group, error) {
	if key == "" {
		return Group{}, invalidf("group key must be a non-empty string")
	}
	m, ok := asMapping(raw)
	if !ok {
		return Group{}, invalidf("group '%s' configuration must be an object", key)
	}
	name, ok := nonEmptyString(get(m, "name"))
	if !ok {
		return Group{}, invalidf("group '%s' must have a name", key)
	}
	return Group{key: key, name: name}, nil
}

func (g Group) Key() string  { return g.key }
func (g Group) Name() string { return g.name }
