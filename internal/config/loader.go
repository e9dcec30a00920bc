package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format identifies the syntax of a configuration document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatForPath picks the document format from the file extension.
// Unknown extensions are treated as YAML.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	default:
		return FormatYAML
	}
}

// LoadFile reads, decodes and validates the configuration at path.
func LoadFile(path string) (*Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("configuration file not found: %s", path)
		}
		return nil, fmt.Errorf("reading configuration file %s: %w", path, err)
	}
	cfg, err := LoadBytes(data, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return cfg, nil
}

// LoadBytes decodes a configuration document of the given format and
// validates it.
func LoadBytes(data []byte, format Format) (*Configuration, error) {
	raw, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	return New(raw)
}

// Decode turns a document into the ordered object graph accepted by New.
// Objects become *Mapping so that declaration order is kept.
func Decode(data []byte, format Format) (*Mapping, error) {
	var (
		raw any
		err error
	)
	switch format {
	case FormatYAML:
		raw, err = decodeYAML(data)
	case FormatTOML:
		raw, err = decodeTOML(data)
	default:
		return nil, fmt.Errorf("unsupported configuration format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	m, ok := raw.(*Mapping)
	if !ok {
		return nil, invalidf("configuration file must contain a valid object")
	}
	return m, nil
}

func decodeYAML(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		// empty document
		return nil, nil
	}
	return fromYAMLNode(&doc)
}

func fromYAMLNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromYAMLNode(n.Content[0])
	case yaml.AliasNode:
		return fromYAMLNode(n.Alias)
	case yaml.MappingNode:
		m := NewMapping()
		for i := 0; i+1 < len(n.Content); i += 2 {
			var key string
			if err := n.Content[i].Decode(&key); err != nil {
				return nil, fmt.Errorf("line %d: mapping key: %w", n.Content[i].Line, err)
			}
			v, err := fromYAMLNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m.Set(key, v)
		}
		return m, nil
	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromYAMLNode(c)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported yaml node kind %d", n.Line, n.Kind)
	}
}

// decodeTOML decodes into plain maps and then restores key order from the
// decoder metadata, which lists keys in the order they appear.
func decodeTOML(data []byte) (any, error) {
	var root map[string]any
	md, err := toml.Decode(string(data), &root)
	if err != nil {
		return nil, err
	}
	return fromTOMLValue(root, nil, tomlOrder(md)), nil
}

// tomlOrder maps key paths to their first position in the document. Keys
// below an array of tables are recorded per element, so each [[table]] keeps
// its own order. Every key is also recorded under its path without element
// indexes, which is what inline arrays of tables fall back to.
func tomlOrder(md toml.MetaData) map[string]int {
	order := make(map[string]int)
	// Dotted keys only list the leaf, so every prefix is recorded too.
	record := func(path []string, pos int) {
		for i := 1; i <= len(path); i++ {
			key := strings.Join(path[:i], "\x00")
			if _, seen := order[key]; !seen {
				order[key] = pos
			}
		}
	}
	// current element of each array of tables, by indexed path
	elems := make(map[string]int)

	for pos, k := range md.Keys() {
		path := make([]string, 0, 2*len(k))
		for j, part := range k {
			path = append(path, part)
			if md.Type(k[:j+1]...) != "ArrayHash" {
				continue
			}
			arr := strings.Join(path, "\x00")
			if j == len(k)-1 {
				// A [[table]] header starts a new element.
				if n, ok := elems[arr]; ok {
					elems[arr] = n + 1
				} else {
					elems[arr] = 0
				}
				break
			}
			path = append(path, tomlIndex(elems[arr]))
		}
		record(path, pos)
		record(k, pos)
	}
	return order
}

func fromTOMLValue(v any, path []string, order map[string]int) any {
	switch t := v.(type) {
	case map[string]any:
		plain := withoutIndexes(path)
		position := func(k string) (int, bool) {
			if p, ok := order[tomlPath(path, k)]; ok {
				return p, true
			}
			p, ok := order[tomlPath(plain, k)]
			return p, ok
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.SliceStable(keys, func(i, j int) bool {
			pi, iok := position(keys[i])
			pj, jok := position(keys[j])
			switch {
			case iok && jok:
				return pi < pj
			case iok != jok:
				return iok
			default:
				return keys[i] < keys[j]
			}
		})
		m := NewMapping()
		for _, k := range keys {
			m.Set(k, fromTOMLValue(t[k], append(path[:len(path):len(path)], k), order))
		}
		return m
	case []map[string]any:
		list := make([]any, len(t))
		for i, item := range t {
			list[i] = fromTOMLValue(item, append(path[:len(path):len(path)], tomlIndex(i)), order)
		}
		return list
	case []any:
		list := make([]any, len(t))
		for i, item := range t {
			list[i] = fromTOMLValue(item, append(path[:len(path):len(path)], tomlIndex(i)), order)
		}
		return list
	default:
		return v
	}
}

// tomlIndex is the path component of an array element.
func tomlIndex(i int) string {
	return "\x01" + strconv.Itoa(i)
}

func withoutIndexes(path []string) []string {
	out := make([]string, 0, len(path))
	for _, p := range path {
		if !strings.HasPrefix(p, "\x01") {
			out = append(out, p)
		}
	}
	return out
}

func tomlPath(parent []string, key string) string {
	if len(parent) == 0 {
		return key
	}
	return strings.Join(parent, "\x00") + "\x00" + key
}
