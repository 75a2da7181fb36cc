package cmake

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
	"gopkg.in/yaml.v3"
)

//go:embed mappings.yaml
var mappingsYAML []byte

// Mapping is the CMake usage of one dependency.
type Mapping struct {
	FindPackage string `yaml:"find_package"`
	TargetLink  string `yaml:"target_link"`
}

// Table maps dependency names to their CMake usage.
type Table map[string]Mapping

var defaultTable = mustParseTable(mappingsYAML)

// DefaultTable returns the compiled-in mapping table.
func DefaultTable() Table {
	return defaultTable
}

// ParseTable decodes a YAML mapping table.
func ParseTable(data []byte) (Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse mapping table: %w", err)
	}
	for name, m := range t {
		if m.FindPackage == "" || m.TargetLink == "" {
			return nil, fmt.Errorf("mapping for '%s' needs both find_package and target_link", name)
		}
	}
	return t, nil
}

func mustParseTable(data []byte) Table {
	t, err := ParseTable(data)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the mapping for name. Names are matched exactly first and
// then lower-cased, since vcpkg port names are lower-case.
func (t Table) Lookup(name string) (Mapping, bool) {
	if m, ok := t[name]; ok {
		return m, true
	}
	m, ok := t[strings.ToLower(name)]
	return m, ok
}

// Names returns the known dependency names sorted ascending.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Suggest returns up to max known names that fuzzily match name.
func (t Table) Suggest(name string, max int) []string {
	matches := fuzzy.Find(strings.ToLower(name), t.Names())
	var out []string
	for _, m := range matches {
		if len(out) == max {
			break
		}
		out = append(out, m.Str)
	}
	return out
}
