// Package manifest reads and writes Relay.toml, the authoritative list of a
// project's dependencies.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pelletier/go-toml/v2"
)

const (
	// FileName is the manifest file name at the project root.
	FileName = "Relay.toml"
	// AnyVersion is the wildcard constraint.
	AnyVersion = "*"
	// DefaultVersion is the version given to new and synthesized projects.
	DefaultVersion = "0.1.0"
	// TypeExecutable is the default project type.
	TypeExecutable = "executable"
)

// Project is the [project] section.
type Project struct {
	Name           string `toml:"name" json:"name" jsonschema:"description=Project and CMake target name"`
	Version        string `toml:"version" json:"version" jsonschema:"description=Project version"`
	MainExecutable string `toml:"main_executable,omitempty" json:"main_executable,omitempty" jsonschema:"description=Executable target name (defaults to name)"`
	Type           string `toml:"type,omitempty" json:"type,omitempty" jsonschema:"enum=executable,enum=library"`
}

// Dependency is a single entry of the [dependencies] table.
type Dependency struct {
	Version  string
	Features []string
}

// Manifest is the in-memory form of Relay.toml.
type Manifest struct {
	Project      Project               `toml:"project" json:"project"`
	Dependencies map[string]Dependency `toml:"dependencies" json:"dependencies"`
}

// New returns an empty manifest for the named project.
func New(name string) *Manifest {
	return &Manifest{
		Project: Project{
			Name:    name,
			Version: DefaultVersion,
			Type:    TypeExecutable,
		},
		Dependencies: make(map[string]Dependency),
	}
}

// Synthesize builds the minimal manifest used when none exists in dir.
func Synthesize(dir string) *Manifest {
	name := filepath.Base(filepath.Clean(dir))
	if name == "." || name == string(filepath.Separator) {
		name = "project"
	}
	return New(name)
}

// Path returns the manifest path inside root.
func Path(root string) string {
	return filepath.Join(root, FileName)
}

// Exists reports whether root contains a manifest.
func Exists(root string) bool {
	_, err := os.Stat(Path(root))
	return err == nil
}

// Executable returns the CMake target that dependencies are linked into.
func (m *Manifest) Executable() string {
	if m.Project.MainExecutable != "" {
		return m.Project.MainExecutable
	}
	return m.Project.Name
}

// Names returns the dependency names sorted ascending.
func (m *Manifest) Names() []string {
	names := make([]string, 0, len(m.Dependencies))
	for name := range m.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is declared.
func (m *Manifest) Has(name string) bool {
	_, ok := m.Dependencies[name]
	return ok
}

// AddDependency declares name with the given constraint. It returns false and
// leaves the manifest untouched when name is already declared.
func (m *Manifest) AddDependency(name, constraint string) bool {
	if m.Dependencies == nil {
		m.Dependencies = make(map[string]Dependency)
	}
	if _, ok := m.Dependencies[name]; ok {
		return false
	}
	if constraint == "" {
		constraint = AnyVersion
	}
	m.Dependencies[name] = Dependency{Version: constraint}
	return true
}

// RemoveDependency drops name, or returns ErrDependencyNotFound.
func (m *Manifest) RemoveDependency(name string) error {
	if _, ok := m.Dependencies[name]; !ok {
		return fmt.Errorf("%w: %s", ErrDependencyNotFound, name)
	}
	delete(m.Dependencies, name)
	return nil
}

// ValidateConstraint accepts the wildcard or any semver constraint.
func ValidateConstraint(constraint string) error {
	if constraint == "" || constraint == AnyVersion {
		return nil
	}
	if _, err := semver.NewConstraint(constraint); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidConstraint, constraint, err)
	}
	return nil
}

// ValidateVersion accepts an empty version or a semantic version.
func ValidateVersion(version string) error {
	if version == "" {
		return nil
	}
	if _, err := semver.NewVersion(version); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidVersion, version, err)
	}
	return nil
}

// ParseSpec splits "name@constraint" into its parts.
func ParseSpec(spec string) (name, constraint string) {
	name, constraint, _ = strings.Cut(spec, "@")
	return strings.TrimSpace(name), strings.TrimSpace(constraint)
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, path)
		}
		return nil, fmt.Errorf("%w %s: %v", ErrManifestParse, path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrManifestParse, path, err)
	}
	return m, nil
}

// Parse decodes manifest content. Errors are not wrapped with ErrManifestParse.
func Parse(data []byte) (*Manifest, error) {
	var raw map[string]interface{}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	m := &Manifest{Dependencies: make(map[string]Dependency)}

	section, ok := raw["project"]
	if !ok {
		// Early templates wrote [package].
		section, ok = raw["package"]
	}
	if ok {
		table, isTable := section.(map[string]interface{})
		if !isTable {
			return nil, fmt.Errorf("'project' section is not a table")
		}
		fields := map[string]*string{
			"name":            &m.Project.Name,
			"version":         &m.Project.Version,
			"main_executable": &m.Project.MainExecutable,
			"type":            &m.Project.Type,
		}
		for key, dst := range fields {
			v, present := table[key]
			if !present {
				continue
			}
			s, isString := v.(string)
			if !isString {
				return nil, fmt.Errorf("'project.%s' must be a string", key)
			}
			*dst = s
		}
		if err := ValidateVersion(m.Project.Version); err != nil {
			return nil, err
		}
	}

	deps, ok := raw["dependencies"]
	if !ok {
		return m, nil
	}
	table, ok := deps.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("'dependencies' section is not a table")
	}
	for name, value := range table {
		dep, err := parseDependency(name, value)
		if err != nil {
			return nil, err
		}
		m.Dependencies[name] = dep
	}
	return m, nil
}

func parseDependency(name string, value interface{}) (Dependency, error) {
	switch v := value.(type) {
	case string:
		return Dependency{Version: v}, nil
	case map[string]interface{}:
		dep := Dependency{Version: AnyVersion}
		if version, ok := v["version"]; ok {
			s, ok := version.(string)
			if !ok {
				return Dependency{}, fmt.Errorf("dependency '%s': version must be a string", name)
			}
			dep.Version = s
		}
		if features, ok := v["features"]; ok {
			list, ok := features.([]interface{})
			if !ok {
				return Dependency{}, fmt.Errorf("dependency '%s': features must be a list", name)
			}
			for _, f := range list {
				s, ok := f.(string)
				if !ok {
					return Dependency{}, fmt.Errorf("dependency '%s': features must be strings", name)
				}
				dep.Features = append(dep.Features, s)
			}
		}
		return dep, nil
	default:
		return Dependency{}, fmt.Errorf("dependency '%s' must be a version string or a table", name)
	}
}

type fileDependency struct {
	Version  string   `toml:"version"`
	Features []string `toml:"features,omitempty"`
}

type fileDocument struct {
	Project      Project                `toml:"project"`
	Dependencies map[string]interface{} `toml:"dependencies"`
}

// Marshal encodes the manifest. Dependencies without features are written as
// plain constraint strings.
func Marshal(m *Manifest) ([]byte, error) {
	doc := fileDocument{
		Project:      m.Project,
		Dependencies: make(map[string]interface{}, len(m.Dependencies)),
	}
	for name, dep := range m.Dependencies {
		version := dep.Version
		if version == "" {
			version = AnyVersion
		}
		if len(dep.Features) == 0 {
			doc.Dependencies[name] = version
			continue
		}
		doc.Dependencies[name] = fileDependency{Version: version, Features: dep.Features}
	}
	return toml.Marshal(doc)
}

// Save writes the manifest to path.
func Save(path string, m *Manifest) error {
	data, err := Marshal(m)
	if err != nil {
		return fmt.Errorf("%w %s: %v", ErrManifestWrite, path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w %s: %v", ErrManifestWrite, path, err)
	}
	return nil
}
