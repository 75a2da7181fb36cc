// Package mirror generates vcpkg.json from Relay.toml.
//
// Two generation modes exist. Regenerate is used after every dependency change
// and keeps the identity (name) and pin (builtin-baseline) fields of the
// previous vcpkg.json. GenerateForBuild is used when preparing a build and
// writes a fresh document carrying the project name and version instead.
package mirror

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/relaybuild/relay/pkg/logging"
	"github.com/relaybuild/relay/pkg/manifest"
)

// FileName is the vcpkg manifest file name at the project root.
const FileName = "vcpkg.json"

// ErrMirrorWrite is returned when vcpkg.json cannot be serialized or written.
var ErrMirrorWrite = errors.New("failed to write vcpkg manifest")

var log = logging.NewLogger("mirror")

// Dependency is one entry of the vcpkg dependencies array. It encodes as a
// bare name when it has no features.
type Dependency struct {
	Name     string   `json:"name"`
	Features []string `json:"features,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (d Dependency) MarshalJSON() ([]byte, error) {
	if len(d.Features) == 0 {
		return json.Marshal(d.Name)
	}
	type object Dependency
	return json.Marshal(object(d))
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Dependency) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*d = Dependency{Name: name}
		return nil
	}
	type object Dependency
	var o object
	if err := json.Unmarshal(data, &o); err != nil {
		return err
	}
	*d = Dependency(o)
	return nil
}

// Manifest is the subset of vcpkg.json that relay writes.
type Manifest struct {
	Name            string       `json:"name,omitempty"`
	Version         string       `json:"version,omitempty"`
	Dependencies    []Dependency `json:"dependencies"`
	BuiltinBaseline string       `json:"builtin-baseline,omitempty"`
}

// Path returns the vcpkg.json path inside root.
func Path(root string) string {
	return filepath.Join(root, FileName)
}

// Names returns the dependency names in document order.
func (m *Manifest) Names() []string {
	names := make([]string, len(m.Dependencies))
	for i, d := range m.Dependencies {
		names[i] = d.Name
	}
	return names
}

// CarryForward derives the vcpkg manifest from m, keeping name and
// builtin-baseline from prev when prev is non-nil.
func CarryForward(m *manifest.Manifest, prev *Manifest) *Manifest {
	out := &Manifest{Dependencies: []Dependency{}}
	for _, name := range lowerNames(m) {
		out.Dependencies = append(out.Dependencies, Dependency{Name: name})
	}
	if prev != nil {
		out.Name = prev.Name
		out.BuiltinBaseline = prev.BuiltinBaseline
	}
	return out
}

// ForBuild derives a fresh vcpkg manifest from m for build preparation.
func ForBuild(m *manifest.Manifest) *Manifest {
	name := strings.ToLower(m.Project.Name)
	if name == "" {
		name = "unknown-project"
	}
	version := m.Project.Version
	if version == "" {
		version = "0.0.0"
	}
	out := &Manifest{Name: name, Version: version, Dependencies: []Dependency{}}

	features := make(map[string]map[string]bool)
	for depName, dep := range m.Dependencies {
		key := strings.ToLower(depName)
		if features[key] == nil {
			features[key] = make(map[string]bool)
		}
		for _, f := range dep.Features {
			features[key][strings.ToLower(f)] = true
		}
	}
	for _, depName := range lowerNames(m) {
		d := Dependency{Name: depName}
		for f := range features[depName] {
			d.Features = append(d.Features, f)
		}
		sort.Strings(d.Features)
		out.Dependencies = append(out.Dependencies, d)
	}
	return out
}

// lowerNames returns the lower-cased, deduplicated dependency names, sorted.
func lowerNames(m *manifest.Manifest) []string {
	seen := make(map[string]bool, len(m.Dependencies))
	names := make([]string, 0, len(m.Dependencies))
	for name := range m.Dependencies {
		lower := strings.ToLower(name)
		if seen[lower] {
			continue
		}
		seen[lower] = true
		names = append(names, lower)
	}
	sort.Strings(names)
	return names
}

// Encode serializes m as indented JSON with a trailing newline.
func Encode(m *Manifest) ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Read loads an existing vcpkg.json.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &m, nil
}

// carried is the part of an existing vcpkg.json that Regenerate keeps.
// Dependencies are not decoded so any shape vcpkg accepts there is tolerated.
type carried struct {
	Name            string `json:"name"`
	BuiltinBaseline string `json:"builtin-baseline"`
}

// readCarried loads the name and builtin-baseline of an existing vcpkg.json.
func readCarried(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c carried
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &Manifest{Name: c.Name, BuiltinBaseline: c.BuiltinBaseline}, nil
}

// Regenerate rewrites root/vcpkg.json from root/Relay.toml, carrying forward
// the name and builtin-baseline of the existing file. A malformed existing
// file is replaced.
func Regenerate(root string) (*Manifest, error) {
	m, err := manifest.Load(manifest.Path(root))
	if err != nil {
		return nil, err
	}

	path := Path(root)
	var prev *Manifest
	if _, statErr := os.Stat(path); statErr == nil {
		prev, err = readCarried(path)
		if err != nil {
			log.WithError(err).Warnf("Existing %s is malformed, creating a new one", FileName)
			prev = nil
		}
	}

	out := CarryForward(m, prev)
	if err := write(path, out); err != nil {
		return nil, err
	}
	log.Debugf("Generated %s with %d dependencies", path, len(out.Dependencies))
	return out, nil
}

// GenerateForBuild writes root/vcpkg.json from m without carrying anything
// forward from the existing file.
func GenerateForBuild(root string, m *manifest.Manifest) (*Manifest, error) {
	out := ForBuild(m)
	if err := write(Path(root), out); err != nil {
		return nil, err
	}
	log.Debugf("Generated %s for build", Path(root))
	return out, nil
}

// write replaces path through a temporary file in the same directory so a
// failed write never leaves a truncated vcpkg.json behind.
func write(path string, m *Manifest) error {
	data, err := Encode(m)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMirrorWrite, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+FileName+".*")
	if err != nil {
		return fmt.Errorf("%w %s: %v", ErrMirrorWrite, path, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w %s: %v", ErrMirrorWrite, path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w %s: %v", ErrMirrorWrite, path, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w %s: %v", ErrMirrorWrite, path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w %s: %v", ErrMirrorWrite, path, err)
	}
	return nil
}
