// Package cmake keeps the relay-owned regions of CMakeLists.txt in sync with
// the dependencies declared in Relay.toml.
//
// Only two marker pairs are meaningful. Every other line of the build script
// belongs to the user and is copied through byte for byte.
package cmake

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/relaybuild/relay/pkg/logging"
	"github.com/relaybuild/relay/pkg/manifest"
)

// ScriptName is the build script file name at the project root.
const ScriptName = "CMakeLists.txt"

// Marker tokens. A line containing the token is a marker line.
const (
	FindStartMarker = "RELAY_FIND_PACKAGES_BEGIN"
	FindEndMarker   = "RELAY_FIND_PACKAGES_END"
	LinkStartMarker = "RELAY_LINK_LIBRARIES_BEGIN"
	LinkEndMarker   = "RELAY_LINK_LIBRARIES_END"
)

var (
	// ErrBuildScriptNotFound is returned when CMakeLists.txt does not exist.
	ErrBuildScriptNotFound = errors.New("build script not found")
	// ErrMissingProjectName is returned when the manifest has no project.name.
	ErrMissingProjectName = errors.New("project.name not set in manifest")
	// ErrBuildScriptWrite is returned when CMakeLists.txt cannot be read or written.
	ErrBuildScriptWrite = errors.New("failed to update build script")
)

var log = logging.NewLogger("cmake")

// Region is a marker-delimited block owned by relay.
type Region struct {
	Name  string
	Start string
	End   string
}

var (
	// FindRegion holds one find_package call per dependency.
	FindRegion = Region{Name: "find-packages", Start: FindStartMarker, End: FindEndMarker}
	// LinkRegion holds the combined target_link_libraries call.
	LinkRegion = Region{Name: "link-libraries", Start: LinkStartMarker, End: LinkEndMarker}
)

// Plan is the generated content of both regions.
type Plan struct {
	Find []string
	Link []string
}

// PatchResult describes what Patch did.
type PatchResult struct {
	Path           string
	Mapped         []string
	Unmapped       []string
	MissingRegions []Region
	Changed        bool
}

// ScriptPath returns the build script path inside root.
func ScriptPath(root string) string {
	return filepath.Join(root, ScriptName)
}

// PlanFor builds the region content for m's dependencies using table. Names
// are processed in ascending order; names missing from table are returned
// separately and contribute nothing. Names equal up to case are emitted once.
func PlanFor(m *manifest.Manifest, table Table) (plan Plan, mapped, unmapped []string) {
	var targets []string
	seen := make(map[string]bool)
	for _, name := range m.Names() {
		lower := strings.ToLower(name)
		if seen[lower] {
			continue
		}
		seen[lower] = true
		mapping, ok := table.Lookup(name)
		if !ok {
			unmapped = append(unmapped, name)
			continue
		}
		mapped = append(mapped, name)
		plan.Find = append(plan.Find, mapping.FindPackage)
		targets = append(targets, mapping.TargetLink)
	}
	if len(targets) > 0 {
		plan.Link = []string{fmt.Sprintf("target_link_libraries(%s PRIVATE %s)", m.Executable(), strings.Join(targets, " "))}
	}
	return plan, mapped, unmapped
}

// Rewrite replaces the content of both regions in content and returns the new
// text together with the regions that could not be located.
func Rewrite(content string, plan Plan) (string, []Region) {
	lines := splitLines(content)

	type span struct {
		region     Region
		start, end int
		statements []string
	}
	var spans []span
	var missing []Region

	for _, r := range []struct {
		region     Region
		statements []string
	}{
		{FindRegion, plan.Find},
		{LinkRegion, plan.Link},
	} {
		start, end, ok := locate(lines, r.region)
		if ok {
			for _, s := range spans {
				if start <= s.end && s.start <= end {
					ok = false
				}
			}
		}
		if !ok {
			missing = append(missing, r.region)
			continue
		}
		spans = append(spans, span{region: r.region, start: start, end: end, statements: r.statements})
	}

	var b strings.Builder
	b.Grow(len(content))
	for i := 0; i < len(lines); i++ {
		var current *span
		for j := range spans {
			if spans[j].start == i {
				current = &spans[j]
			}
		}
		if current == nil {
			b.WriteString(lines[i])
			continue
		}

		eol := lineEnding(lines[i])
		b.WriteString(lines[i])
		for _, s := range current.statements {
			b.WriteString("  ")
			b.WriteString(s)
			b.WriteString(eol)
		}
		b.WriteString(lines[current.end])
		i = current.end
	}
	return b.String(), missing
}

// locate finds the first start marker line and the first end marker line after it.
func locate(lines []string, r Region) (start, end int, ok bool) {
	start = -1
	for i, line := range lines {
		if start < 0 {
			if strings.Contains(line, r.Start) {
				start = i
			}
			continue
		}
		if strings.Contains(line, r.End) {
			return start, i, true
		}
	}
	return -1, -1, false
}

// splitLines splits content after every newline, keeping the terminators.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func lineEnding(line string) string {
	if strings.HasSuffix(line, "\r\n") {
		return "\r\n"
	}
	return "\n"
}

// Patch regenerates both relay regions of root/CMakeLists.txt from
// root/Relay.toml using the compiled-in mapping table.
func Patch(root string) (*PatchResult, error) {
	return PatchWith(root, DefaultTable())
}

// PatchWith is Patch with an explicit mapping table.
func PatchWith(root string, table Table) (*PatchResult, error) {
	path := ScriptPath(root)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrBuildScriptNotFound, path)
		}
		return nil, fmt.Errorf("%w %s: %v", ErrBuildScriptWrite, path, err)
	}

	m, err := manifest.Load(manifest.Path(root))
	if err != nil {
		return nil, err
	}
	if m.Project.Name == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingProjectName, manifest.Path(root))
	}

	plan, mapped, unmapped := PlanFor(m, table)
	for _, name := range unmapped {
		entry := log.WithField("dependency", name)
		if suggestions := table.Suggest(name, 3); len(suggestions) > 0 {
			entry = entry.WithField("did_you_mean", strings.Join(suggestions, ", "))
		}
		entry.Warnf("No CMake mapping for dependency '%s'; add find_package/target_link_libraries for it to %s by hand", name, ScriptName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrBuildScriptWrite, path, err)
	}
	content := string(data)
	updated, missing := Rewrite(content, plan)
	for _, r := range missing {
		log.WithField("region", r.Name).Warnf("Markers '# %s' and '# %s' not found in %s; add them to let relay manage this section", r.Start, r.End, ScriptName)
	}

	result := &PatchResult{
		Path:           path,
		Mapped:         mapped,
		Unmapped:       unmapped,
		MissingRegions: missing,
		Changed:        updated != content,
	}
	if !result.Changed {
		log.Debugf("%s already up to date", path)
		return result, nil
	}
	if err := os.WriteFile(path, []byte(updated), info.Mode().Perm()); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrBuildScriptWrite, path, err)
	}
	log.Debugf("Updated %s", path)
	return result, nil
}
