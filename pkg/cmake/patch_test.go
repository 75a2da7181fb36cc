package cmake

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/relaybuild/relay/pkg/logging"
	"github.com/relaybuild/relay/pkg/manifest"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scaffoldScript = `cmake_minimum_required(VERSION 3.15)
project(hello VERSION 0.1.0 LANGUAGES C)

add_executable(hello ${SOURCE_FILES})

# RELAY_FIND_PACKAGES_BEGIN
# RELAY_FIND_PACKAGES_END

# RELAY_LINK_LIBRARIES_BEGIN
# RELAY_LINK_LIBRARIES_END

install(TARGETS hello DESTINATION bin)
`

func newProject(t *testing.T, script string, deps ...string) string {
	t.Helper()
	root := t.TempDir()
	m := manifest.New("hello")
	for _, d := range deps {
		m.AddDependency(d, "")
	}
	require.NoError(t, manifest.Save(manifest.Path(root), m))
	require.NoError(t, os.WriteFile(ScriptPath(root), []byte(script), 0644))
	return root
}

func readScript(t *testing.T, root string) string {
	t.Helper()
	data, err := os.ReadFile(ScriptPath(root))
	require.NoError(t, err)
	return string(data)
}

func warnings(hook *test.Hook) []string {
	var out []string
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			out = append(out, e.Message)
		}
	}
	return out
}

func TestPatch(t *testing.T) {
	t.Run("TwoMappedDependencies", func(t *testing.T) {
		root := newProject(t, scaffoldScript, "zlib", "fmt")

		result, err := Patch(root)
		require.NoError(t, err)
		assert.True(t, result.Changed)
		assert.Equal(t, []string{"fmt", "zlib"}, result.Mapped)
		assert.Empty(t, result.Unmapped)
		assert.Empty(t, result.MissingRegions)

		want := strings.Replace(scaffoldScript,
			"# RELAY_FIND_PACKAGES_BEGIN\n",
			"# RELAY_FIND_PACKAGES_BEGIN\n  find_package(fmt CONFIG REQUIRED)\n  find_package(ZLIB REQUIRED)\n", 1)
		want = strings.Replace(want,
			"# RELAY_LINK_LIBRARIES_BEGIN\n",
			"# RELAY_LINK_LIBRARIES_BEGIN\n  target_link_libraries(hello PRIVATE fmt::fmt ZLIB::ZLIB)\n", 1)
		assert.Equal(t, want, readScript(t, root))
	})

	t.Run("UnmappedDependency", func(t *testing.T) {
		root := newProject(t, scaffoldScript, "unknown-lib")
		hook := test.NewLocal(logging.Root())
		defer hook.Reset()

		result, err := Patch(root)
		require.NoError(t, err)
		assert.Equal(t, []string{"unknown-lib"}, result.Unmapped)
		assert.False(t, result.Changed)
		assert.Equal(t, scaffoldScript, readScript(t, root), "both regions stay empty")

		w := warnings(hook)
		require.Len(t, w, 1)
		assert.Contains(t, w[0], "unknown-lib")
	})

	t.Run("RemovingDependencyEmptiesRegions", func(t *testing.T) {
		root := newProject(t, scaffoldScript, "fmt")
		_, err := Patch(root)
		require.NoError(t, err)
		require.Contains(t, readScript(t, root), "fmt::fmt")

		m, err := manifest.Load(manifest.Path(root))
		require.NoError(t, err)
		require.NoError(t, m.RemoveDependency("fmt"))
		require.NoError(t, manifest.Save(manifest.Path(root), m))

		_, err = Patch(root)
		require.NoError(t, err)
		assert.Equal(t, scaffoldScript, readScript(t, root))
	})

	t.Run("Idempotent", func(t *testing.T) {
		root := newProject(t, scaffoldScript, "spdlog", "fmt")
		_, err := Patch(root)
		require.NoError(t, err)
		first := readScript(t, root)

		result, err := Patch(root)
		require.NoError(t, err)
		assert.False(t, result.Changed)
		assert.Equal(t, first, readScript(t, root))
		assert.Equal(t, 1, strings.Count(first, FindStartMarker), "markers are never duplicated")
	})

	t.Run("MissingMarkers", func(t *testing.T) {
		script := "project(hello)\nadd_executable(hello main.c)\n"
		root := newProject(t, script, "fmt")
		hook := test.NewLocal(logging.Root())
		defer hook.Reset()

		result, err := Patch(root)
		require.NoError(t, err)
		assert.Equal(t, []Region{FindRegion, LinkRegion}, result.MissingRegions)
		assert.Equal(t, script, readScript(t, root))
		assert.Len(t, warnings(hook), 2)
	})

	t.Run("UsesMainExecutable", func(t *testing.T) {
		root := newProject(t, scaffoldScript)
		m, err := manifest.Load(manifest.Path(root))
		require.NoError(t, err)
		m.Project.MainExecutable = "hello-cli"
		m.AddDependency("fmt", "")
		require.NoError(t, manifest.Save(manifest.Path(root), m))

		_, err = Patch(root)
		require.NoError(t, err)
		assert.Contains(t, readScript(t, root), "target_link_libraries(hello-cli PRIVATE fmt::fmt)")
	})

	t.Run("MissingBuildScript", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, manifest.Save(manifest.Path(root), manifest.New("hello")))
		_, err := Patch(root)
		assert.True(t, errors.Is(err, ErrBuildScriptNotFound))
	})

	t.Run("MissingManifest", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(ScriptPath(root), []byte(scaffoldScript), 0644))
		_, err := Patch(root)
		assert.True(t, errors.Is(err, manifest.ErrManifestNotFound))
	})

	t.Run("MissingProjectName", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(manifest.Path(root), []byte("[dependencies]\nfmt = \"*\"\n"), 0644))
		require.NoError(t, os.WriteFile(ScriptPath(root), []byte(scaffoldScript), 0644))
		_, err := Patch(root)
		assert.True(t, errors.Is(err, ErrMissingProjectName))
	})
}

func TestPlanForSortedDeterminism(t *testing.T) {
	table := Table{
		"abc":  {FindPackage: "find_package(abc)", TargetLink: "abc::abc"},
		"fmt":  {FindPackage: "find_package(fmt)", TargetLink: "fmt::fmt"},
		"zlib": {FindPackage: "find_package(ZLIB)", TargetLink: "ZLIB::ZLIB"},
	}
	orders := [][]string{
		{"zlib", "fmt", "abc"},
		{"abc", "zlib", "fmt"},
		{"fmt", "abc", "zlib"},
	}
	for _, order := range orders {
		m := manifest.New("app")
		for _, name := range order {
			m.AddDependency(name, "")
		}
		plan, mapped, unmapped := PlanFor(m, table)
		assert.Equal(t, []string{"abc", "fmt", "zlib"}, mapped)
		assert.Empty(t, unmapped)
		assert.Equal(t, []string{"find_package(abc)", "find_package(fmt)", "find_package(ZLIB)"}, plan.Find)
		assert.Equal(t, []string{"target_link_libraries(app PRIVATE abc::abc fmt::fmt ZLIB::ZLIB)"}, plan.Link)
	}
}

func TestPlanForCaseInsensitiveDuplicates(t *testing.T) {
	table := Table{
		"fmt": {FindPackage: "find_package(fmt CONFIG REQUIRED)", TargetLink: "fmt::fmt"},
	}
	m := manifest.New("hello")
	m.AddDependency("fmt", "")
	m.AddDependency("FMT", "")
	m.AddDependency("Mystery", "")
	m.AddDependency("mystery", "")

	plan, mapped, unmapped := PlanFor(m, table)
	assert.Len(t, mapped, 1)
	assert.Len(t, unmapped, 1)
	assert.Equal(t, []string{"find_package(fmt CONFIG REQUIRED)"}, plan.Find)
	assert.Equal(t, []string{"target_link_libraries(hello PRIVATE fmt::fmt)"}, plan.Link)
}

func TestRewrite(t *testing.T) {
	plan := Plan{Find: []string{"find_package(fmt CONFIG REQUIRED)"}, Link: []string{"target_link_libraries(a PRIVATE fmt::fmt)"}}

	t.Run("ReplacesStaleContent", func(t *testing.T) {
		in := "a\n# RELAY_FIND_PACKAGES_BEGIN\n  old line\n\n  another\n# RELAY_FIND_PACKAGES_END\nb\n# RELAY_LINK_LIBRARIES_BEGIN\nstale\n# RELAY_LINK_LIBRARIES_END\n"
		out, missing := Rewrite(in, plan)
		assert.Empty(t, missing)
		assert.Equal(t, "a\n# RELAY_FIND_PACKAGES_BEGIN\n  find_package(fmt CONFIG REQUIRED)\n# RELAY_FIND_PACKAGES_END\nb\n# RELAY_LINK_LIBRARIES_BEGIN\n  target_link_libraries(a PRIVATE fmt::fmt)\n# RELAY_LINK_LIBRARIES_END\n", out)
	})

	t.Run("PreservesCRLF", func(t *testing.T) {
		in := "a\r\n# RELAY_FIND_PACKAGES_BEGIN\r\n# RELAY_FIND_PACKAGES_END\r\n"
		out, _ := Rewrite(in, plan)
		assert.Equal(t, "a\r\n# RELAY_FIND_PACKAGES_BEGIN\r\n  find_package(fmt CONFIG REQUIRED)\r\n# RELAY_FIND_PACKAGES_END\r\n", out)
	})

	t.Run("NoTrailingNewline", func(t *testing.T) {
		in := "# RELAY_LINK_LIBRARIES_BEGIN\n# RELAY_LINK_LIBRARIES_END"
		out, missing := Rewrite(in, plan)
		assert.Equal(t, []Region{FindRegion}, missing)
		assert.Equal(t, "# RELAY_LINK_LIBRARIES_BEGIN\n  target_link_libraries(a PRIVATE fmt::fmt)\n# RELAY_LINK_LIBRARIES_END", out)
	})

	t.Run("StartWithoutEndLeavesTextAlone", func(t *testing.T) {
		in := "# RELAY_FIND_PACKAGES_BEGIN\nuser line\nanother user line\n"
		out, missing := Rewrite(in, plan)
		assert.Equal(t, in, out)
		assert.Equal(t, []Region{FindRegion, LinkRegion}, missing)
	})

	t.Run("OverlappingRegionIsSkipped", func(t *testing.T) {
		in := "# RELAY_FIND_PACKAGES_BEGIN\n# RELAY_LINK_LIBRARIES_BEGIN\n# RELAY_LINK_LIBRARIES_END\n# RELAY_FIND_PACKAGES_END\n"
		out, missing := Rewrite(in, plan)
		assert.Equal(t, []Region{LinkRegion}, missing)
		assert.Equal(t, "# RELAY_FIND_PACKAGES_BEGIN\n  find_package(fmt CONFIG REQUIRED)\n# RELAY_FIND_PACKAGES_END\n", out)
	})

	t.Run("Empty", func(t *testing.T) {
		out, missing := Rewrite("", plan)
		assert.Empty(t, out)
		assert.Len(t, missing, 2)
	})
}

// outsideRegions returns the lines of content that are not strictly inside a
// located region.
func outsideRegions(content string) []string {
	lines := splitLines(content)
	inside := make([]bool, len(lines))
	for _, r := range []Region{FindRegion, LinkRegion} {
		if start, end, ok := locate(lines, r); ok {
			for i := start + 1; i < end; i++ {
				inside[i] = true
			}
		}
	}
	var out []string
	for i, l := range lines {
		if !inside[i] {
			out = append(out, l)
		}
	}
	return out
}

func TestRewriteRegionIsolation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	userLines := []string{
		"project(x)\n", "\n", "# comment\n", "set(FOO bar)\r\n", "  indented(\t)\n",
		"if(WIN32)\n", "endif()\n", "find_package(Threads)\n", "target_link_libraries(x PRIVATE m)\n",
	}
	randomLines := func(n int) string {
		var b strings.Builder
		for i := 0; i < n; i++ {
			b.WriteString(userLines[rng.Intn(len(userLines))])
		}
		return b.String()
	}

	for i := 0; i < 200; i++ {
		script := randomLines(rng.Intn(5)) +
			"# RELAY_FIND_PACKAGES_BEGIN\n" + randomLines(rng.Intn(3)) + "# RELAY_FIND_PACKAGES_END\n" +
			randomLines(rng.Intn(5)) +
			"# RELAY_LINK_LIBRARIES_BEGIN\n" + randomLines(rng.Intn(3)) + "# RELAY_LINK_LIBRARIES_END\n" +
			randomLines(rng.Intn(5))

		plan := Plan{}
		for j := 0; j < rng.Intn(4); j++ {
			plan.Find = append(plan.Find, fmt.Sprintf("find_package(dep%d)", j))
		}
		if len(plan.Find) > 0 {
			plan.Link = []string{"target_link_libraries(x PRIVATE dep)"}
		}

		out, missing := Rewrite(script, plan)
		require.Empty(t, missing)
		assert.Equal(t, outsideRegions(script), outsideRegions(out), "iteration %d", i)
	}
}

func TestPatchKeepsFileMode(t *testing.T) {
	root := newProject(t, scaffoldScript, "fmt")
	require.NoError(t, os.Chmod(ScriptPath(root), 0600))

	_, err := Patch(root)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(root, ScriptName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
