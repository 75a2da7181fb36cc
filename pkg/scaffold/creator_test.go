package scaffold

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/relaybuild/relay/pkg/cmake"
	"github.com/relaybuild/relay/pkg/manifest"
	"github.com/relaybuild/relay/pkg/mirror"
	"github.com/relaybuild/relay/pkg/templates"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestValidateName(t *testing.T) {
	for _, name := range []string{"hello", "my-app", "lib_v2", "a.b"} {
		assert.NoError(t, ValidateName(name), name)
	}
	for _, name := range []string{"", "1app", "-x", "has space", "../escape", "a/b"} {
		err := ValidateName(name)
		assert.True(t, errors.Is(err, ErrInvalidName), name)
	}
}

func TestCreate(t *testing.T) {
	creator := NewCreator(quietLogger())

	t.Run("CProject", func(t *testing.T) {
		parent := t.TempDir()
		result, err := creator.Create(context.Background(), CreateOptions{Name: "hello", ParentDir: parent, Language: templates.LangC})
		require.NoError(t, err)

		root := filepath.Join(parent, "hello")
		assert.Equal(t, root, result.Path)
		for _, f := range []string{"src/main.c", "include/hello.h", "CMakeLists.txt", "Relay.toml", ".gitignore", ".clang-format", "vcpkg.json"} {
			assert.FileExists(t, filepath.Join(root, f))
		}
		assert.Contains(t, result.Files, mirror.FileName)

		m, err := manifest.Load(manifest.Path(root))
		require.NoError(t, err)
		assert.Equal(t, "hello", m.Project.Name)
		assert.Equal(t, manifest.DefaultVersion, m.Project.Version)
		assert.Empty(t, m.Dependencies)

		vcpkg, err := mirror.Read(mirror.Path(root))
		require.NoError(t, err)
		assert.Empty(t, vcpkg.Dependencies)

		patch, err := cmake.Patch(root)
		require.NoError(t, err)
		assert.Empty(t, patch.MissingRegions, "scaffolded build script carries both marker pairs")
		assert.False(t, patch.Changed)
	})

	t.Run("CppProject", func(t *testing.T) {
		parent := t.TempDir()
		_, err := creator.Create(context.Background(), CreateOptions{Name: "app", ParentDir: parent, Language: templates.LangCPP})
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(parent, "app", "src", "main.cpp"))
		assert.NoFileExists(t, filepath.Join(parent, "app", "src", "main.c"))
	})

	t.Run("ExistingDirectory", func(t *testing.T) {
		parent := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(parent, "taken"), 0755))
		_, err := creator.Create(context.Background(), CreateOptions{Name: "taken", ParentDir: parent})
		assert.True(t, errors.Is(err, ErrDirectoryExists))
	})

	t.Run("DryRun", func(t *testing.T) {
		parent := t.TempDir()
		result, err := creator.Create(context.Background(), CreateOptions{Name: "dry", ParentDir: parent, DryRun: true})
		require.NoError(t, err)
		assert.True(t, result.DryRun)
		assert.Contains(t, result.Files, "CMakeLists.txt")
		assert.NoDirExists(t, filepath.Join(parent, "dry"))
	})

	t.Run("LocalTemplate", func(t *testing.T) {
		tmplDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(tmplDir, "CMakeLists.txt.tmpl"),
			[]byte("project({{.ProjectName}})\n# RELAY_FIND_PACKAGES_BEGIN\n# RELAY_FIND_PACKAGES_END\n"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(tmplDir, "notes.txt"), []byte("plain"), 0644))

		parent := t.TempDir()
		result, err := creator.Create(context.Background(), CreateOptions{Name: "custom", ParentDir: parent, TemplatePath: tmplDir})
		require.NoError(t, err)

		root := filepath.Join(parent, "custom")
		data, err := os.ReadFile(filepath.Join(root, "CMakeLists.txt"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "project(custom)")
		assert.FileExists(t, filepath.Join(root, "notes.txt"))
		assert.Contains(t, result.Files, manifest.FileName, "manifest is added when the template lacks one")
		assert.FileExists(t, mirror.Path(root))
	})

	t.Run("RollbackOnFailure", func(t *testing.T) {
		tmplDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(tmplDir, "broken.tmpl"), []byte("{{.Missing"), 0644))

		parent := t.TempDir()
		_, err := creator.Create(context.Background(), CreateOptions{Name: "broken", ParentDir: parent, TemplatePath: tmplDir})
		require.Error(t, err)
		assert.NoDirExists(t, filepath.Join(parent, "broken"))
	})

	t.Run("MissingTemplate", func(t *testing.T) {
		parent := t.TempDir()
		_, err := creator.Create(context.Background(), CreateOptions{Name: "x", ParentDir: parent, TemplatePath: filepath.Join(parent, "nope")})
		require.Error(t, err)
		assert.NoDirExists(t, filepath.Join(parent, "x"))
	})
}
