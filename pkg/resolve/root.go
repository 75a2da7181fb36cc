package resolve

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/relaybuild/relay/pkg/cmake"
	"github.com/relaybuild/relay/pkg/logging"
	"github.com/relaybuild/relay/pkg/manifest"
)

var (
	// ErrProjectRootNotFound is returned when no ancestor holds both Relay.toml and CMakeLists.txt.
	ErrProjectRootNotFound = errors.New("project root not found")
	// ErrVcpkgRootNotFound is returned when neither VCPKG_ROOT nor PATH lead to vcpkg.
	ErrVcpkgRootNotFound = errors.New("vcpkg root not found")
)

var log = logging.NewLogger("resolve")

// Sources a vcpkg root can come from.
const (
	SourceEnv  = "env"
	SourcePath = "path"
)

// Toolchain file locations relative to a vcpkg root.
var (
	StandardToolchain = filepath.Join("scripts", "buildsystems", "vcpkg.cmake")
	HomebrewToolchain = filepath.Join("share", "vcpkg", "vcpkg.cmake")
)

// Root is a resolved vcpkg installation.
type Root struct {
	Path      string
	Toolchain string
	Source    string
}

// FindProjectRoot walks up from WorkDir and returns the closest directory that
// contains both Relay.toml and CMakeLists.txt.
func (c Context) FindProjectRoot() (string, error) {
	start, err := filepath.Abs(c.WorkDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	current := start
	for {
		if isFile(manifest.Path(current)) && isFile(cmake.ScriptPath(current)) {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return "", fmt.Errorf("%w: no directory containing %s and %s in %s or its parents",
		ErrProjectRootNotFound, manifest.FileName, cmake.ScriptName, start)
}

// FindVcpkgRoot resolves the vcpkg installation from VCPKG_ROOT, falling back
// to the directory holding the vcpkg executable on PATH.
func (c Context) FindVcpkgRoot() (Root, error) {
	if dir := c.Getenv(EnvVcpkgRoot); dir != "" {
		if toolchain, ok := toolchainIn(dir); ok {
			return Root{Path: dir, Toolchain: toolchain, Source: SourceEnv}, nil
		}
		log.WithField("path", dir).Warnf("%s is set but does not contain %s or %s", EnvVcpkgRoot, StandardToolchain, HomebrewToolchain)
	}

	exe := c.lookPath(c.vcpkgExecutable())
	if exe == "" {
		return Root{}, fmt.Errorf("%w: set %s or put vcpkg on PATH", ErrVcpkgRootNotFound, EnvVcpkgRoot)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	dir := filepath.Dir(exe)
	toolchain, ok := toolchainIn(dir)
	if !ok {
		toolchain = filepath.Join(dir, StandardToolchain)
	}
	log.WithField("path", dir).Debug("Found vcpkg on PATH")
	return Root{Path: dir, Toolchain: toolchain, Source: SourcePath}, nil
}

func (c Context) vcpkgExecutable() string {
	if c.GOOS == "windows" {
		return "vcpkg.exe"
	}
	return "vcpkg"
}

// lookPath searches the PATH entries of the snapshot for an executable file.
func (c Context) lookPath(name string) string {
	for _, dir := range filepath.SplitList(c.Getenv(EnvPath)) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		if c.GOOS != "windows" && info.Mode().Perm()&0111 == 0 {
			continue
		}
		return candidate
	}
	return ""
}

func toolchainIn(dir string) (string, bool) {
	for _, rel := range []string{StandardToolchain, HomebrewToolchain} {
		path := filepath.Join(dir, rel)
		if isFile(path) {
			return path, true
		}
	}
	return "", false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
