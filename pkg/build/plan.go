package build

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/relaybuild/relay/pkg/project"
)

// Build types understood by cmake.
const (
	Debug   = "Debug"
	Release = "Release"
)

// Tools configures how vcpkg and cmake are invoked.
type Tools struct {
	CMake     string // cmake executable, default "cmake"
	Vcpkg     string // vcpkg executable, default <vcpkg root>/vcpkg
	Generator string // optional -G value
	BuildType string // Debug or Release
	Jobs      int    // --parallel value, 0 lets cmake decide
	GOOS      string
}

func (t Tools) cmake() string {
	if t.CMake != "" {
		return t.CMake
	}
	return "cmake"
}

func (t Tools) buildType() string {
	if t.BuildType != "" {
		return t.BuildType
	}
	return Debug
}

func (t Tools) exeSuffix() string {
	if t.GOOS == "windows" {
		return ".exe"
	}
	return ""
}

// vcpkg returns the configured executable, the one inside the vcpkg root when
// present, or the bare name for a PATH lookup.
func (t Tools) vcpkg(plan *project.BuildPlan) string {
	if t.Vcpkg != "" {
		return t.Vcpkg
	}
	candidate := filepath.Join(plan.Vcpkg.Path, "vcpkg"+t.exeSuffix())
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		return candidate
	}
	return "vcpkg" + t.exeSuffix()
}

// InstallSteps installs the manifest dependencies for the plan's triplet.
func InstallSteps(plan *project.BuildPlan, tools Tools) []Step {
	return []Step{{
		Name:    "install",
		Dir:     plan.Root,
		Command: []string{tools.vcpkg(plan), "install", "--triplet", plan.Triplet.Value},
	}}
}

// BuildSteps installs dependencies, configures and builds the project.
func BuildSteps(plan *project.BuildPlan, tools Tools) []Step {
	configure := []string{
		tools.cmake(),
		"-S", plan.Root,
		"-B", plan.BuildDir,
		"-DCMAKE_TOOLCHAIN_FILE=" + plan.Vcpkg.Toolchain,
		"-DVCPKG_TARGET_TRIPLET=" + plan.Triplet.Value,
		"-DCMAKE_BUILD_TYPE=" + tools.buildType(),
	}
	if tools.Generator != "" {
		configure = append(configure, "-G", tools.Generator)
	}

	compile := []string{tools.cmake(), "--build", plan.BuildDir, "--config", tools.buildType()}
	if tools.Jobs > 0 {
		compile = append(compile, "--parallel", strconv.Itoa(tools.Jobs))
	}

	steps := InstallSteps(plan, tools)
	steps = append(steps,
		Step{Name: "configure", Dir: plan.Root, Command: configure},
		Step{Name: "build", Dir: plan.Root, Command: compile},
	)
	return steps
}

// ExecutablePath returns where the built executable lives. Multi-config
// generators put it in a per-configuration subdirectory.
func ExecutablePath(plan *project.BuildPlan, tools Tools) string {
	name := plan.Manifest.Executable() + tools.exeSuffix()
	single := filepath.Join(plan.BuildDir, name)
	if _, err := os.Stat(single); err == nil {
		return single
	}
	multi := filepath.Join(plan.BuildDir, tools.buildType(), name)
	if _, err := os.Stat(multi); err == nil {
		return multi
	}
	return single
}
