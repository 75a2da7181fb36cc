// Package project ties the manifest, the vcpkg mirror and the build script
// together. Every mutation saves Relay.toml once and then derives the other
// two artifacts from it.
package project

import (
	"errors"
	"fmt"
	"os"

	"github.com/relaybuild/relay/pkg/cmake"
	"github.com/relaybuild/relay/pkg/logging"
	"github.com/relaybuild/relay/pkg/manifest"
	"github.com/relaybuild/relay/pkg/mirror"
	"github.com/relaybuild/relay/pkg/resolve"
)

var log = logging.NewLogger("project")

// StaleArtifact is a derived file that could not be brought up to date.
type StaleArtifact struct {
	Path string
	Err  error
}

// SyncResult reports the derived artifacts after a sync.
type SyncResult struct {
	Mirror *mirror.Manifest
	Patch  *cmake.PatchResult
	Stale  []StaleArtifact
}

// OK reports whether every derived artifact is current.
func (r *SyncResult) OK() bool {
	return r == nil || len(r.Stale) == 0
}

// AddResult reports the outcome of AddDependencies.
type AddResult struct {
	Added            []string
	AlreadyPresent   []string
	ManifestCreated  bool
	ManifestModified bool
	Sync             *SyncResult
}

// RemoveResult reports the outcome of RemoveDependencies.
type RemoveResult struct {
	Removed  []string
	NotFound []string
	Sync     *SyncResult
}

// AddDependencies adds each "name[@constraint]" spec to the manifest at root.
// A missing manifest is synthesized from the directory name. The manifest is
// saved once; the mirror and build script are then regenerated. Failures of
// the derived artifacts are reported in the result and never undo the save.
func AddDependencies(root string, specs []string) (*AddResult, error) {
	type parsed struct{ name, constraint string }
	var wanted []parsed
	for _, spec := range specs {
		name, constraint := manifest.ParseSpec(spec)
		if name == "" {
			return nil, fmt.Errorf("invalid dependency '%s': name is empty", spec)
		}
		if err := manifest.ValidateConstraint(constraint); err != nil {
			return nil, err
		}
		wanted = append(wanted, parsed{name, constraint})
	}

	path := manifest.Path(root)
	result := &AddResult{}
	m, err := manifest.Load(path)
	if errors.Is(err, manifest.ErrManifestNotFound) {
		m = manifest.Synthesize(root)
		result.ManifestCreated = true
		log.WithField("path", path).Infof("No %s found; creating one for '%s'", manifest.FileName, m.Project.Name)
	} else if err != nil {
		return nil, err
	}

	for _, dep := range wanted {
		if m.AddDependency(dep.name, dep.constraint) {
			result.Added = append(result.Added, dep.name)
		} else {
			result.AlreadyPresent = append(result.AlreadyPresent, dep.name)
		}
	}

	if len(result.Added) == 0 && !result.ManifestCreated {
		return result, nil
	}
	if err := manifest.Save(path, m); err != nil {
		return nil, err
	}
	result.ManifestModified = true
	result.Sync = syncDerived(root)
	return result, nil
}

// RemoveDependencies removes each name from the manifest at root. Nothing is
// written and nothing is regenerated when no name was present.
func RemoveDependencies(root string, names []string) (*RemoveResult, error) {
	path := manifest.Path(root)
	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}

	result := &RemoveResult{}
	for _, name := range names {
		if err := m.RemoveDependency(name); err != nil {
			if errors.Is(err, manifest.ErrDependencyNotFound) {
				result.NotFound = append(result.NotFound, name)
				continue
			}
			return nil, err
		}
		result.Removed = append(result.Removed, name)
	}

	if len(result.Removed) == 0 {
		return result, nil
	}
	if err := manifest.Save(path, m); err != nil {
		return nil, err
	}
	result.Sync = syncDerived(root)
	return result, nil
}

// Sync regenerates vcpkg.json and the build script regions from the manifest
// at root. A missing or unreadable manifest is an error; failures of the
// derived artifacts are reported in the result.
func Sync(root string) (*SyncResult, error) {
	if _, err := manifest.Load(manifest.Path(root)); err != nil {
		return nil, err
	}
	return syncDerived(root), nil
}

func syncDerived(root string) *SyncResult {
	result := &SyncResult{}

	mf, err := mirror.Regenerate(root)
	if err != nil {
		result.Stale = append(result.Stale, StaleArtifact{Path: mirror.Path(root), Err: err})
	} else {
		result.Mirror = mf
	}

	patch, err := cmake.Patch(root)
	switch {
	case errors.Is(err, cmake.ErrBuildScriptNotFound):
		log.WithField("path", cmake.ScriptPath(root)).Warnf("No %s found; skipping build script update", cmake.ScriptName)
	case err != nil:
		result.Stale = append(result.Stale, StaleArtifact{Path: cmake.ScriptPath(root), Err: err})
	default:
		result.Patch = patch
	}

	for _, s := range result.Stale {
		log.WithError(s.Err).Errorf("%s is out of date; run 'relay sync' after fixing the problem", s.Path)
	}
	return result
}

// BuildPlan is everything the build runner needs for one project.
type BuildPlan struct {
	Root     string
	Manifest *manifest.Manifest
	Mirror   *mirror.Manifest
	Triplet  resolve.Triplet
	BuildDir string
	Vcpkg    resolve.Root
}

// PrepareBuild loads the manifest, resolves the triplet and vcpkg, writes the
// build-mode vcpkg.json and creates the build directory.
func PrepareBuild(ctx resolve.Context, root, explicitTriplet string) (*BuildPlan, error) {
	m, err := manifest.Load(manifest.Path(root))
	if err != nil {
		return nil, err
	}

	triplet, err := ctx.ResolveTriplet(explicitTriplet)
	if err != nil {
		return nil, err
	}
	if triplet.Guessed {
		log.WithField("triplet", triplet.Value).Warnf("No --toolchain given and %s not set; guessing from the platform", resolve.EnvDefaultTriplet)
	}

	vcpkg, err := ctx.FindVcpkgRoot()
	if err != nil {
		return nil, err
	}

	mf, err := mirror.GenerateForBuild(root, m)
	if err != nil {
		return nil, err
	}

	buildDir := resolve.BuildDir(root, triplet.Value)
	if err := os.MkdirAll(buildDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create build directory %s: %w", buildDir, err)
	}
	log.WithField("path", buildDir).Debug("Prepared build directory")

	return &BuildPlan{
		Root:     root,
		Manifest: m,
		Mirror:   mf,
		Triplet:  triplet,
		BuildDir: buildDir,
		Vcpkg:    vcpkg,
	}, nil
}
