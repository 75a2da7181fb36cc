package manifest

import "errors"

var (
	// ErrManifestNotFound is returned when Relay.toml does not exist.
	ErrManifestNotFound = errors.New("manifest not found")
	// ErrManifestParse is returned for invalid TOML or a malformed section.
	ErrManifestParse = errors.New("failed to parse manifest")
	// ErrManifestWrite is returned when the manifest cannot be written.
	ErrManifestWrite = errors.New("failed to write manifest")
	// ErrDependencyNotFound is returned when removing a name that is not declared.
	ErrDependencyNotFound = errors.New("dependency not found")
	// ErrInvalidConstraint is returned for a version constraint that does not parse.
	ErrInvalidConstraint = errors.New("invalid version constraint")
	// ErrInvalidVersion is returned for a project version that is not semver.
	ErrInvalidVersion = errors.New("invalid project version")
)
