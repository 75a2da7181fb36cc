package resolve

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnknownPlatform is returned when no triplet was given and the OS has no vcpkg name.
var ErrUnknownPlatform = errors.New("unknown platform")

// Sources a triplet can come from.
const (
	TripletFromFlag  = "flag"
	TripletFromEnv   = "env"
	TripletFromGuess = "guess"
)

// Triplet is a resolved vcpkg target triplet.
type Triplet struct {
	Value   string
	Guessed bool
	Source  string
}

func (t Triplet) String() string {
	return t.Value
}

// ResolveTriplet picks the target triplet: explicit first, then
// VCPKG_DEFAULT_TRIPLET, then a guess from the platform.
func (c Context) ResolveTriplet(explicit string) (Triplet, error) {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return Triplet{Value: strings.ToLower(explicit), Source: TripletFromFlag}, nil
	}
	if env := strings.TrimSpace(c.Getenv(EnvDefaultTriplet)); env != "" {
		return Triplet{Value: strings.ToLower(env), Source: TripletFromEnv}, nil
	}

	var osName string
	switch c.GOOS {
	case "windows":
		osName = "windows"
	case "linux":
		osName = "linux"
	case "darwin":
		osName = "osx"
	default:
		return Triplet{}, fmt.Errorf("%w: cannot guess a vcpkg triplet for %s/%s; pass --toolchain or set %s",
			ErrUnknownPlatform, c.GOOS, c.GOARCH, EnvDefaultTriplet)
	}

	var arch string
	switch c.GOARCH {
	case "amd64":
		arch = "x64"
	case "386":
		arch = "x86"
	default:
		arch = c.GOARCH
	}
	return Triplet{Value: arch + "-" + osName, Guessed: true, Source: TripletFromGuess}, nil
}

// BuildDir returns the cmake binary directory for triplet under root.
func BuildDir(root, triplet string) string {
	return filepath.Join(root, "build", strings.ReplaceAll(triplet, "-", "_"))
}
