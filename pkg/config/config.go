// Package config loads the optional per-user relay settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/relaybuild/relay/pkg/logging"
	"github.com/relaybuild/relay/pkg/resolve"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "RELAY_CONFIG"

var log = logging.NewLogger("config")

// Config holds user defaults. Zero values mean "not configured".
type Config struct {
	VcpkgRoot      string `toml:"vcpkg_root"`
	DefaultTriplet string `toml:"default_triplet"`
	Generator      string `toml:"generator"`
	BuildType      string `toml:"build_type"`
	CMake          string `toml:"cmake"`
	Vcpkg          string `toml:"vcpkg"`
	Jobs           int    `toml:"jobs"`

	// Path is the file the values were read from, empty when none existed.
	Path string `toml:"-"`
}

// DefaultPath returns the config file location for ctx: RELAY_CONFIG, then
// $XDG_CONFIG_HOME/relay/config.toml, then ~/.config/relay/config.toml.
func DefaultPath(ctx resolve.Context) (string, error) {
	if p := ctx.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	if xdg := ctx.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "relay", "config.toml"), nil
	}
	home := ctx.Getenv("HOME")
	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
	}
	return filepath.Join(home, ".config", "relay", "config.toml"), nil
}

// Load reads the config file for ctx. A missing file yields an empty Config.
func Load(ctx resolve.Context) (*Config, error) {
	path, err := DefaultPath(ctx)
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads path. A missing file yields an empty Config.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		log.WithField("path", path).Warnf("Ignoring unknown config keys: %s", strings.Join(keys, ", "))
	}
	if cfg.Jobs < 0 {
		return nil, fmt.Errorf("failed to parse config file %s: jobs must not be negative", path)
	}
	cfg.Path = path
	return cfg, nil
}

// Apply fills VCPKG_ROOT and VCPKG_DEFAULT_TRIPLET in ctx from the config
// when the environment does not already set them.
func (c *Config) Apply(ctx resolve.Context) resolve.Context {
	if ctx.Getenv(resolve.EnvVcpkgRoot) == "" {
		ctx = ctx.WithEnv(resolve.EnvVcpkgRoot, expandHome(c.VcpkgRoot, ctx.Getenv("HOME")))
	}
	if ctx.Getenv(resolve.EnvDefaultTriplet) == "" {
		ctx = ctx.WithEnv(resolve.EnvDefaultTriplet, c.DefaultTriplet)
	}
	return ctx
}

func expandHome(path, home string) string {
	if home == "" || !strings.HasPrefix(path, "~") {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
