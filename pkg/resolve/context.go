// Package resolve locates the project root, the vcpkg installation and the
// target triplet from an explicit snapshot of the process environment.
package resolve

import (
	"os"
	"runtime"
	"strings"
)

// Environment variables consulted during resolution.
const (
	EnvVcpkgRoot      = "VCPKG_ROOT"
	EnvDefaultTriplet = "VCPKG_DEFAULT_TRIPLET"
	EnvPath           = "PATH"
)

// Context is everything resolution is allowed to look at.
type Context struct {
	WorkDir string
	Env     map[string]string
	GOOS    string
	GOARCH  string
}

// FromProcess snapshots the current working directory, environment and platform.
func FromProcess() (Context, error) {
	wd, err := os.Getwd()
	if err != nil {
		return Context{}, err
	}
	return Context{
		WorkDir: wd,
		Env:     EnvMap(os.Environ()),
		GOOS:    runtime.GOOS,
		GOARCH:  runtime.GOARCH,
	}, nil
}

// EnvMap converts KEY=VALUE pairs into a map. Later entries win.
func EnvMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = value
	}
	return env
}

// Getenv returns the snapshot value of key, or "" when unset.
func (c Context) Getenv(key string) string {
	if c.Env == nil {
		return ""
	}
	return c.Env[key]
}

// WithEnv returns a copy of c with key set to value in the environment
// snapshot. An empty value leaves the snapshot untouched.
func (c Context) WithEnv(key, value string) Context {
	if value == "" {
		return c
	}
	env := make(map[string]string, len(c.Env)+1)
	for k, v := range c.Env {
		env[k] = v
	}
	env[key] = value
	c.Env = env
	return c
}

// Environ renders the snapshot back into KEY=VALUE pairs for child processes.
func (c Context) Environ() []string {
	out := make([]string, 0, len(c.Env))
	for k, v := range c.Env {
		out = append(out, k+"="+v)
	}
	return out
}
