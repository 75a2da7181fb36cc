package templates

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Fetcher makes a template directory available on disk.
type Fetcher interface {
	// Fetch returns the directory to render from.
	Fetch(ctx context.Context, source string) (string, error)
	// Cleanup removes anything Fetch created.
	Cleanup() error
}

// NewFetcher picks a git or local fetcher for source.
func NewFetcher(source string) Fetcher {
	if IsGitURL(source) {
		return &GitFetcher{}
	}
	return &LocalFetcher{}
}

// LocalFetcher serves a template directory that already exists.
type LocalFetcher struct{}

func (f *LocalFetcher) Fetch(_ context.Context, source string) (string, error) {
	info, err := os.Stat(source)
	if err != nil {
		return "", fmt.Errorf("template path does not exist: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("template path is not a directory: %s", source)
	}
	return templateRoot(source), nil
}

func (f *LocalFetcher) Cleanup() error {
	return nil
}

// GitFetcher shallow-clones a repository into a temporary directory.
type GitFetcher struct {
	tempDir string
}

func (f *GitFetcher) Fetch(ctx context.Context, url string) (string, error) {
	tempDir, err := os.MkdirTemp("", "relay-template-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	f.tempDir = tempDir

	cloneDir := filepath.Join(tempDir, "repo")
	cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", url, cloneDir)
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("failed to clone template repository %s: %w\nOutput: %s", url, err, string(output))
	}
	return templateRoot(cloneDir), nil
}

func (f *GitFetcher) Cleanup() error {
	if f.tempDir == "" {
		return nil
	}
	return os.RemoveAll(f.tempDir)
}

// templateRoot prefers a "template" subdirectory when dir has one.
func templateRoot(dir string) string {
	sub := filepath.Join(dir, "template")
	if info, err := os.Stat(sub); err == nil && info.IsDir() {
		return sub
	}
	return dir
}

// IsGitURL reports whether s names a remote repository rather than a path.
func IsGitURL(s string) bool {
	return strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "git://") ||
		strings.HasPrefix(s, "ssh://") ||
		strings.HasPrefix(s, "git@") ||
		strings.HasSuffix(s, ".git")
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
