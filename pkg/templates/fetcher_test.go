package templates

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalFetcher_Fetch(t *testing.T) {
	tempDir := t.TempDir()

	withTemplateDir := filepath.Join(tempDir, "with-template")
	templateSubdir := filepath.Join(withTemplateDir, "template")
	if err := os.MkdirAll(templateSubdir, 0755); err != nil {
		t.Fatal(err)
	}
	withoutTemplateDir := filepath.Join(tempDir, "without-template")
	if err := os.MkdirAll(withoutTemplateDir, 0755); err != nil {
		t.Fatal(err)
	}
	fileInsteadOfDir := filepath.Join(tempDir, "file.txt")
	if err := os.WriteFile(fileInsteadOfDir, []byte("test"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name        string
		source      string
		expected    string
		expectError bool
	}{
		{"Directory with template subdirectory", withTemplateDir, templateSubdir, false},
		{"Directory without template subdirectory", withoutTemplateDir, withoutTemplateDir, false},
		{"Non-existent path", filepath.Join(tempDir, "non-existent"), "", true},
		{"File instead of directory", fileInsteadOfDir, "", true},
	}

	fetcher := &LocalFetcher{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := fetcher.Fetch(context.Background(), tt.source)
			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, result)
			}
		})
	}

	if err := fetcher.Cleanup(); err != nil {
		t.Errorf("Cleanup() error = %v", err)
	}
}

func TestIsGitURL(t *testing.T) {
	tests := map[string]bool{
		"https://github.com/acme/c-template.git": true,
		"git@github.com:acme/c-template.git":     true,
		"ssh://git@example.com/t":                true,
		"./templates/c":                          false,
		"/opt/relay/templates":                   false,
		"templates":                              false,
	}
	for in, want := range tests {
		if got := IsGitURL(in); got != want {
			t.Errorf("IsGitURL(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewFetcher(t *testing.T) {
	if _, ok := NewFetcher("https://example.com/t.git").(*GitFetcher); !ok {
		t.Error("expected GitFetcher for a URL")
	}
	if _, ok := NewFetcher("./local").(*LocalFetcher); !ok {
		t.Error("expected LocalFetcher for a path")
	}
	if err := (&GitFetcher{}).Cleanup(); err != nil {
		t.Errorf("Cleanup() on unused fetcher = %v", err)
	}
}
