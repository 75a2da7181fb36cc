package templates

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestRenderer_Render(t *testing.T) {
	tempDir := t.TempDir()
	templateDir := filepath.Join(tempDir, "template")
	if err := os.MkdirAll(filepath.Join(templateDir, "src"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(templateDir, ".git"), 0755); err != nil {
		t.Fatal(err)
	}

	files := map[string]string{
		"README.md.tmpl":           "# {{.ProjectName}} ({{.CMakeLanguage}})\n",
		"src/__name__.c.tmpl":      "/* {{.IncludeGuard}} */\n",
		"LICENSE":                  "MIT License {{.ProjectName}}",
		".git/HEAD":                "ref: refs/heads/main\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(templateDir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	targetDir := filepath.Join(tempDir, "output")
	written, err := NewRenderer().Render(templateDir, targetDir, NewTemplateData("demo-app", "0.1.0", LangC))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	sort.Strings(written)
	want := []string{"LICENSE", "README.md", filepath.Join("src", "demo-app.c")}
	if len(written) != len(want) {
		t.Fatalf("Render() wrote %v, want %v", written, want)
	}
	for i := range want {
		if written[i] != want[i] {
			t.Errorf("written[%d] = %s, want %s", i, written[i], want[i])
		}
	}

	checks := map[string]string{
		"README.md":                         "# demo-app (C)\n",
		filepath.Join("src", "demo-app.c"): "/* DEMO_APP_H */\n",
		"LICENSE":                           "MIT License {{.ProjectName}}",
	}
	for name, expected := range checks {
		content, err := os.ReadFile(filepath.Join(targetDir, name))
		if err != nil {
			t.Fatalf("Failed to read %s: %v", name, err)
		}
		if string(content) != expected {
			t.Errorf("%s = %q, want %q", name, content, expected)
		}
	}

	if _, err := os.Stat(filepath.Join(targetDir, ".git")); !os.IsNotExist(err) {
		t.Error(".git directory should not be rendered")
	}
}

func TestRenderer_InvalidTemplate(t *testing.T) {
	templateDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(templateDir, "bad.txt.tmpl"), []byte("{{.Nope"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewRenderer().Render(templateDir, t.TempDir(), TemplateData{}); err == nil {
		t.Error("expected parse error")
	}
}
