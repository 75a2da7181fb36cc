// Package templates renders the files of a new relay project.
package templates

import (
	"embed"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed files/*
var templateFiles embed.FS

// Language is the source language of a scaffolded project.
type Language string

const (
	LangC   Language = "c"
	LangCPP Language = "cpp"
)

// ParseLanguage accepts c, cpp and the usual aliases.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "c":
		return LangC, nil
	case "cpp", "c++", "cxx":
		return LangCPP, nil
	}
	return "", fmt.Errorf("unsupported language '%s' (want c or cpp)", s)
}

type TemplateData struct {
	ProjectName   string
	Version       string
	Language      Language
	CMakeLanguage string // C or CXX
	Standard      string
	SourceExt     string
	IncludeGuard  string
}

// NewTemplateData fills the derived fields for name and lang.
func NewTemplateData(name, version string, lang Language) TemplateData {
	data := TemplateData{
		ProjectName:  name,
		Version:      version,
		Language:     lang,
		IncludeGuard: IncludeGuard(name),
	}
	if lang == LangCPP {
		data.CMakeLanguage, data.Standard, data.SourceExt = "CXX", "17", "cpp"
	} else {
		data.CMakeLanguage, data.Standard, data.SourceExt = "C", "11", "c"
	}
	return data
}

// IncludeGuard turns a project name into a header guard macro.
func IncludeGuard(name string) string {
	r := strings.NewReplacer("-", "_", ".", "_")
	return strings.ToUpper(r.Replace(name)) + "_H"
}

// File pairs an embedded template with its path inside the project.
type File struct {
	Template string
	Output   string
}

type Manager struct {
	templates map[string]*template.Template
}

func NewManager() *Manager {
	m := &Manager{
		templates: make(map[string]*template.Template),
	}
	m.loadTemplates()
	return m
}

func (m *Manager) loadTemplates() {
	entries, err := templateFiles.ReadDir("files")
	if err != nil {
		panic(fmt.Sprintf("failed to read embedded templates: %v", err))
	}
	for _, e := range entries {
		content, err := templateFiles.ReadFile(path.Join("files", e.Name()))
		if err != nil {
			panic(fmt.Sprintf("failed to read template %s: %v", e.Name(), err))
		}
		tmpl, err := template.New(e.Name()).Parse(string(content))
		if err != nil {
			panic(fmt.Sprintf("failed to parse template %s: %v", e.Name(), err))
		}
		m.templates[e.Name()] = tmpl
	}
}

// Files lists what a project with data gets, in creation order.
func (m *Manager) Files(data TemplateData) []File {
	main := File{Template: "main.c.tmpl", Output: filepath.Join("src", "main.c")}
	if data.Language == LangCPP {
		main = File{Template: "main.cpp.tmpl", Output: filepath.Join("src", "main.cpp")}
	}
	return []File{
		main,
		{Template: "header.h.tmpl", Output: filepath.Join("include", data.ProjectName+".h")},
		{Template: "CMakeLists.txt.tmpl", Output: "CMakeLists.txt"},
		{Template: "Relay.toml.tmpl", Output: "Relay.toml"},
		{Template: "gitignore.tmpl", Output: ".gitignore"},
		{Template: "clang-format.tmpl", Output: ".clang-format"},
	}
}

func (m *Manager) GenerateFile(templateName, outputPath string, data TemplateData) error {
	tmpl, ok := m.templates[templateName]
	if !ok {
		return fmt.Errorf("template %s not found", templateName)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return err
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	return tmpl.Execute(f, data)
}
