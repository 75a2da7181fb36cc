package templates

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// Renderer renders a user-supplied template directory into a project.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render walks templateDir and writes every file below targetDir. Files
// ending in .tmpl are executed with data and lose the suffix; the rest are
// copied. It returns the written paths relative to targetDir.
func (r *Renderer) Render(templateDir, targetDir string, data TemplateData) ([]string, error) {
	var written []string
	err := filepath.Walk(templateDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, err := filepath.Rel(templateDir, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		relPath = r.processPath(relPath, data)
		outputPath := filepath.Join(targetDir, relPath)

		if strings.HasSuffix(path, ".tmpl") {
			outputPath = strings.TrimSuffix(outputPath, ".tmpl")
			relPath = strings.TrimSuffix(relPath, ".tmpl")
			err = r.renderTemplateFile(path, outputPath, data)
		} else {
			err = r.copyFile(path, outputPath)
		}
		if err != nil {
			return err
		}
		written = append(written, relPath)
		return nil
	})
	return written, err
}

// processPath substitutes the project name into file and directory names.
func (r *Renderer) processPath(path string, data TemplateData) string {
	path = strings.ReplaceAll(path, "{{.ProjectName}}", data.ProjectName)
	path = strings.ReplaceAll(path, "__name__", data.ProjectName)
	return path
}

func (r *Renderer) renderTemplateFile(templatePath, outputPath string, data TemplateData) error {
	content, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read template file %s: %w", templatePath, err)
	}

	tmpl, err := template.New(filepath.Base(templatePath)).Parse(string(content))
	if err != nil {
		return fmt.Errorf("failed to parse template %s: %w", templatePath, err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", filepath.Dir(outputPath), err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", outputPath, err)
	}
	defer file.Close()

	if err := tmpl.Execute(file, data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", templatePath, err)
	}

	sourceInfo, err := os.Stat(templatePath)
	if err != nil {
		return err
	}
	return os.Chmod(outputPath, sourceInfo.Mode())
}

func (r *Renderer) copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", filepath.Dir(dst), err)
	}
	return copyFile(src, dst)
}
