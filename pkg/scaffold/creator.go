// Package scaffold creates new relay projects on disk.
package scaffold

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/relaybuild/relay/pkg/cmake"
	"github.com/relaybuild/relay/pkg/manifest"
	"github.com/relaybuild/relay/pkg/mirror"
	"github.com/relaybuild/relay/pkg/templates"
	"github.com/sirupsen/logrus"
)

var (
	// ErrInvalidName is returned for project names that cannot be used as a CMake target.
	ErrInvalidName = errors.New("invalid project name")
	// ErrDirectoryExists is returned when the project directory is already present.
	ErrDirectoryExists = errors.New("directory already exists")
)

var validName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.-]*$`)

type Creator struct {
	logger   *logrus.Logger
	tmpl     *templates.Manager
	renderer *templates.Renderer
}

type CreateOptions struct {
	Name         string
	ParentDir    string
	Language     templates.Language
	TemplatePath string
	DryRun       bool
}

// Result describes the created (or, in dry-run mode, planned) project.
type Result struct {
	Path   string
	Files  []string
	DryRun bool
}

type creationState struct {
	dirCreated bool
}

func NewCreator(logger *logrus.Logger) *Creator {
	return &Creator{
		logger:   logger,
		tmpl:     templates.NewManager(),
		renderer: templates.NewRenderer(),
	}
}

// ValidateName checks that name can serve as directory, project and target name.
func ValidateName(name string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("%w '%s': use letters, digits, '-', '_' or '.', starting with a letter", ErrInvalidName, name)
	}
	return nil
}

func (c *Creator) Create(ctx context.Context, opts CreateOptions) (*Result, error) {
	if err := c.validate(opts); err != nil {
		return nil, err
	}

	path := filepath.Join(opts.ParentDir, opts.Name)
	data := templates.NewTemplateData(opts.Name, manifest.DefaultVersion, opts.Language)

	if opts.DryRun {
		return c.dryRun(path, data, opts), nil
	}

	state := &creationState{}
	if err := os.Mkdir(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create project directory %s: %w", path, err)
	}
	state.dirCreated = true

	files, err := c.generate(ctx, path, data, opts)
	if err != nil {
		c.rollback(state, path)
		return nil, err
	}
	return &Result{Path: path, Files: files}, nil
}

func (c *Creator) validate(opts CreateOptions) error {
	if err := ValidateName(opts.Name); err != nil {
		return err
	}
	path := filepath.Join(opts.ParentDir, opts.Name)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrDirectoryExists, path)
	}
	return nil
}

func (c *Creator) generate(ctx context.Context, path string, data templates.TemplateData, opts CreateOptions) ([]string, error) {
	var files []string
	if opts.TemplatePath != "" {
		rendered, err := c.generateFromExternalTemplate(ctx, path, data, opts.TemplatePath)
		if err != nil {
			return nil, err
		}
		files = rendered
	} else {
		for _, f := range c.tmpl.Files(data) {
			if err := c.tmpl.GenerateFile(f.Template, filepath.Join(path, f.Output), data); err != nil {
				return nil, fmt.Errorf("failed to write %s: %w", f.Output, err)
			}
			c.logger.Debugf("Created %s", f.Output)
			files = append(files, f.Output)
		}
	}

	if !manifest.Exists(path) {
		if err := manifest.Save(manifest.Path(path), manifest.New(data.ProjectName)); err != nil {
			return nil, err
		}
		files = append(files, manifest.FileName)
	}
	if _, err := os.Stat(cmake.ScriptPath(path)); err != nil {
		c.logger.Warnf("Template has no %s; relay build will not work until one is added", cmake.ScriptName)
	}

	if _, err := mirror.Regenerate(path); err != nil {
		return nil, err
	}
	files = append(files, mirror.FileName)
	return files, nil
}

func (c *Creator) generateFromExternalTemplate(ctx context.Context, path string, data templates.TemplateData, source string) ([]string, error) {
	fetcher := templates.NewFetcher(source)
	defer func() {
		if err := fetcher.Cleanup(); err != nil {
			c.logger.Debugf("Template cleanup: %v", err)
		}
	}()

	dir, err := fetcher.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	c.logger.Debugf("Rendering template from %s", dir)
	files, err := c.renderer.Render(dir, path, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render template %s: %w", source, err)
	}
	return files, nil
}

func (c *Creator) rollback(state *creationState, path string) {
	if !state.dirCreated {
		return
	}
	c.logger.Warnf("Project creation failed; removing %s", path)
	if err := os.RemoveAll(path); err != nil {
		c.logger.Errorf("Failed to remove directory: %v", err)
	}
}

func (c *Creator) dryRun(path string, data templates.TemplateData, opts CreateOptions) *Result {
	result := &Result{Path: path, DryRun: true}
	if opts.TemplatePath != "" {
		result.Files = []string{"(files from " + opts.TemplatePath + ")", manifest.FileName, mirror.FileName}
		return result
	}
	for _, f := range c.tmpl.Files(data) {
		result.Files = append(result.Files, f.Output)
	}
	result.Files = append(result.Files, mirror.FileName)
	return result
}
