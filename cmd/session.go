package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/relaybuild/relay/pkg/build"
	"github.com/relaybuild/relay/pkg/cli"
	"github.com/relaybuild/relay/pkg/config"
	"github.com/relaybuild/relay/pkg/logging"
	"github.com/relaybuild/relay/pkg/resolve"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// session is the per-invocation state shared by the subcommands.
type session struct {
	opts   cli.Options
	logger *logrus.Logger
	out    *printer
	cfg    *config.Config
	env    resolve.Context
}

func newSession(cmd *cobra.Command) (*session, error) {
	opts := cli.GetOptions(cmd)
	logger := cli.GetLogger(cmd)
	logging.SetColor(colorEnabled(cmd.ErrOrStderr(), opts.NoColor))

	env, err := resolve.FromProcess()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	if f := cmd.Flag("dir"); f != nil && f.Value.String() != "" {
		dir, err := filepath.Abs(f.Value.String())
		if err != nil {
			return nil, fmt.Errorf("failed to resolve --dir: %w", err)
		}
		env.WorkDir = dir
	}

	cfg, err := config.Load(env)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		logger.WithField("path", cfg.Path).Debug("Loaded user config")
	}

	return &session{
		opts:   opts,
		logger: logger,
		out:    newPrinter(cmd.OutOrStdout(), opts.NoColor),
		cfg:    cfg,
		env:    cfg.Apply(env),
	}, nil
}

// projectRoot finds the enclosing relay project.
func (s *session) projectRoot() (string, error) {
	root, err := s.env.FindProjectRoot()
	if err != nil {
		return "", err
	}
	s.logger.WithField("path", root).Debug("Found project root")
	return root, nil
}

// projectRootOrWorkDir falls back to the working directory outside a project.
func (s *session) projectRootOrWorkDir() (string, error) {
	root, err := s.projectRoot()
	if errors.Is(err, resolve.ErrProjectRootNotFound) {
		return s.env.WorkDir, nil
	}
	return root, err
}

// tools merges config values with the command flags.
func (s *session) tools(release bool) build.Tools {
	t := build.Tools{
		CMake:     s.cfg.CMake,
		Vcpkg:     s.cfg.Vcpkg,
		Generator: s.cfg.Generator,
		BuildType: s.cfg.BuildType,
		Jobs:      s.cfg.Jobs,
		GOOS:      s.env.GOOS,
	}
	if release {
		t.BuildType = build.Release
	}
	return t
}
