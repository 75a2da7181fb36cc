package cmd

import (
	"fmt"
	"time"

	"github.com/relaybuild/relay/pkg/build"
	"github.com/relaybuild/relay/pkg/project"
	"github.com/spf13/cobra"
)

func newBuildCmd() *cobra.Command {
	var (
		release bool
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:     "build",
		Aliases: []string{"b"},
		Short:   "Compile the current package",
		Long: `Install dependencies with vcpkg, configure the project with cmake and build it
into build/<triplet>.

The triplet comes from --toolchain, then VCPKG_DEFAULT_TRIPLET, then a guess
from the host platform.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			_, err = s.build(cmd, release, dryRun)
			return err
		},
	}
	cmd.Flags().BoolVar(&release, "release", false, "Build with CMAKE_BUILD_TYPE=Release")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the commands without running them")
	return cmd
}

// build prepares the project and runs install, configure and build.
func (s *session) build(cmd *cobra.Command, release, dryRun bool) (*project.BuildPlan, error) {
	root, err := s.projectRoot()
	if err != nil {
		return nil, err
	}
	plan, err := project.PrepareBuild(s.env, root, s.opts.Toolchain)
	if err != nil {
		return nil, err
	}
	s.logger.WithField("triplet", plan.Triplet.Value).Debugf("Building into %s", plan.BuildDir)

	if err := s.runSteps(cmd, build.BuildSteps(plan, s.tools(release)), dryRun); err != nil {
		return nil, err
	}
	return plan, nil
}

// runSteps executes steps, streaming their output with --verbose and showing
// it only on failure otherwise.
func (s *session) runSteps(cmd *cobra.Command, steps []build.Step, dryRun bool) error {
	if dryRun {
		for _, step := range steps {
			s.out.Println(step.String())
		}
		return nil
	}

	start := time.Now()
	events := build.Run(cmd.Context(), steps, &build.RunOptions{Env: s.env.Environ()})
	for ev := range events {
		switch ev.Type {
		case build.EventStart:
			s.out.Info("%s %s", s.out.Name(ev.Step.Name), s.out.Faint(ev.Step.String()))
		case build.EventOutput:
			if s.opts.Verbose {
				s.out.Println("  " + ev.OutputLine)
			}
		case build.EventFinish:
			if ev.Result.Err != nil {
				if !s.opts.Verbose && len(ev.Result.Output) > 0 {
					fmt.Fprint(cmd.ErrOrStderr(), string(ev.Result.Output))
				}
				build.Collect(events)
				return ev.Result.Err
			}
			s.logger.Debugf("%s finished in %s", ev.Step.Name, ev.Result.Duration.Round(time.Millisecond))
		}
	}
	s.out.Success("Finished in %s", time.Since(start).Round(time.Millisecond))
	return nil
}
