package cmd

import (
	"os"

	"github.com/relaybuild/relay/pkg/build"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var release bool

	cmd := &cobra.Command{
		Use:     "run [-- args...]",
		Aliases: []string{"r"},
		Short:   "Build and run the package executable",
		Long: `Build the project like 'relay build' and then run the executable named by
project.main_executable (or project.name). Arguments after '--' are passed to it.

Example:
  relay run -- --input data.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			plan, err := s.build(cmd, release, false)
			if err != nil {
				return err
			}

			exe := build.ExecutablePath(plan, s.tools(release))
			s.logger.Debugf("Running %s", exe)
			code, err := build.Exec(cmd.Context(), exe, args, s.env.WorkDir, os.Stdin, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if code != 0 {
				return &ExitError{Code: code}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&release, "release", false, "Build with CMAKE_BUILD_TYPE=Release")
	return cmd
}
