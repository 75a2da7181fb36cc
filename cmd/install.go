package cmd

import (
	"github.com/relaybuild/relay/pkg/build"
	"github.com/relaybuild/relay/pkg/project"
	"github.com/spf13/cobra"
)

func newInstallCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the dependencies with vcpkg",
		Long: `Write vcpkg.json from Relay.toml and run 'vcpkg install' for the target triplet
without configuring or building the project.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			root, err := s.projectRoot()
			if err != nil {
				return err
			}
			plan, err := project.PrepareBuild(s.env, root, s.opts.Toolchain)
			if err != nil {
				return err
			}
			return s.runSteps(cmd, build.InstallSteps(plan, s.tools(false)), dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the commands without running them")
	return cmd
}
