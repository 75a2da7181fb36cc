package cmd

import (
	"github.com/relaybuild/relay/pkg/manifest"
	"github.com/relaybuild/relay/pkg/project"
	"github.com/spf13/cobra"
)

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>...",
		Aliases: []string{"rm"},
		Short:   "Remove dependencies from Relay.toml",
		Long: `Remove dependencies from Relay.toml, then regenerate vcpkg.json and the
relay-managed sections of CMakeLists.txt.

Names that are not declared are reported and skipped. When none of the names
is declared nothing is written.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			root, err := s.projectRoot()
			if err != nil {
				return err
			}

			result, err := project.RemoveDependencies(root, args)
			if err != nil {
				return err
			}

			if s.opts.JSONOutput {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"removed":   nonNil(result.Removed),
					"not_found": nonNil(result.NotFound),
					"sync":      newSyncReport(result.Sync),
				})
			}

			for _, name := range result.NotFound {
				s.out.Warn("Dependency '%s' not found in %s", name, manifest.FileName)
			}
			for _, name := range result.Removed {
				s.out.Success("Removed %s", s.out.Name(name))
			}
			s.printSync(result.Sync)
			return nil
		},
	}
}
