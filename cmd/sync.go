package cmd

import (
	"fmt"

	"github.com/relaybuild/relay/pkg/project"
	"github.com/spf13/cobra"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Regenerate vcpkg.json and CMakeLists.txt sections from Relay.toml",
		Long: `Regenerate vcpkg.json and the relay-managed sections of CMakeLists.txt from
Relay.toml. Use it after editing Relay.toml by hand or after a failed add/remove.`,
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

			result, err := project.Sync(root)
			if err != nil {
				return err
			}
			if s.opts.JSONOutput {
				if err := printJSON(cmd.OutOrStdout(), newSyncReport(result)); err != nil {
					return err
				}
			} else {
				s.printSync(result)
			}
			if !result.OK() {
				return fmt.Errorf("%d artifact(s) could not be updated", len(result.Stale))
			}
			return nil
		},
	}
}
