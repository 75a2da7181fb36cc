package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/relaybuild/relay/pkg/resolve"
	"github.com/spf13/cobra"
)

func newCleanCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove build output",
		Long: `Remove build/<triplet> for the target triplet, or the whole build/ directory
with --all.`,
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

			target := filepath.Join(root, "build")
			if !all {
				triplet, err := s.env.ResolveTriplet(s.opts.Toolchain)
				if err != nil {
					return err
				}
				target = resolve.BuildDir(root, triplet.Value)
			}

			if _, err := os.Stat(target); os.IsNotExist(err) {
				s.out.Info("Nothing to clean at %s", target)
				return nil
			}
			if err := os.RemoveAll(target); err != nil {
				return fmt.Errorf("failed to remove %s: %w", target, err)
			}
			s.out.Success("Removed %s", target)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Remove build output for every triplet")
	return cmd
}
