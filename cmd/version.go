package cmd

import (
	"fmt"
	"runtime"

	"github.com/relaybuild/relay/pkg/cli"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cli.GetOptions(cmd).JSONOutput {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"version":  Version,
					"go":       runtime.Version(),
					"platform": runtime.GOOS + "/" + runtime.GOARCH,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "relay %s\n", Version)
			return nil
		},
	}
}
