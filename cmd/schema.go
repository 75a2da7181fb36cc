package cmd

import (
	"github.com/relaybuild/relay/pkg/manifest"
	"github.com/spf13/cobra"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of Relay.toml",
		Long: `Print the JSON Schema describing Relay.toml. Editors with TOML schema support
(e.g. Taplo) can use it for completion and validation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), manifest.Schema())
		},
	}
}
