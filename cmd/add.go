package cmd

import (
	"github.com/relaybuild/relay/pkg/manifest"
	"github.com/relaybuild/relay/pkg/project"
	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "add <name>[@constraint]...",
		Aliases: []string{"a"},
		Short:   "Add dependencies to Relay.toml",
		Long: `Add one or more dependencies to Relay.toml, then regenerate vcpkg.json and the
relay-managed sections of CMakeLists.txt.

A constraint after '@' is stored as the dependency version; it defaults to '*'.
When no Relay.toml exists one is created for the current directory.

Examples:
  relay add fmt
  relay add zlib fmt@">=10.0"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			root, err := s.projectRootOrWorkDir()
			if err != nil {
				return err
			}

			result, err := project.AddDependencies(root, args)
			if err != nil {
				return err
			}

			if s.opts.JSONOutput {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"added":            nonNil(result.Added),
					"already_present":  nonNil(result.AlreadyPresent),
					"manifest_created": result.ManifestCreated,
					"sync":             newSyncReport(result.Sync),
				})
			}

			if result.ManifestCreated {
				s.out.Success("Created %s", manifest.FileName)
			}
			for _, name := range result.AlreadyPresent {
				s.out.Warn("Dependency '%s' already exists in %s", name, manifest.FileName)
			}
			for _, name := range result.Added {
				s.out.Success("Added %s", s.out.Name(name))
			}
			s.printSync(result.Sync)
			return nil
		},
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
