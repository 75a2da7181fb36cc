package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/relaybuild/relay/pkg/cmake"
	"github.com/relaybuild/relay/pkg/manifest"
	"github.com/spf13/cobra"
)

type dependencyInfo struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	Features []string `json:"features,omitempty"`
	Mapped   bool     `json:"mapped"`
	Target   string   `json:"target,omitempty"`
}

func newDepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "deps",
		Aliases: []string{"list"},
		Short:   "List the dependencies declared in Relay.toml",
		Long: `List the dependencies declared in Relay.toml with their version constraint,
features, and the CMake target relay links for them. Dependencies without a
known CMake mapping have to be linked by hand.`,
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
			m, err := manifest.Load(manifest.Path(root))
			if err != nil {
				return err
			}

			table := cmake.DefaultTable()
			infos := []dependencyInfo{}
			for _, name := range m.Names() {
				dep := m.Dependencies[name]
				info := dependencyInfo{Name: name, Version: dep.Version, Features: dep.Features}
				if mapping, ok := table.Lookup(name); ok {
					info.Mapped = true
					info.Target = mapping.TargetLink
				}
				infos = append(infos, info)
			}

			if s.opts.JSONOutput {
				return printJSON(cmd.OutOrStdout(), infos)
			}
			if len(infos) == 0 {
				s.out.Info("No dependencies declared in %s", manifest.FileName)
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tVERSION\tFEATURES\tCMAKE TARGET")
			for _, info := range infos {
				features := strings.Join(info.Features, ",")
				if features == "" {
					features = "-"
				}
				target := info.Target
				if !info.Mapped {
					target = "(unmapped)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", info.Name, info.Version, features, target)
			}
			return w.Flush()
		},
	}
}
