package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/relaybuild/relay/pkg/cmake"
	"github.com/relaybuild/relay/pkg/manifest"
	"github.com/relaybuild/relay/pkg/scaffold"
	"github.com/relaybuild/relay/pkg/templates"
	"github.com/spf13/cobra"
)

func newNewCmd() *cobra.Command {
	var (
		lang         string
		templatePath string
		dryRun       bool
	)

	cmd := &cobra.Command{
		Use:   "new [name]",
		Short: "Create a new relay package",
		Long: `Create a new C or C++ application in a directory named after the project.

The project gets src/, include/, a CMakeLists.txt with relay-managed sections,
Relay.toml, vcpkg.json, .gitignore and .clang-format.

Examples:
  relay new hello
  relay new engine --lang cpp
  relay new tool --template ./my-template
  relay new tool --template https://github.com/acme/relay-template.git`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}

			var name string
			if len(args) == 1 {
				name = args[0]
			} else {
				if !isatty.IsTerminal(os.Stdin.Fd()) || !isatty.IsTerminal(os.Stdout.Fd()) {
					return errors.New("project name required: relay new <name>")
				}
				name, err = promptProjectName()
				if err != nil {
					return err
				}
			}

			language, err := templates.ParseLanguage(lang)
			if err != nil {
				return err
			}

			creator := scaffold.NewCreator(s.logger)
			result, err := creator.Create(cmd.Context(), scaffold.CreateOptions{
				Name:         name,
				ParentDir:    s.env.WorkDir,
				Language:     language,
				TemplatePath: templatePath,
				DryRun:       dryRun,
			})
			if err != nil {
				return err
			}

			if result.DryRun {
				s.out.Info("Dry run: would create %s with:", result.Path)
				for _, f := range result.Files {
					s.out.Println("  " + f)
				}
				return nil
			}

			s.out.Printf("Creating binary (application) %s package\n", s.out.Name(name))
			for _, f := range result.Files {
				s.out.Println(s.out.Faint("  created " + f))
			}
			s.out.Success("Created project '%s'", name)
			s.out.Println()
			s.out.Println(s.out.Header("Next steps:"))
			s.out.Printf("  cd %s\n", name)
			s.out.Printf("  relay add <dependency>    # e.g. relay add fmt\n")
			s.out.Printf("  relay build [--toolchain <triplet>]\n")
			s.out.Println(s.out.Faint(fmt.Sprintf("  Set VCPKG_ROOT to your vcpkg checkout. %s lists dependencies and %s links them between the relay markers.", manifest.FileName, cmake.ScriptName)))
			return nil
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "c", "Source language: c or cpp")
	cmd.Flags().StringVar(&templatePath, "template", "", "Render a local directory or git repository instead of the built-in template")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be created without writing anything")
	return cmd
}
