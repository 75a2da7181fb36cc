package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"

	"github.com/relaybuild/relay/pkg/cli"
	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags "-X github.com/relaybuild/relay/cmd.Version=...".
var Version = "0.1.0"

// ExitError carries the exit status of a program started by relay run.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return "program exited with status " + strconv.Itoa(e.Code)
}

// NewRootCmd assembles the relay command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := cli.NewStandardCommand("relay", "C/C++ package manager built on vcpkg and CMake")
	rootCmd.Long = `relay keeps Relay.toml, vcpkg.json and the relay-managed sections of
CMakeLists.txt in sync, and drives vcpkg and cmake to build and run the project.`
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("relay {{.Version}}\n")
	rootCmd.Flags().BoolP("version", "V", false, "Print version info and exit")
	rootCmd.PersistentFlags().StringP("dir", "C", "", "Run as if relay was started in this directory")
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	rootCmd.AddCommand(
		newNewCmd(),
		newAddCmd(),
		newRemoveCmd(),
		newSyncCmd(),
		newDepsCmd(),
		newInstallCmd(),
		newBuildCmd(),
		newRunCmd(),
		newCleanCmd(),
		newSchemaCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs relay with the process arguments. Ctrl-C cancels running
// child processes.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

// ExitCode maps an Execute error to a process exit status.
func ExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if err != nil {
		return 1
	}
	return 0
}
