// Package cli holds the flag conventions shared by every relay command.
package cli

import (
	"strconv"

	"github.com/relaybuild/relay/pkg/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Options are the global flags after parsing.
type Options struct {
	Verbose    bool
	Quiet      bool
	JSONOutput bool
	NoColor    bool
	Toolchain  string
}

// NewStandardCommand creates a command carrying the standard persistent flags.
func NewStandardCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
	}
	AddStandardFlags(cmd.PersistentFlags())
	return cmd
}

// AddStandardFlags registers the global flags on fs.
func AddStandardFlags(fs *pflag.FlagSet) {
	fs.BoolP("verbose", "v", false, "Use verbose output")
	fs.BoolP("quiet", "q", false, "Only print errors")
	fs.Bool("json", false, "Print machine-readable JSON output")
	fs.Bool("no-color", false, "Disable colored output")
	fs.String("toolchain", "", "Target triplet (e.g. x64-linux, x64-windows); defaults to VCPKG_DEFAULT_TRIPLET or a guess from the host")
}

// GetOptions reads the standard flags visible to cmd.
func GetOptions(cmd *cobra.Command) Options {
	return Options{
		Verbose:    boolFlag(cmd, "verbose"),
		Quiet:      boolFlag(cmd, "quiet"),
		JSONOutput: boolFlag(cmd, "json"),
		NoColor:    boolFlag(cmd, "no-color"),
		Toolchain:  stringFlag(cmd, "toolchain"),
	}
}

// GetLogger returns the shared logger with its level set from the flags.
func GetLogger(cmd *cobra.Command) *logrus.Logger {
	opts := GetOptions(cmd)
	switch {
	case opts.Verbose || logging.DebugEnabled():
		logging.SetLevel(logrus.DebugLevel)
	case opts.Quiet:
		logging.SetLevel(logrus.ErrorLevel)
	default:
		logging.SetLevel(logrus.InfoLevel)
	}
	return logging.Root()
}

func boolFlag(cmd *cobra.Command, name string) bool {
	f := cmd.Flag(name)
	if f == nil {
		return false
	}
	v, err := strconv.ParseBool(f.Value.String())
	return err == nil && v
}

func stringFlag(cmd *cobra.Command, name string) string {
	f := cmd.Flag(name)
	if f == nil {
		return ""
	}
	return f.Value.String()
}
