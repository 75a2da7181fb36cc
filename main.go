package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/relaybuild/relay/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		var exitErr *cmd.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, cmd.RenderError(err))
		}
		os.Exit(cmd.ExitCode(err))
	}
}
