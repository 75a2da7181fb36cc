package build

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Exec runs the built program attached to the given streams and returns its
// exit code. A non-zero exit is not an error.
func Exec(ctx context.Context, path string, args []string, dir string, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	if _, err := os.Stat(path); err != nil {
		return -1, fmt.Errorf("executable not found at %s; did the build produce it?", path)
	}
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = dir
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("failed to run %s: %w", path, err)
	}
	return 0, nil
}
