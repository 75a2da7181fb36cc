package logging

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	once sync.Once
	base *logrus.Logger
)

// DebugEnabled reports whether RELAY_DEBUG (or DEBUG) asks for debug output.
func DebugEnabled() bool {
	return os.Getenv("RELAY_DEBUG") == "true" || os.Getenv("DEBUG") == "true"
}

// Root returns the process-wide logger shared by every component.
func Root() *logrus.Logger {
	once.Do(func() {
		base = logrus.New()
		base.SetOutput(os.Stderr)
		base.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp:       true,
			DisableLevelTruncation: true,
			PadLevelText:           true,
		})
		base.SetLevel(logrus.InfoLevel)
		if DebugEnabled() {
			base.SetLevel(logrus.DebugLevel)
		}
	})
	return base
}

// NewLogger returns a logger tagged with the given component name.
func NewLogger(component string) *logrus.Entry {
	return Root().WithField("component", component)
}

// SetLevel changes the level of the shared logger.
func SetLevel(level logrus.Level) {
	Root().SetLevel(level)
}

// SetOutput redirects the shared logger, mostly for tests.
func SetOutput(w io.Writer) {
	Root().SetOutput(w)
}

// SetColor forces colored level names on or off.
func SetColor(enabled bool) {
	if f, ok := Root().Formatter.(*logrus.TextFormatter); ok {
		f.ForceColors = enabled
		f.DisableColors = !enabled
	}
}
