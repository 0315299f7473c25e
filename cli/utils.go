package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"go.viam.com/depthtruth/config"
	"go.viam.com/depthtruth/logging"
)

// printf prints a message with no prefix.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

// warningf prints a message prefixed with a bold yellow "Warning: ".
func warningf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, color.New(color.Bold, color.FgYellow).Sprint("Warning: ")+format+"\n", a...)
}

// loadConfig reads the config named by the global flag, or the defaults when there is none.
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String(generalFlagConfig)
	if path == "" {
		return config.Default(), nil
	}
	return config.Read(path)
}

// newLogger returns the logger of one command run. Debug logging is on when either the flag or
// the config asks for it.
func newLogger(c *cli.Context, cfg *config.Config) logging.Logger {
	if c.Bool(generalFlagDebug) || cfg.Debug {
		return logging.NewDebugLogger("depthtruth")
	}
	return logging.NewLogger("depthtruth")
}

// argOr returns the first positional argument or def.
func argOr(c *cli.Context, def string) string {
	if c.Args().Present() {
		return c.Args().First()
	}
	return def
}

func formatDistance(v *float32) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.3f", *v)
}
