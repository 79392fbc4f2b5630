package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/corey/xdedup/internal/app"
)

var (
	logLevelFlag string
	logJSONFlag  bool
)

// logger and logOut are built once per invocation by setupLogging.
var (
	logger = zerolog.Nop()
	logOut io.Writer
)

func setupLogging(cmd *cobra.Command, args []string) error {
	level, err := zerolog.ParseLevel(strings.ToLower(logLevelFlag))
	if err != nil || level == zerolog.NoLevel {
		return fmt.Errorf("invalid --log-level %q", logLevelFlag)
	}
	logOut = logWriter(os.Stderr, logJSONFlag, isatty.IsTerminal(os.Stderr.Fd()))
	logger = zerolog.New(logOut).Level(level).With().Timestamp().Logger()
	return nil
}

// logWriter wraps w in a console writer unless JSON output is requested.
func logWriter(w io.Writer, json, color bool) io.Writer {
	if json {
		return w
	}
	return zerolog.ConsoleWriter{Out: w, NoColor: !color, TimeFormat: time.Kitchen}
}

// withLogFile tees the logger into the project log file (JSON lines) for
// long-running commands. The returned close function is always safe to call.
func withLogFile(paths *app.Paths) (zerolog.Logger, func()) {
	if logOut == nil {
		return logger, func() {}
	}
	f, err := paths.OpenLog()
	if err != nil {
		logger.Warn().Err(err).Msg("project log unavailable")
		return logger, func() {}
	}
	multi := zerolog.MultiLevelWriter(logOut, f)
	l := zerolog.New(multi).Level(logger.GetLevel()).With().Timestamp().Logger()
	return l, func() { f.Close() }
}
