// Package logging builds the logger handed to every component at
// construction time; nothing in this codebase logs through a global.
package logging

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// EnvLogLevel overrides the log level, e.g. "debug" or "warn".
const EnvLogLevel = "UPACK_LOG_LEVEL"

// New constructs a console logger writing to stderr.
// The verbose flag bumps the level to debug; the env override wins over both.
func New(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	if raw := os.Getenv(EnvLogLevel); raw != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(raw))); err == nil {
			level = parsed
		}
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}
