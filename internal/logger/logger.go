// Package logger holds the process-wide zerolog logger used by the
// commands. Library packages take a zerolog.Logger explicitly instead.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

var log zerolog.Logger

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	SetConsoleWriter(os.Stderr)
}

// Log returns the process logger.
func Log() *zerolog.Logger {
	return &log
}

// SetLogger replaces the process logger.
func SetLogger(logger zerolog.Logger) {
	log = logger
}

// SetJSONWriter logs one JSON object per line to w.
func SetJSONWriter(w io.Writer) {
	log = zerolog.New(w).With().Timestamp().Logger()
}

// SetLevel sets the global level from its name ("debug", "info", ...).
func SetLevel(name string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", name, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}

// Setup configures the process logger for a command: JSON or console
// output on stderr at the given level.
func Setup(level string, json bool) error {
	if err := SetLevel(level); err != nil {
		return err
	}
	if json {
		SetJSONWriter(os.Stderr)
	} else {
		SetConsoleWriter(os.Stderr)
	}
	return nil
}
