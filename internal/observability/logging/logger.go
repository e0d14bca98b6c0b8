package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New builds the service logger and installs it as the global
// zerolog logger so packages can log through zerolog/log.
func New(service, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	logger := zerolog.New(os.Stdout).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Str("service", service).
		Logger()
	log.Logger = logger
	return logger
}

// NewConsoleLogger is the human-readable variant used by the CLI.
func NewConsoleLogger(out io.Writer, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	logger := zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Logger()
	log.Logger = logger
	return logger
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
