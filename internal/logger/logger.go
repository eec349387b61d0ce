// Package logger builds the service's zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logger configuration
type Config struct {
	Level  string    // trace, debug, info, warn, error
	Pretty bool      // human-readable console output
	Out    io.Writer // defaults to stdout
}

// New creates a structured logger and sets the global level
func New(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "15:04:05",
		}
	}

	return zerolog.New(out).
		With().
		Timestamp().
		Str("service", "dividend-dashboard").
		Logger()
}

// SetGlobalLogger sets the package-level logger
func SetGlobalLogger(l zerolog.Logger) {
	log.Logger = l
}
