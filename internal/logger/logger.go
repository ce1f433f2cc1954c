package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger wraps a zerolog logger so that callers can chain event methods
// directly, e.g. l.Info().Caller().Msgf(...).
type Logger struct {
	zerolog.Logger
}

func New(debug bool, writer io.Writer) *Logger {
	level := zerolog.InfoLevel

	if debug {
		level = zerolog.DebugLevel
	}

	l := zerolog.New(writer).Level(level).With().Timestamp().Logger()

	return &Logger{l}
}

// NewConsole returns a logger which writes human-readable output to stdout.
func NewConsole(debug bool) *Logger {
	return New(debug, zerolog.ConsoleWriter{Out: os.Stdout})
}

// NewErrorConsole returns a logger which writes human-readable output to
// stderr. Meant for fatal startup errors, before the main logger exists.
func NewErrorConsole(debug bool) *Logger {
	return New(debug, zerolog.ConsoleWriter{Out: os.Stderr})
}
