// Package logging builds the process-wide structured logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger on stderr. verbose lowers the level to
// Debug so dropped commits and individual git invocations show up.
func New(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// NewWithFile is New plus an append-only log file, so a failed release
// can be inspected after the terminal is gone. The file gets every
// level regardless of the console verbosity.
func NewWithFile(verbose bool, path string) (zerolog.Logger, func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Logger{}, nil, fmt.Errorf("logging: open log file: %w", err)
	}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	writer := zerolog.MultiLevelWriter(&zerolog.FilteredLevelWriter{
		Writer: zerolog.LevelWriterAdapter{Writer: console},
		Level:  level,
	}, f)
	logger := zerolog.New(writer).With().Timestamp().Logger()
	return logger, f.Close, nil
}

// Discard returns a logger that writes nothing, for tests and for
// machine-readable output modes where stderr must stay clean.
func Discard() zerolog.Logger {
	return zerolog.New(io.Discard)
}
