// Package logging builds the zerolog loggers used across habitr.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ParseLevel is zerolog.ParseLevel with an empty string meaning info.
func ParseLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.NoLevel, errors.Errorf("parse log level: %w", err)
	}
	return l, nil
}

// New returns a timestamped logger writing JSON lines to w.
func New(w io.Writer, level string) (zerolog.Logger, error) {
	l, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	return zerolog.New(w).Level(l).With().Timestamp().Logger(), nil
}

// Open appends to the log file at path. The TUI owns the terminal, so
// this is where logs go while it runs.
func Open(path, level string) (zerolog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), nil, errors.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, errors.Errorf("open log file: %w", err)
	}
	log, err := New(f, level)
	if err != nil {
		f.Close()
		return zerolog.Nop(), nil, err
	}
	return log, f, nil
}

// Console is a human-readable logger for headless commands.
func Console(w io.Writer, level string) (zerolog.Logger, error) {
	l, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	cw := zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05"}
	return zerolog.New(cw).Level(l).With().Timestamp().Logger(), nil
}
