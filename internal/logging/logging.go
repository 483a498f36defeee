// Package logging writes structured JSON logs to a file. The terminal belongs
// to the UI, so nothing is logged to stdout or stderr.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Logger is a JSON logger whose level can change at runtime.
type Logger struct {
	*slog.Logger

	level *slog.LevelVar
	file  *os.File
}

// Open appends to the log file at path, creating it and its directory.
func Open(path, rawLevel string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	l := New(f, rawLevel)
	l.file = f
	return l, nil
}

// New logs to w.
func New(w io.Writer, rawLevel string) *Logger {
	level := &slog.LevelVar{}
	level.Set(ParseLevel(rawLevel))

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: false,
	})
	return &Logger{Logger: slog.New(handler), level: level}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	level := &slog.LevelVar{}
	return &Logger{Logger: slog.New(slog.DiscardHandler), level: level}
}

// SetRawLevel changes the level; unknown names mean info.
func (l *Logger) SetRawLevel(rawLevel string) {
	l.level.Set(ParseLevel(rawLevel))
}

// Level returns the current level.
func (l *Logger) Level() slog.Level {
	return l.level.Level()
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// ParseLevel maps debug, info, warn or error to a slog level.
func ParseLevel(rawLevel string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(rawLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
