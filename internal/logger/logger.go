package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// Logger wraps charm/log for structured logging
type Logger struct {
	*log.Logger
}

// New creates a new logger with the given output
func New(w io.Writer) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
	return &Logger{Logger: l}
}

// NewWithLevel creates a logger with a specific level
func NewWithLevel(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
	})
	return &Logger{Logger: l}
}

// NewFileLogger creates a logger that appends to a file
func NewFileLogger(path string, level log.Level) (*Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		f.Close()
	}

	return NewWithLevel(f, level), cleanup, nil
}

// Discard returns a logger that discards all output
func Discard() *Logger {
	return New(io.Discard)
}

// ParseLevel converts a config level name, defaulting to info
func ParseLevel(name string) log.Level {
	level, err := log.ParseLevel(name)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// NoteLoaded logs a note restored at startup
func (l *Logger) NoteLoaded(id string, bytes int) {
	l.Debug("note loaded",
		"id", id,
		"bytes", bytes)
}

// NoteSaved logs a content write
func (l *Logger) NoteSaved(id string, bytes int) {
	l.Debug("note saved",
		"id", id,
		"bytes", bytes)
}

// NotePruned logs a blank note removed at startup
func (l *Logger) NotePruned(id string) {
	l.Info("blank note pruned",
		"id", id)
}

// NoteDeleted logs a note removed on request
func (l *Logger) NoteDeleted(id string) {
	l.Info("note deleted",
		"id", id)
}

// PersistError logs a swallowed persistence failure
func (l *Logger) PersistError(operation, id string, err error) {
	l.Warn("persistence failed",
		"operation", operation,
		"id", id,
		"error", err)
}

// StateError logs a state-related error
func (l *Logger) StateError(operation string, err error) {
	l.Error("state error",
		"operation", operation,
		"error", err)
}

// RenderError logs a preview renderer failure
func (l *Logger) RenderError(renderer string, err error) {
	l.Warn("preview unavailable",
		"renderer", renderer,
		"error", err)
}

// Request logs a served HTTP request
func (l *Logger) Request(method, path string, status int, duration time.Duration) {
	l.Info("request",
		"method", method,
		"path", path,
		"status", status,
		"duration", duration.Round(time.Microsecond))
}

// ConfigLoaded logs successful config loading
func (l *Logger) ConfigLoaded(path, notesDir string) {
	l.Debug("config loaded",
		"path", path,
		"notes_dir", notesDir)
}

// Skipped logs when a file is skipped
func (l *Logger) Skipped(file, reason string) {
	l.Debug("file skipped",
		"file", file,
		"reason", reason)
}
