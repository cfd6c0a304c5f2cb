// Package logging wraps charmbracelet/log for the server and CLI. Output always
// goes to stderr because stdout carries the MCP stream.
package logging

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

type Logger struct {
	logger *log.Logger
}

// New returns a logger writing to w at the given level name (debug, info, warn, error).
// Unknown level names fall back to info.
func New(w io.Writer, level string) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "projectwise",
	})
	lvl, err := log.ParseLevel(level)
	if err != nil || level == "" {
		lvl = log.InfoLevel
	}
	l.SetLevel(lvl)
	return &Logger{logger: l}
}

// Stderr returns a logger on os.Stderr.
func Stderr(level string) *Logger {
	return New(os.Stderr, level)
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, "error")
}

// NewTestLogger returns a debug-level logger writing to a buffer, without timestamps.
func NewTestLogger() (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := log.NewWithOptions(&buf, log.Options{Prefix: "test"})
	l.SetLevel(log.DebugLevel)
	return &Logger{logger: l}, &buf
}

func (l *Logger) Debug(msg string, keyvals ...interface{}) { l.logger.Debug(msg, keyvals...) }
func (l *Logger) Info(msg string, keyvals ...interface{})  { l.logger.Info(msg, keyvals...) }
func (l *Logger) Warn(msg string, keyvals ...interface{})  { l.logger.Warn(msg, keyvals...) }
func (l *Logger) Error(msg string, keyvals ...interface{}) { l.logger.Error(msg, keyvals...) }

// With returns a child logger that always includes keyvals.
func (l *Logger) With(keyvals ...interface{}) *Logger {
	return &Logger{logger: l.logger.With(keyvals...)}
}

// StateTransition records a state machine step.
func (l *Logger) StateTransition(component, from, to string) {
	l.logger.Info("State transition", "component", component, "from", from, "to", to)
}
