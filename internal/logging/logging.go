// Package logging provides the Logger capability injected throughout the
// swap core. The watchers and the Electrum supervisor append progress here
// instead of a process-wide log, so test harnesses can observe it and
// production callers can route it anywhere.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Logger is the capability every component that needs to report progress
// takes through its constructor. There is no package-level default — a
// caller that wants output constructs one with New and passes it in.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	With(keyvals ...interface{}) Logger
}

// charmLogger wraps github.com/charmbracelet/log.
type charmLogger struct {
	l *log.Logger
}

// New builds a Logger writing to w at the given level ("debug", "info",
// "warn", "error"). Pass os.Stderr for normal operation.
func New(w io.Writer, level string) Logger {
	if w == nil {
		w = os.Stderr
	}
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "swapcore",
	})
	l.SetLevel(parseLevel(level))
	return &charmLogger{l: l}
}

func parseLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func (c *charmLogger) Debugf(format string, args ...interface{}) { c.l.Debugf(format, args...) }
func (c *charmLogger) Infof(format string, args ...interface{})  { c.l.Infof(format, args...) }
func (c *charmLogger) Warnf(format string, args ...interface{})  { c.l.Warnf(format, args...) }
func (c *charmLogger) Errorf(format string, args ...interface{}) { c.l.Errorf(format, args...) }

func (c *charmLogger) With(keyvals ...interface{}) Logger {
	return &charmLogger{l: c.l.With(keyvals...)}
}

// noop discards everything. Used as the default when a caller passes a nil
// Logger into a constructor, and by tests that don't care about output.
type noop struct{}

// Noop returns a Logger that discards everything.
func Noop() Logger { return noop{} }

func (noop) Debugf(string, ...interface{}) {}
func (noop) Infof(string, ...interface{})  {}
func (noop) Warnf(string, ...interface{})  {}
func (noop) Errorf(string, ...interface{}) {}
func (n noop) With(...interface{}) Logger  { return n }
