// Package logging provides leveled, optionally colored console logging with
// an optional append-only file sink. It wraps logrus: console and file
// output are logrus hooks sharing one line format,
//
//	2006-01-02 15:04:05 [LEVEL] message key=value
//
// with the level tag colored on the console only.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/backmassage/thumbvtt/internal/config"
	"github.com/backmassage/thumbvtt/internal/term"
)

// Logger provides leveled logging with optional contextual fields.
// Loggers returned by WithField share the sinks of their parent.
type Logger struct {
	base   *logrus.Logger
	file   *os.File
	fields logrus.Fields
}

// NewLogger configures terminal colors from cfg and optionally opens
// cfg.LogFile for appending. Call Close() when done if LogFile was set.
func NewLogger(cfg *config.Config) (*Logger, error) {
	term.Configure(cfg.ColorMode)

	var f *os.File
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err != nil {
			return nil, err
		}
		var err error
		f, err = os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
	}
	return newLogger(os.Stdout, os.Stderr, f, term.Enabled(), cfg.Verbose), nil
}

// newLogger wires the sinks. stdout receives everything below ERROR,
// stderr receives ERROR, and file (if non-nil) receives every line
// without color.
func newLogger(stdout, stderr io.Writer, file *os.File, color, verbose bool) *Logger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	base.SetFormatter(&lineFormatter{})
	base.SetLevel(logrus.InfoLevel)
	if verbose {
		base.SetLevel(logrus.DebugLevel)
	}

	console := &lineFormatter{color: color}
	base.AddHook(newWriterHook(stdout, console,
		logrus.WarnLevel, logrus.InfoLevel, logrus.DebugLevel))
	base.AddHook(newWriterHook(stderr, console,
		logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel))
	if file != nil {
		base.AddHook(newWriterHook(file, &lineFormatter{}, logrus.AllLevels...))
	}

	return &Logger{base: base, file: file}
}

// Discard returns a logger that drops every line.
func Discard() *Logger {
	return newLogger(io.Discard, io.Discard, nil, false, false)
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// WithField returns a logger that appends key=value to every line.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	fields := make(logrus.Fields, len(l.fields)+1)
	for k, v := range l.fields {
		fields[k] = v
	}
	fields[key] = value
	return &Logger{base: l.base, file: l.file, fields: fields}
}

func (l *Logger) entry(label string) *logrus.Entry {
	e := logrus.NewEntry(l.base)
	if len(l.fields) > 0 {
		e = e.WithFields(l.fields)
	}
	if label != "" {
		e = e.WithField(labelKey, label)
	}
	return e
}

// Info logs at INFO level (blue).
func (l *Logger) Info(format string, args ...interface{}) {
	l.entry("").Infof(format, args...)
}

// Success logs at SUCCESS level (green). It is INFO for filtering.
func (l *Logger) Success(format string, args ...interface{}) {
	l.entry("SUCCESS").Infof(format, args...)
}

// Warn logs at WARN level (yellow).
func (l *Logger) Warn(format string, args ...interface{}) {
	l.entry("").Warnf(format, args...)
}

// Error logs at ERROR level (red), to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.entry("").Errorf(format, args...)
}

// Debug logs at DEBUG level (cyan) only when the logger was created with
// verbose set; no-op otherwise.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.entry("").Debugf(format, args...)
}

// Verbose reports whether DEBUG lines are emitted.
func (l *Logger) Verbose() bool {
	return l.base.IsLevelEnabled(logrus.DebugLevel)
}
