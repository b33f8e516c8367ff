package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options configures a Logger.
type Options struct {
	// Level is one of debug, info, warn, error. Unknown values fall back to warn.
	Level string
	// Format is "text" or "json".
	Format string
	// Output defaults to stderr so it never mixes with report output.
	Output io.Writer
}

// StdLogger adapts logrus to ports.Logger.
type StdLogger struct {
	entry *logrus.Entry
}

// New creates a StdLogger.
func New(opts Options) *StdLogger {
	l := logrus.New()
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	l.SetOutput(out)

	if strings.EqualFold(opts.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.WarnLevel
	}
	l.SetLevel(level)

	return &StdLogger{entry: logrus.NewEntry(l)}
}

// Discard returns a logger that drops everything.
func Discard() *StdLogger {
	return New(Options{Level: "panic", Output: io.Discard})
}

func (l *StdLogger) Debug(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Debug(msg)
}

func (l *StdLogger) Info(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Info(msg)
}

func (l *StdLogger) Warn(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Warn(msg)
}

func (l *StdLogger) Error(msg string, err error, fields map[string]interface{}) {
	l.entry.WithFields(fields).WithError(err).Error(msg)
}
