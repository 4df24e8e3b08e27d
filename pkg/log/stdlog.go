package log

import (
	"bytes"
	"io"
	stdlog "log"
)

// levelWriter adapts a Logger to io.Writer, one log entry per Write.
type levelWriter struct {
	logger Logger
	level  Level
}

// NewWriter returns an io.Writer that logs each written line at level.
func NewWriter(l Logger, level Level) io.Writer {
	return &levelWriter{logger: l, level: level}
}

func (w *levelWriter) Write(p []byte) (int, error) {
	msg := string(bytes.TrimRight(p, "\r\n"))
	switch w.level {
	case DebugLevel:
		w.logger.Debug(msg)
	case WarnLevel:
		w.logger.Warn(msg)
	case ErrorLevel, FatalLevel:
		w.logger.Error(msg)
	default:
		w.logger.Info(msg)
	}
	return len(p), nil
}

// ToStdLogger returns a *log.Logger that forwards to l at level.
func ToStdLogger(l Logger, level Level) *stdlog.Logger {
	return stdlog.New(NewWriter(l, level), "", 0)
}

// RedirectStdLog routes the standard library's default logger through l.
func RedirectStdLog(l Logger) {
	stdlog.SetFlags(0)
	stdlog.SetPrefix("")
	stdlog.SetOutput(NewWriter(l.WithComponent("stdlog"), InfoLevel))
}
