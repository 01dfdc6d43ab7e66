// Package log provides structured logging for facet's modeling
// pipeline. It defines a minimal, slog-compatible Logger interface so
// packages can log fit/predict lifecycle events without binding to a
// concrete backend, plus standard attribute keys for ML operations.
package log

import "context"

// Logger is a structured logging interface compatible with log/slog.
// Fields are alternating key-value pairs, as in slog.
type Logger interface {
	// Debug logs detailed diagnostic information.
	Debug(msg string, fields ...any)

	// Info logs general operational information.
	Info(msg string, fields ...any)

	// Warn logs potentially problematic situations that do not stop
	// the pipeline.
	Warn(msg string, fields ...any)

	// Error logs error conditions. Pass the error via ErrAttr so the
	// handler can attach the stack trace.
	Error(msg string, fields ...any)

	// With returns a Logger that includes the given fields in every
	// subsequent record.
	With(fields ...any) Logger

	// Enabled reports whether records at the given level are emitted.
	Enabled(ctx context.Context, level Level) bool
}

// Level is a logging level, value-compatible with slog.Level.
type Level int

const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
