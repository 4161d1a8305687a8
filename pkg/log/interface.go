// Package log provides a structured logging interface for diagplot.
//
// The interface is slog-compatible so the backend can be switched without
// touching callers. The default backend is zerolog: a console writer that
// prints one "[timestamp] message" line per event for the progress stream of
// the plot dispatcher, or a JSON writer for services.
//
// Example usage:
//
//	logger := log.NewProgressLogger(os.Stderr).With(
//	    log.PlotKindKey, "cooks",
//	    log.RequestIDKey, id,
//	)
//	logger.Info("starting diagnostic plot")
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are passed as alternating key/value pairs. Values implementing error
// are logged under their key with the error text; values implementing
// zerolog.LogObjectMarshaler are logged as nested objects by the zerolog
// backend.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional structured fields.
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional structured fields.
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits log records at the given level.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4 // Detailed diagnostic information
	LevelInfo  Level = 0  // General operational information
	LevelWarn  Level = 4  // Warning conditions
	LevelError Level = 8  // Error conditions
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
