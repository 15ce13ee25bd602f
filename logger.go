package maxima

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with maxima-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithSize adds a size (domain point count) field to the logger.
func (l *Logger) WithSize(size int) *Logger {
	return &Logger{
		Logger: l.Logger.With("size", size),
	}
}

// LogSet logs a set-value transaction.
func (l *Logger) LogSet(size int, rolledBack bool, err error) {
	if err != nil {
		l.Error("set value failed",
			"size", size,
			"rolled_back", rolledBack,
			"error", err,
		)
	} else {
		l.Debug("set value completed",
			"size", size,
		)
	}
}

// LogErase logs an erase transaction.
func (l *Logger) LogErase(size int, rolledBack bool, err error) {
	if err != nil {
		l.Error("erase failed",
			"size", size,
			"rolled_back", rolledBack,
			"error", err,
		)
	} else {
		l.Debug("erase completed",
			"size", size,
		)
	}
}
