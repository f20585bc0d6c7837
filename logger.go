package feeddown

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with feeddown-specific context.
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
// Skipped files and failed fits are then only visible in the returned
// reports.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithBeam adds a beam field to the logger.
func (l *Logger) WithBeam(beam int) *Logger {
	return &Logger{
		Logger: l.Logger.With("beam", beam),
	}
}

// WithRDT adds rdt and plane fields to the logger.
func (l *Logger) WithRDT(rdt, plane string) *Logger {
	return &Logger{
		Logger: l.Logger.With("rdt", rdt, "plane", plane),
	}
}

// WithSource adds a source field to the logger.
func (l *Logger) WithSource(source string) *Logger {
	return &Logger{
		Logger: l.Logger.With("source", source),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogBuildFailure logs a build that returned an error. Successful builds are
// logged by dataset.Build.
func (l *Logger) LogBuildFailure(ctx context.Context, skipped int, err error) {
	l.ErrorContext(ctx, "build failed",
		"skipped", skipped,
		"error", err,
	)
}

// LogFit logs a fit pass.
func (l *Logger) LogFit(ctx context.Context, count, failed int) {
	if failed > 0 {
		l.WarnContext(ctx, "fit completed with failures",
			"total", count,
			"failed", failed,
			"success", count-failed,
		)
	} else {
		l.InfoContext(ctx, "fit completed",
			"count", count,
		)
	}
}

// LogSave logs a dataset write.
func (l *Logger) LogSave(ctx context.Context, name string, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "save failed",
			"source", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "dataset saved",
			"source", name,
			"bytes", size,
		)
	}
}

// LogRejected logs a persisted dataset that failed validation.
func (l *Logger) LogRejected(ctx context.Context, name string, err error) {
	l.WarnContext(ctx, "skipping invalid dataset",
		"source", name,
		"error", err,
	)
}

// LogGroup logs a grouping run.
func (l *Logger) LogGroup(ctx context.Context, files, rejected int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "group failed",
			"count", files,
			"rejected", rejected,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "group completed",
			"count", files,
			"rejected", rejected,
		)
	}
}
