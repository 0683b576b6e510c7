package rkmeans

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with rkmeans-specific context.
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
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithK adds a k (cluster count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// WithVariant adds a variant field to the logger.
func (l *Logger) WithVariant(v Variant) *Logger {
	return &Logger{
		Logger: l.Logger.With("variant", v.String()),
	}
}

// LogStep logs a parallel step.
func (l *Logger) LogStep(ctx context.Context, step string, iteration int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "step failed",
			"step", step,
			"iteration", iteration,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "step completed",
			"step", step,
			"iteration", iteration,
			"duration", duration,
		)
	}
}

// LogIteration logs a finished assignment pass.
func (l *Logger) LogIteration(ctx context.Context, iteration, moves, active int) {
	l.DebugContext(ctx, "iteration completed",
		"iteration", iteration,
		"moves", moves,
		"active_clusters", active,
	)
}

// LogRun logs the end of a run.
func (l *Logger) LogRun(ctx context.Context, res *Result, err error) {
	if err != nil {
		l.ErrorContext(ctx, "clustering failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "clustering completed",
			"outcome", res.Outcome.String(),
			"iterations", res.Iterations,
			"clusters", len(res.Clusters),
			"elapsed", res.Elapsed,
		)
	}
}
