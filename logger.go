package streamflux

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with streamflux-specific event methods, giving
// operations consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, uses a text handler to stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))}
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// LogCatalogLoad logs the outcome of a catalog load.
func (l *Logger) LogCatalogLoad(ctx context.Context, segments, degenerate int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "catalog load failed",
			"error", err,
		)
		return
	}
	if degenerate > 0 {
		l.WarnContext(ctx, "catalog loaded with degenerate segments",
			"segments", segments,
			"degenerate", degenerate,
		)
		return
	}
	l.InfoContext(ctx, "catalog loaded",
		"segments", segments,
	)
}

// LogRateQuery logs a point-rate query.
func (l *Logger) LogRateQuery(ctx context.Context, x, y, rate float64) {
	l.DebugContext(ctx, "rate query completed",
		"x", x,
		"y", y,
		"rate", rate,
	)
}

// LogRechargeQuery logs a cell recharge query.
func (l *Logger) LogRechargeQuery(ctx context.Context, found bool, contributions int) {
	l.DebugContext(ctx, "recharge query completed",
		"found", found,
		"contributions", contributions,
	)
}

// LogSweep logs a mesh sweep.
func (l *Logger) LogSweep(ctx context.Context, cells, contributing int, total float64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "sweep failed",
			"cells", cells,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "sweep completed",
		"cells", cells,
		"contributing_cells", contributing,
		"total_recharge", total,
	)
}

// LogSnapshot logs a snapshot save or load.
func (l *Logger) LogSnapshot(ctx context.Context, op, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot "+op+" failed",
			"name", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "snapshot "+op+" completed",
		"name", name,
	)
}
