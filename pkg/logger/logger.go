// Package logger configures the process-wide slog logger and carries the
// query under evaluation through a context.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type contextKey struct{}

// Setup installs the default logger writing to stdout.
func Setup(level string, format string) {
	SetupWriter(os.Stdout, level, format)
}

// SetupWriter installs the default logger writing to w. format is "json" or
// anything else for text.
func SetupWriter(w io.Writer, level string, format string) {
	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}
	switch format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// WithQuery stores the query text so that every log line emitted while
// evaluating it carries the query.
func WithQuery(ctx context.Context, query string) context.Context {
	return context.WithValue(ctx, contextKey{}, query)
}

func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if query, ok := ctx.Value(contextKey{}).(string); ok {
		logger = logger.With("query", query)
	}
	return logger
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
