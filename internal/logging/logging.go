package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

type ctxKey struct{}

var (
	mu   sync.Mutex
	base *slog.Logger
)

// Init configures the process logger, tagged with the service name. Output
// goes to stdout and, when filePath is set, to a size-rotated file as well.
func Init(service, level, filePath string) *slog.Logger {
	var w io.Writer = os.Stdout
	if filePath != "" {
		rot := &lumberjack.Logger{
			Filename:   filePath,
			MaxSize:    50, // MB
			MaxBackups: 3,
			MaxAge:     7, // days
		}
		w = io.MultiWriter(os.Stdout, rot)
	}

	return initWriter(w, service, level)
}

func initWriter(w io.Writer, service, level string) *slog.Logger {
	mu.Lock()
	defer mu.Unlock()

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	base = slog.New(h).With("service", service)
	slog.SetDefault(base)
	return base
}

// Base returns the process logger, falling back to slog's default before Init.
func Base() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if base == nil {
		return slog.Default()
	}
	return base
}

// New returns a child logger tagged with component.
func New(component string) *slog.Logger {
	return Base().With("component", component)
}

// WithCtx stores a request-scoped logger in ctx.
func WithCtx(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromCtx fetches the request-scoped logger or the process logger.
func FromCtx(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return Base()
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
