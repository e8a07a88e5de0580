// Package logger wraps slog for the gateway's structured logging, adapted
// from the chat-backend's logger package to the gateway's own event shapes
// (access logs, policy decisions).
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Level is the minimum severity a Logger emits.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Config controls how a Logger renders its output.
type Config struct {
	Level  string
	JSON   bool
	Output io.Writer
}

// DefaultConfig returns the gateway's default: info level, JSON output.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		JSON:   true,
		Output: os.Stderr,
	}
}

// Logger wraps slog.Logger with a few gateway-specific helpers.
type Logger struct {
	*slog.Logger
}

var global *Logger

// New builds a Logger from config.
func New(config Config) *Logger {
	if config.Output == nil {
		config.Output = os.Stderr
	}

	var level slog.Level
	switch Level(config.Level) {
	case LevelDebug:
		level = slog.LevelDebug
	case LevelWarn:
		level = slog.LevelWarn
	case LevelError:
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if config.JSON {
		handler = slog.NewJSONHandler(config.Output, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(config.Output, &slog.HandlerOptions{Level: level})
	}

	l := &Logger{Logger: slog.New(handler)}
	if global == nil {
		global = l
	}
	return l
}

// SetGlobal installs l as the package-level logger.
func SetGlobal(l *Logger) { global = l }

// Global returns the package-level logger, creating a default one on first
// use so call sites never see nil.
func Global() *Logger {
	if global == nil {
		global = New(DefaultConfig())
	}
	return global
}

// WithRequestID returns a child logger annotated with request_id.
func (l *Logger) WithRequestID(requestID string) *Logger {
	if requestID == "" {
		return l
	}
	return &Logger{Logger: l.With("request_id", requestID)}
}

// WithRoute returns a child logger annotated with the matched route.
func (l *Logger) WithRoute(method, path string) *Logger {
	return &Logger{Logger: l.With("method", method, "route", path)}
}

type contextKey struct{}

// NewContext returns a child context carrying l, retrievable by
// FromRequestContext. Used to hand the request-scoped logger from the gin
// middleware layer down into plain net/http code (internal/pipeline).
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromRequestContext retrieves the logger stashed by NewContext, falling
// back to the global logger if none was set.
func FromRequestContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(contextKey{}).(*Logger); ok {
		return l
	}
	return Global()
}
