// Package logger wraps log/slog with the request-scoped fields and event
// helpers used across the API, the scheduler and the CLI.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"
)

type Logger struct {
	*slog.Logger
}

// New writes text at debug level in development and JSON at info level
// everywhere else.
func New(env string) *Logger {
	return newWithWriter(env, os.Stdout)
}

// NewNop discards everything.
func NewNop() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func newWithWriter(env string, w io.Writer) *Logger {
	if strings.EqualFold(env, "development") {
		return &Logger{Logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))}
	}
	return &Logger{Logger: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))}
}

// WithContext adds the request and user IDs stored by the HTTP middleware.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	var attrs []any
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		attrs = append(attrs, slog.String("request_id", requestID))
	}
	if userID, ok := ctx.Value(UserIDKey).(string); ok && userID != "" {
		attrs = append(attrs, slog.String("user_id", userID))
	}
	if len(attrs) == 0 {
		return l
	}
	return &Logger{Logger: l.With(attrs...)}
}

// HTTPRequest logs one served request. 5xx responses log at error level and
// 4xx at warn.
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	level := slog.LevelInfo
	switch {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	}
	l.Log(context.Background(), level, "http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

func (l *Logger) AuthEvent(event, subject string, success bool, reason string) {
	if success {
		l.Info("auth_event", slog.String("event", event), slog.String("subject", subject))
		return
	}
	l.Warn("auth_event",
		slog.String("event", event),
		slog.String("subject", subject),
		slog.String("reason", reason),
	)
}

func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}

// ProviderError logs a failed places or geocoding call. These failures are
// never fatal, so they log at warn.
func (l *Logger) ProviderError(operation string, err error) {
	l.Warn("provider_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// ReportEvent logs a lifecycle step of an incident report.
func (l *Logger) ReportEvent(event, reportID string, attrs ...any) {
	args := append([]any{slog.String("event", event), slog.String("report_id", reportID)}, attrs...)
	l.Info("report_event", args...)
}
