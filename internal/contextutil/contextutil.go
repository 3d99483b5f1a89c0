// Package contextutil carries request-scoped values through context.
package contextutil

import (
	"context"

	log "github.com/sirupsen/logrus"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	loggerKey    contextKey = "logger"
)

func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey, rid)
}

// RequestID returns the request id, or "" outside a request.
func RequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey).(string); ok {
		return rid
	}
	return ""
}

// WithLogger stores a logger already decorated with request fields.
func WithLogger(ctx context.Context, logger log.FieldLogger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// Logger returns the request logger, or fallback when none was stored.
func Logger(ctx context.Context, fallback log.FieldLogger) log.FieldLogger {
	if l, ok := ctx.Value(loggerKey).(log.FieldLogger); ok && l != nil {
		return l
	}
	return fallback
}
