package core

import (
	"context"
	"time"

	"github.com/huangsam/sprintboard/internal/logger"
)

// Context keys for execution options
type contextKey string

const (
	loggerKey contextKey = "logger"
	nowKey    contextKey = "now"
)

// WithLogger attaches the structured logger used by the Execute functions.
func WithLogger(ctx context.Context, l logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// LoggerFromContext returns the attached logger or a no-op one.
func LoggerFromContext(ctx context.Context) logger.Logger {
	return loggerFromContext(ctx)
}

// loggerFromContext returns the attached logger or a no-op one
func loggerFromContext(ctx context.Context) logger.Logger {
	if l, ok := ctx.Value(loggerKey).(logger.Logger); ok && l != nil {
		return l
	}
	return logger.NewNop()
}

// WithNow fixes the reference time used to resolve dates without a year.
func WithNow(ctx context.Context, now time.Time) context.Context {
	return context.WithValue(ctx, nowKey, now)
}

// nowFromContext returns the fixed reference time, or the wall clock
func nowFromContext(ctx context.Context) time.Time {
	if now, ok := ctx.Value(nowKey).(time.Time); ok {
		return now
	}
	return time.Now()
}
