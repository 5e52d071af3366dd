package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	correlationKey
)

// Correlation ties a log line to the request and the caller that produced it.
type Correlation struct {
	RequestID string
	UserID    string
}

func (c Correlation) fields() []zap.Field {
	fields := make([]zap.Field, 0, 2)
	if c.RequestID != "" {
		fields = append(fields, zap.String("request_id", c.RequestID))
	}
	if c.UserID != "" {
		fields = append(fields, zap.String("user_id", c.UserID))
	}
	return fields
}

// WithContext stores logger in ctx.
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in ctx, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.NewNop()
}

// CorrelationFrom returns the ids recorded on ctx so far.
func CorrelationFrom(ctx context.Context) Correlation {
	c, _ := ctx.Value(correlationKey).(Correlation)
	return c
}

// WithRequestID records the request id and returns a logger carrying it.
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	c := CorrelationFrom(ctx)
	c.RequestID = requestID
	return correlate(ctx, logger.With(zap.String("request_id", requestID)), c)
}

// WithUserID records the authenticated user and returns a logger carrying it.
func WithUserID(ctx context.Context, logger *zap.Logger, userID string) (context.Context, *zap.Logger) {
	c := CorrelationFrom(ctx)
	c.UserID = userID
	return correlate(ctx, logger.With(zap.String("user_id", userID)), c)
}

func correlate(ctx context.Context, logger *zap.Logger, c Correlation) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, correlationKey, c)
	return WithContext(ctx, logger), logger
}

// Fields returns the correlation ids and the active span ids for ctx. It is
// meant for loggers that are not derived from the request logger.
func Fields(ctx context.Context) []zap.Field {
	fields := CorrelationFrom(ctx).fields()
	return append(fields, traceFields(ctx)...)
}

func traceFields(ctx context.Context) []zap.Field {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
}

// L returns the request logger with the current span attached.
func L(ctx context.Context) *zap.Logger {
	l := FromContext(ctx)
	if fields := traceFields(ctx); len(fields) > 0 {
		return l.With(fields...)
	}
	return l
}
