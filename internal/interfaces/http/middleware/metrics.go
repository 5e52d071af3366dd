package middleware

import (
	"strconv"
	"time"

	"github.com/friendaudit/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

type httpMetrics struct {
	requestTotal    *telemetry.Counter
	requestDuration *telemetry.DurationHistogram
	activeRequests  metric.Int64UpDownCounter
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	requestTotal, err := telemetry.NewCounter(meter,
		"http_server_request_total",
		"Total number of HTTP requests",
		"{request}",
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := telemetry.NewDurationHistogram(meter,
		"http_server_request_duration_seconds",
		"HTTP request latency distribution in seconds",
		telemetry.HTTPDurationBuckets,
	)
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"http_server_active_requests",
		metric.WithDescription("Number of currently active HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &httpMetrics{
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		activeRequests:  activeRequests,
	}, nil
}

// HTTPMetrics returns a middleware recording request count, latency and
// in-flight requests per route. A nil meter or an instrument error yields a
// pass-through middleware.
func HTTPMetrics(meter metric.Meter, log *zap.Logger) gin.HandlerFunc {
	passThrough := func(c *gin.Context) { c.Next() }
	if meter == nil {
		return passThrough
	}
	m, err := newHTTPMetrics(meter)
	if err != nil {
		if log != nil {
			log.Error("Failed to create HTTP metrics instruments", zap.Error(err))
		}
		return passThrough
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		m.activeRequests.Add(ctx, 1)

		c.Next()

		m.activeRequests.Add(ctx, -1)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := attribute.String("method", c.Request.Method)
		routeAttr := attribute.String("route", route)
		m.requestTotal.Inc(ctx, method, routeAttr, attribute.String("status_code", strconv.Itoa(c.Writer.Status())))
		m.requestDuration.Record(ctx, time.Since(start), method, routeAttr)
	}
}
