// Package telemetry provides OpenTelemetry tracing, metrics and log export,
// Pyroscope profiling, and the entitlement engine's metric instruments.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

// ServiceVersion is reported on every exported signal
const ServiceVersion = "1.0.0"

const shutdownTimeout = 10 * time.Second

// Exporter addresses the OTLP collector shared by traces, metrics and logs.
type Exporter struct {
	Endpoint    string
	Insecure    bool
	ServiceName string
}

func (e Exporter) resource() (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(e.ServiceName),
			semconv.ServiceVersion(ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build %s resource: %w", e.ServiceName, err)
	}
	return res, nil
}

// flush runs a provider shutdown bounded by shutdownTimeout.
func flush(ctx context.Context, signal string, shutdown func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown %s provider: %w", signal, err)
	}
	return nil
}
