package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Attribute keys shared by the entitlement instruments.
var (
	AttrFeature  = attribute.Key("feature")
	AttrTier     = attribute.Key("tier")
	AttrVerdict  = attribute.Key("verdict")
	AttrStage    = attribute.Key("stage")
	AttrDegraded = attribute.Key("degraded")
)

// Bucket boundaries in seconds.
var (
	RefreshDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
	HTTPDurationBuckets    = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
)

// Counter counts events.
type Counter struct {
	inst metric.Int64Counter
}

func NewCounter(meter metric.Meter, name, description, unit string) (*Counter, error) {
	inst, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		return nil, fmt.Errorf("counter %s: %w", name, err)
	}
	return &Counter{inst: inst}, nil
}

func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.inst.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// DurationHistogram records durations in seconds.
type DurationHistogram struct {
	inst metric.Float64Histogram
}

// NewDurationHistogram creates a histogram with unit "s". Empty buckets use
// the SDK defaults.
func NewDurationHistogram(meter metric.Meter, name, description string, buckets []float64) (*DurationHistogram, error) {
	opts := []metric.Float64HistogramOption{metric.WithDescription(description), metric.WithUnit("s")}
	if len(buckets) > 0 {
		opts = append(opts, metric.WithExplicitBucketBoundaries(buckets...))
	}
	inst, err := meter.Float64Histogram(name, opts...)
	if err != nil {
		return nil, fmt.Errorf("histogram %s: %w", name, err)
	}
	return &DurationHistogram{inst: inst}, nil
}

func (h *DurationHistogram) Record(ctx context.Context, d time.Duration, attrs ...attribute.KeyValue) {
	h.inst.Record(ctx, d.Seconds(), metric.WithAttributes(attrs...))
}
