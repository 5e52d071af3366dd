package telemetry

import (
	"context"
	"errors"
	"time"

	appentitlement "github.com/friendaudit/backend/internal/application/entitlement"
	"github.com/friendaudit/backend/internal/domain/entitlement"
	"go.opentelemetry.io/otel/metric"
)

// Metric names
const (
	MetricDecisions          = "entitlement.decisions"
	MetricResolutionFailures = "entitlement.resolution_failures"
	MetricUsageFailures      = "entitlement.usage_failures"
	MetricRefreshDuration    = "entitlement.refresh.duration"
)

// ErrMeterNil is returned when no meter is supplied.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// EntitlementMetrics records entitlement decisions and degraded reads.
type EntitlementMetrics struct {
	decisions          *Counter
	resolutionFailures *Counter
	usageFailures      *Counter
	refreshDuration    *DurationHistogram
}

var _ appentitlement.Metrics = (*EntitlementMetrics)(nil)

// NewEntitlementMetrics creates the entitlement instruments on meter.
func NewEntitlementMetrics(meter metric.Meter) (*EntitlementMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &EntitlementMetrics{}
	var err error

	if m.decisions, err = NewCounter(meter, MetricDecisions,
		"Feature access decisions by feature, tier and verdict", "{decisions}"); err != nil {
		return nil, err
	}
	if m.resolutionFailures, err = NewCounter(meter, MetricResolutionFailures,
		"Tier resolutions that failed closed to the free tier", "{failures}"); err != nil {
		return nil, err
	}
	if m.usageFailures, err = NewCounter(meter, MetricUsageFailures,
		"Usage computations that failed open to zero usage", "{failures}"); err != nil {
		return nil, err
	}
	if m.refreshDuration, err = NewDurationHistogram(meter, MetricRefreshDuration,
		"Duration of a full entitlement state refresh", RefreshDurationBuckets); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordDecision counts one access decision
func (m *EntitlementMetrics) RecordDecision(ctx context.Context, d entitlement.Decision) {
	m.decisions.Inc(ctx,
		AttrFeature.String(string(d.Feature)),
		AttrTier.String(d.Tier.String()),
		AttrVerdict.String(string(d.Verdict)))
}

// RecordResolutionFailure counts a failed subscription read
func (m *EntitlementMetrics) RecordResolutionFailure(ctx context.Context, stage string) {
	m.resolutionFailures.Inc(ctx, AttrStage.String(stage))
}

// RecordUsageFailure counts a failed activity read
func (m *EntitlementMetrics) RecordUsageFailure(ctx context.Context) {
	m.usageFailures.Inc(ctx)
}

// RecordRefresh records how long a refresh took and whether it degraded
func (m *EntitlementMetrics) RecordRefresh(ctx context.Context, tier entitlement.Tier, degraded bool, d time.Duration) {
	m.refreshDuration.Record(ctx, d,
		AttrTier.String(tier.String()),
		AttrDegraded.Bool(degraded))
}
