package entitlement

import (
	"context"
	"time"

	domain "github.com/friendaudit/backend/internal/domain/entitlement"
)

// Metrics receives entitlement events for operators.
// Implementations must be safe for concurrent use.
type Metrics interface {
	RecordDecision(ctx context.Context, d domain.Decision)
	RecordResolutionFailure(ctx context.Context, stage string)
	RecordUsageFailure(ctx context.Context)
	RecordRefresh(ctx context.Context, tier domain.Tier, degraded bool, duration time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) RecordDecision(context.Context, domain.Decision) {}
func (nopMetrics) RecordResolutionFailure(context.Context, string) {}
func (nopMetrics) RecordUsageFailure(context.Context) {}
func (nopMetrics) RecordRefresh(context.Context, domain.Tier, bool, time.Duration) {}

// NopMetrics returns a Metrics that discards everything
func NopMetrics() Metrics {
	return nopMetrics{}
}
