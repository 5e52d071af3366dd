package entitlement

import (
	"context"

	domain "github.com/friendaudit/backend/internal/domain/entitlement"
	"github.com/friendaudit/backend/internal/domain/shared"
	"github.com/friendaudit/backend/internal/domain/subscription"
	"go.uber.org/zap"
)

// Resolution stages reported to Metrics
const (
	StageCustomer     = "customer"
	StageSubscription = "subscription"
)

// Resolution is the outcome of resolving one user's billing record
type Resolution struct {
	Snapshot subscription.Snapshot
	Tier     domain.Tier
	// Degraded is true when a read error forced the free tier
	Degraded bool
}

// SnapshotFetcher resolves a user's billing record into a Tier.
// It fails closed: nothing it encounters is surfaced as an error.
type SnapshotFetcher struct {
	customers     subscription.CustomerRepository
	subscriptions subscription.SubscriptionRepository
	catalog       *subscription.PlanCatalog
	metrics       Metrics
	logger        *zap.Logger
}

// NewSnapshotFetcher creates a new SnapshotFetcher
func NewSnapshotFetcher(
	customers subscription.CustomerRepository,
	subscriptions subscription.SubscriptionRepository,
	catalog *subscription.PlanCatalog,
	metrics Metrics,
	logger *zap.Logger,
) *SnapshotFetcher {
	if metrics == nil {
		metrics = NopMetrics()
	}
	return &SnapshotFetcher{
		customers:     customers,
		subscriptions: subscriptions,
		catalog:       catalog,
		metrics:       metrics,
		logger:        logger,
	}
}

// Resolve reads the customer and subscription records of userID and maps
// them onto a tier. Not-found records are meaningful ("never subscribed")
// and resolve to free without degradation; read errors resolve to free and
// are logged.
func (f *SnapshotFetcher) Resolve(ctx context.Context, userID string) Resolution {
	customer, err := f.customers.FindByUserID(ctx, userID)
	if err != nil {
		if shared.IsNotFound(err) {
			return Resolution{Snapshot: subscription.EmptySnapshot, Tier: domain.TierFree}
		}
		f.logger.Warn("Failed to read billing customer, resolving to free tier",
			zap.String("user_id", userID),
			zap.Error(err))
		f.metrics.RecordResolutionFailure(ctx, StageCustomer)
		return Resolution{Snapshot: subscription.EmptySnapshot, Tier: domain.TierFree, Degraded: true}
	}

	sub, err := f.subscriptions.FindByCustomerID(ctx, customer.CustomerID)
	if err != nil {
		snapshot := subscription.SnapshotOf(customer, nil)
		if shared.IsNotFound(err) {
			return Resolution{Snapshot: snapshot, Tier: domain.TierFree}
		}
		f.logger.Warn("Failed to read subscription, resolving to free tier",
			zap.String("user_id", userID),
			zap.String("customer_id", customer.CustomerID),
			zap.Error(err))
		f.metrics.RecordResolutionFailure(ctx, StageSubscription)
		return Resolution{Snapshot: snapshot, Tier: domain.TierFree, Degraded: true}
	}

	snapshot := subscription.SnapshotOf(customer, sub)
	tier := snapshot.Tier(f.catalog)

	if snapshot.BillingStatus.IsEntitling() && tier == domain.TierFree {
		f.logger.Warn("Entitling subscription references an unknown plan",
			zap.String("user_id", userID),
			zap.String("plan_reference", snapshot.PlanReference))
	}

	f.logger.Debug("Resolved subscription tier",
		zap.String("user_id", userID),
		zap.String("billing_status", snapshot.BillingStatus.String()),
		zap.String("tier", tier.String()))

	return Resolution{Snapshot: snapshot, Tier: tier}
}

// ResolveTier returns only the tier of Resolve
func (f *SnapshotFetcher) ResolveTier(ctx context.Context, userID string) domain.Tier {
	return f.Resolve(ctx, userID).Tier
}
