package entitlement

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/friendaudit/backend/internal/domain/entitlement"
	"github.com/friendaudit/backend/internal/domain/shared"
	"github.com/friendaudit/backend/internal/domain/subscription"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newTestFetcher() (*SnapshotFetcher, *MockCustomerRepository, *MockSubscriptionRepository) {
	customers := new(MockCustomerRepository)
	subs := new(MockSubscriptionRepository)
	f := NewSnapshotFetcher(customers, subs, subscription.DefaultPlanCatalog(), nil, zap.NewNop())
	return f, customers, subs
}

func activeSub(customerID, priceID string, status subscription.BillingStatus) *subscription.Subscription {
	sub, _ := subscription.NewSubscription(customerID, "sub_1", status, priceID)
	return sub.WithPeriodEnd(time.Now().Add(30 * 24 * time.Hour))
}

func TestSnapshotFetcher_Resolve(t *testing.T) {
	ctx := context.Background()
	customer := &subscription.Customer{UserID: "user-1", CustomerID: "cus_1"}

	t.Run("no customer record resolves to free", func(t *testing.T) {
		f, customers, subs := newTestFetcher()
		customers.On("FindByUserID", mock.Anything, "user-1").Return(nil, shared.ErrNotFound)

		res := f.Resolve(ctx, "user-1")

		assert.Equal(t, domain.TierFree, res.Tier)
		assert.False(t, res.Degraded)
		assert.False(t, res.Snapshot.HasCustomer())
		subs.AssertNotCalled(t, "FindByCustomerID", mock.Anything, mock.Anything)
	})

	t.Run("unreachable persistence resolves to free", func(t *testing.T) {
		f, customers, _ := newTestFetcher()
		customers.On("FindByUserID", mock.Anything, "user-1").Return(nil, errors.New("dial tcp: connection refused"))

		res := f.Resolve(ctx, "user-1")

		assert.Equal(t, domain.TierFree, res.Tier)
		assert.True(t, res.Degraded)
	})

	t.Run("customer without subscription resolves to free", func(t *testing.T) {
		f, customers, subs := newTestFetcher()
		customers.On("FindByUserID", mock.Anything, "user-1").Return(customer, nil)
		subs.On("FindByCustomerID", mock.Anything, "cus_1").Return(nil, shared.ErrNotFound)

		res := f.Resolve(ctx, "user-1")

		assert.Equal(t, domain.TierFree, res.Tier)
		assert.False(t, res.Degraded)
		assert.Equal(t, "cus_1", res.Snapshot.CustomerReference)
	})

	t.Run("subscription read error resolves to free", func(t *testing.T) {
		f, customers, subs := newTestFetcher()
		customers.On("FindByUserID", mock.Anything, "user-1").Return(customer, nil)
		subs.On("FindByCustomerID", mock.Anything, "cus_1").Return(nil, context.DeadlineExceeded)

		res := f.Resolve(ctx, "user-1")

		assert.Equal(t, domain.TierFree, res.Tier)
		assert.True(t, res.Degraded)
	})

	tests := []struct {
		name   string
		status subscription.BillingStatus
		price  string
		want   domain.Tier
	}{
		{"active premium", subscription.BillingStatusActive, subscription.DefaultPremiumPriceID, domain.TierPremium},
		{"active pro", subscription.BillingStatusActive, subscription.DefaultProPriceID, domain.TierPro},
		{"trialing trial", subscription.BillingStatusTrialing, subscription.DefaultTrialPriceID, domain.TierTrial},
		{"canceled premium", subscription.BillingStatusCanceled, subscription.DefaultPremiumPriceID, domain.TierFree},
		{"past due pro", subscription.BillingStatusPastDue, subscription.DefaultProPriceID, domain.TierFree},
		{"active unknown plan", subscription.BillingStatusActive, "price_unknown", domain.TierFree},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, customers, subs := newTestFetcher()
			customers.On("FindByUserID", mock.Anything, "user-1").Return(customer, nil)
			subs.On("FindByCustomerID", mock.Anything, "cus_1").Return(activeSub("cus_1", tt.price, tt.status), nil)

			res := f.Resolve(ctx, "user-1")

			assert.Equal(t, tt.want, res.Tier)
			assert.False(t, res.Degraded)
			assert.Equal(t, tt.status, res.Snapshot.BillingStatus)
			assert.NotNil(t, res.Snapshot.PeriodEnd)
			assert.Equal(t, tt.want, f.ResolveTier(ctx, "user-1"))
		})
	}
}
