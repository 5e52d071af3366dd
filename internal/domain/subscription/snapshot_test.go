package subscription

import (
	"testing"
	"time"

	"github.com/friendaudit/backend/internal/domain/entitlement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotOf(t *testing.T) {
	t.Run("no customer", func(t *testing.T) {
		s := SnapshotOf(nil, nil)
		assert.Equal(t, EmptySnapshot, s)
		assert.False(t, s.HasCustomer())
		assert.False(t, s.HasSubscription())
	})

	t.Run("customer without subscription", func(t *testing.T) {
		c, err := NewCustomer("user-1", "cus_123")
		require.NoError(t, err)

		s := SnapshotOf(c, nil)
		assert.True(t, s.HasCustomer())
		assert.False(t, s.HasSubscription())
		assert.Equal(t, "cus_123", s.CustomerReference)
	})

	t.Run("copies the period end", func(t *testing.T) {
		c, _ := NewCustomer("user-1", "cus_123")
		end := time.Unix(1750000000, 0)
		sub, err := NewSubscription("cus_123", "sub_1", BillingStatusActive, DefaultProPriceID)
		require.NoError(t, err)
		sub = sub.WithPeriodEnd(end)

		s := SnapshotOf(c, sub)
		require.NotNil(t, s.PeriodEnd)
		assert.True(t, end.Equal(*s.PeriodEnd))
		assert.NotSame(t, sub.CurrentPeriodEnd, s.PeriodEnd)
		assert.Equal(t, BillingStatusActive, s.BillingStatus)
		assert.Equal(t, DefaultProPriceID, s.PlanReference)
	})
}

func TestSnapshot_Tier(t *testing.T) {
	catalog := DefaultPlanCatalog()

	tests := []struct {
		name     string
		snapshot Snapshot
		want     entitlement.Tier
	}{
		{"never subscribed", EmptySnapshot, entitlement.TierFree},
		{"customer without subscription", Snapshot{CustomerReference: "cus_1"}, entitlement.TierFree},
		{"active premium", Snapshot{CustomerReference: "cus_1", BillingStatus: BillingStatusActive, PlanReference: DefaultPremiumPriceID}, entitlement.TierPremium},
		{"active pro", Snapshot{CustomerReference: "cus_1", BillingStatus: BillingStatusActive, PlanReference: DefaultProPriceID}, entitlement.TierPro},
		{"trialing trial", Snapshot{CustomerReference: "cus_1", BillingStatus: BillingStatusTrialing, PlanReference: DefaultTrialPriceID}, entitlement.TierTrial},
		{"active unknown plan", Snapshot{CustomerReference: "cus_1", BillingStatus: BillingStatusActive, PlanReference: "price_unknown"}, entitlement.TierFree},
		{"active empty plan", Snapshot{CustomerReference: "cus_1", BillingStatus: BillingStatusActive}, entitlement.TierFree},
		{"status without customer", Snapshot{BillingStatus: BillingStatusActive, PlanReference: DefaultPremiumPriceID}, entitlement.TierFree},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.snapshot.Tier(catalog))
		})
	}

	t.Run("non-entitling statuses always resolve to free", func(t *testing.T) {
		statuses := []BillingStatus{
			BillingStatusCanceled, BillingStatusPastDue, BillingStatusUnpaid, BillingStatusPaused,
			BillingStatusIncomplete, BillingStatusIncompleteExpired, BillingStatusNotStarted, "", "weird",
		}
		for _, status := range statuses {
			for _, plan := range catalog.Plans() {
				s := Snapshot{CustomerReference: "cus_1", BillingStatus: status, PlanReference: plan.PriceID}
				assert.Equal(t, entitlement.TierFree, s.Tier(catalog), "status=%q plan=%s", status, plan.PriceID)
			}
		}
	})

	t.Run("nil catalog resolves to free", func(t *testing.T) {
		s := Snapshot{CustomerReference: "cus_1", BillingStatus: BillingStatusActive, PlanReference: DefaultPremiumPriceID}
		assert.Equal(t, entitlement.TierFree, s.Tier(nil))
	})
}

func TestBillingStatus(t *testing.T) {
	assert.True(t, BillingStatusActive.IsEntitling())
	assert.True(t, BillingStatusTrialing.IsEntitling())
	assert.False(t, BillingStatusPastDue.IsEntitling())
	assert.True(t, BillingStatusPaused.IsKnown())
	assert.False(t, BillingStatus("weird").IsKnown())
}

func TestNewCustomer(t *testing.T) {
	_, err := NewCustomer("", "cus_1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "User ID cannot be empty")

	_, err = NewCustomer("user-1", " ")
	assert.Error(t, err)

	_, err = NewSubscription("", "sub_1", BillingStatusActive, "")
	assert.Error(t, err)
}
