package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/friendaudit/backend/internal/domain/activity"
	"github.com/friendaudit/backend/internal/domain/subscription"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripeSubscriptionModel_RoundTrip(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	end := time.Date(2025, 7, 1, 9, 0, 0, 0, tokyo)

	sub, err := subscription.NewSubscription("cus_1", "sub_1", subscription.BillingStatusActive, "price_pro")
	require.NoError(t, err)
	sub = sub.WithPeriodEnd(end)

	m := StripeSubscriptionModelFromDomain(sub)
	assert.Equal(t, "active", m.Status)
	require.NotNil(t, m.CurrentPeriodEnd)
	assert.Equal(t, time.UTC, m.CurrentPeriodEnd.Location())

	back := m.ToDomain()
	assert.Equal(t, subscription.BillingStatusActive, back.Status)
	assert.True(t, end.Equal(*back.CurrentPeriodEnd))
}

func TestAuditResultModel_ToDomain(t *testing.T) {
	now := time.Now()
	rec, err := activity.NewActivityRecord("user-1", "Sam", activity.AuditTypeComparison, json.RawMessage(`{"winner":"Sam"}`), now)
	require.NoError(t, err)

	back := AuditResultModelFromDomain(rec).ToDomain()
	assert.Equal(t, rec.ID, back.ID)
	assert.Equal(t, activity.AuditTypeComparison, back.AuditType)
	assert.JSONEq(t, `{"winner":"Sam"}`, string(back.Results))
	assert.True(t, now.Equal(back.CreatedAt))
}
