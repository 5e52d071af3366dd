package dto

import (
	"time"

	"github.com/friendaudit/backend/internal/domain/entitlement"
	"github.com/friendaudit/backend/internal/domain/subscription"
)

// EntitlementsResponse is the current entitlement state of the caller
type EntitlementsResponse struct {
	Loading      bool                                            `json:"loading"`
	Tier         entitlement.Tier                                `json:"tier,omitempty"`
	Usage        *entitlement.UsageStats                         `json:"usage,omitempty"`
	Subscription *subscription.Snapshot                          `json:"subscription,omitempty"`
	Features     map[entitlement.FeatureKey]entitlement.Decision `json:"features"`
	Meters       []entitlement.UsageMeter                        `json:"meters"`
	RefreshedAt  *time.Time                                      `json:"refreshed_at,omitempty"`
	Degraded     bool                                            `json:"degraded,omitempty"`
}

// FeatureResponse is the decision and boundary view of one feature
type FeatureResponse struct {
	entitlement.View
	Meter *entitlement.UsageMeter `json:"meter,omitempty"`
}

// UsageResponse lists the caller's usage meters; empty for non-free tiers
type UsageResponse struct {
	Tier   entitlement.Tier         `json:"tier"`
	Usage  *entitlement.UsageStats  `json:"usage"`
	Meters []entitlement.UsageMeter `json:"meters"`
}
