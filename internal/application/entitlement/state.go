package entitlement

import (
	"time"

	domain "github.com/friendaudit/backend/internal/domain/entitlement"
	"github.com/friendaudit/backend/internal/domain/subscription"
)

// State is the immutable (tier, usage) pair a user's decisions are taken
// from. A State is produced whole by Service.Refresh and replaced whole on
// the next refresh; callers hold it by value.
//
// The zero State, and any State with Loaded false, is the neutral loading
// state: it neither allows nor denies.
type State struct {
	UserID       string                `json:"user_id"`
	Loaded       bool                  `json:"loaded"`
	Tier         domain.Tier           `json:"tier"`
	Subscription subscription.Snapshot `json:"subscription"`
	Usage        domain.UsageStats     `json:"usage"`
	RefreshedAt  time.Time             `json:"refreshed_at"`
	// TierDegraded is true when the tier fell back to free after a read error
	TierDegraded bool `json:"tier_degraded,omitempty"`
	// UsageDegraded is true when usage fell back to zero after a read error
	UsageDegraded bool `json:"usage_degraded,omitempty"`
}

// LoadingState returns the loading state for userID
func LoadingState(userID string) State {
	return State{UserID: userID}
}

// IsLoading returns true until both reads of a refresh have completed
func (s State) IsLoading() bool {
	return !s.Loaded
}

// Decide evaluates feature against the state
func (s State) Decide(feature domain.FeatureKey) domain.Decision {
	if s.IsLoading() {
		return domain.LoadingDecision(feature)
	}
	return domain.Evaluate(s.Tier, s.Usage, feature)
}

// CanUseFeature reports whether feature may run. A loading state never allows.
func (s State) CanUseFeature(feature domain.FeatureKey) bool {
	return s.Decide(feature).Allowed
}

// RemainingUsage returns the remaining quota, Unlimited while loading
func (s State) RemainingUsage(feature domain.FeatureKey) int {
	return s.Decide(feature).Remaining
}

// Boundary builds the feature boundary for feature
func (s State) Boundary(feature domain.FeatureKey, opts ...domain.BoundaryOption) domain.Boundary {
	return domain.NewBoundary(s.Decide(feature), opts...)
}

// Decisions evaluates every known feature, or returns loading decisions
func (s State) Decisions() map[domain.FeatureKey]domain.Decision {
	if s.IsLoading() {
		out := make(map[domain.FeatureKey]domain.Decision)
		for _, k := range domain.AllFeatureKeys() {
			out[k] = domain.LoadingDecision(k)
		}
		return out
	}
	return domain.EvaluateAll(s.Tier, s.Usage)
}

// UsageMeters returns the free-tier usage meters; nil while loading or on paid tiers
func (s State) UsageMeters() []domain.UsageMeter {
	if s.IsLoading() {
		return nil
	}
	return domain.UsageDisplay(s.Tier, s.Usage)
}
