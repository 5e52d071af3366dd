package entitlement

// Unlimited is the RemainingUsage sentinel for "not quota-limited"
const Unlimited = -1

// Verdict is the three-state outcome of a feature check
type Verdict string

const (
	// VerdictLoading means tier or usage has not been resolved yet
	VerdictLoading Verdict = "LOADING"
	// VerdictAllowed means the feature may run
	VerdictAllowed Verdict = "ALLOWED"
	// VerdictDenied means the feature is locked
	VerdictDenied Verdict = "DENIED"
)

// Decision is the evaluated entitlement for one (tier, usage, feature) triple
type Decision struct {
	Feature   FeatureKey `json:"feature"`
	Tier      Tier       `json:"tier"`
	Verdict   Verdict    `json:"verdict"`
	Allowed   bool       `json:"allowed"`
	Remaining int        `json:"remaining"`
	Used      int        `json:"used"`
	Limit     int        `json:"limit"`
}

// IsLoading returns true when the decision was taken before inputs were ready
func (d Decision) IsLoading() bool {
	return d.Verdict == VerdictLoading
}

// IsMetered returns true when the decision carries a finite quota
func (d Decision) IsMetered() bool {
	return d.Remaining != Unlimited
}

// CanUseFeature reports whether tier, given usage, may use feature.
// Unknown feature keys and unknown tiers are denied.
func CanUseFeature(tier Tier, usage UsageStats, feature FeatureKey) bool {
	rule, ok := rules[feature]
	if !ok {
		return false
	}
	tier = tier.orFree()
	if rule.Allows(tier) {
		return true
	}
	if tier == TierFree && rule.FreeQuota != nil {
		return usage.Value(rule.FreeQuota.Metric) < rule.FreeQuota.Limit
	}
	return false
}

// RemainingUsage returns max(0, limit-used) for quota-bound features on the
// free tier and Unlimited for every other combination.
func RemainingUsage(tier Tier, usage UsageStats, feature FeatureKey) int {
	rule, ok := rules[feature]
	if !ok || rule.FreeQuota == nil || tier.orFree() != TierFree {
		return Unlimited
	}
	return max(0, rule.FreeQuota.Limit-usage.Value(rule.FreeQuota.Metric))
}

// Evaluate combines CanUseFeature and RemainingUsage into a Decision
func Evaluate(tier Tier, usage UsageStats, feature FeatureKey) Decision {
	tier = tier.orFree()
	allowed := CanUseFeature(tier, usage, feature)

	d := Decision{
		Feature:   feature,
		Tier:      tier,
		Verdict:   VerdictDenied,
		Allowed:   allowed,
		Remaining: RemainingUsage(tier, usage, feature),
	}
	if allowed {
		d.Verdict = VerdictAllowed
	}
	if d.IsMetered() {
		rule := rules[feature]
		d.Limit = rule.FreeQuota.Limit
		d.Used = d.Limit - d.Remaining
	}
	return d
}

// LoadingDecision returns the neutral decision used until inputs resolve.
// It neither allows nor denies.
func LoadingDecision(feature FeatureKey) Decision {
	return Decision{
		Feature:   feature,
		Verdict:   VerdictLoading,
		Remaining: Unlimited,
	}
}

// EvaluateAll evaluates every known feature key
func EvaluateAll(tier Tier, usage UsageStats) map[FeatureKey]Decision {
	out := make(map[FeatureKey]Decision, len(rules))
	for _, k := range AllFeatureKeys() {
		out[k] = Evaluate(tier, usage, k)
	}
	return out
}
