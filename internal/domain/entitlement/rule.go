package entitlement

// Window describes how a quota window is measured
type Window string

const (
	// WindowRollingWeek is a rolling 7x24h duration ending at evaluation time
	WindowRollingWeek Window = "ROLLING_WEEK"
	// WindowCalendarDay starts at local midnight of the evaluation day
	WindowCalendarDay Window = "CALENDAR_DAY"
)

// Quota bounds how often a tier may use a feature inside a window
type Quota struct {
	Limit  int
	Window Window
	Metric UsageMetric
}

// AccessRule is the static rule attached to a FeatureKey.
// Tiers listed in Unlimited may always use the feature. The free tier may
// additionally use it while under FreeQuota, when one is set.
type AccessRule struct {
	Feature   FeatureKey
	Unlimited []Tier
	FreeQuota *Quota
}

// Allows reports whether tier has unconditional access
func (r AccessRule) Allows(tier Tier) bool {
	for _, t := range r.Unlimited {
		if t == tier {
			return true
		}
	}
	return false
}

// MinimumTier returns the narrowest paid tier that unlocks the feature
func (r AccessRule) MinimumTier() Tier {
	for _, t := range AllTiers() {
		if t.IsPaid() && r.Allows(t) {
			return t
		}
	}
	return TierPremium
}

// Free-tier quotas
const (
	// FreeWeeklyAuditLimit is the number of audits a free user may run per rolling week
	FreeWeeklyAuditLimit = 10
	// FreeDailyTextAnalysisLimit is the number of text analyses a free user may run per calendar day
	FreeDailyTextAnalysisLimit = 5
)

var (
	paidTiers   = []Tier{TierTrial, TierPro, TierPremium}
	proAndAbove = []Tier{TierPro, TierPremium}
	premiumOnly = []Tier{TierPremium}
	rules       = buildRuleTable()
)

func buildRuleTable() map[FeatureKey]AccessRule {
	table := []AccessRule{
		{
			Feature:   FeatureBasicAudit,
			Unlimited: paidTiers,
			FreeQuota: &Quota{Limit: FreeWeeklyAuditLimit, Window: WindowRollingWeek, Metric: MetricAuditsThisWeek},
		},
		{
			Feature:   FeatureTextAnalysis,
			Unlimited: paidTiers,
			FreeQuota: &Quota{Limit: FreeDailyTextAnalysisLimit, Window: WindowCalendarDay, Metric: MetricTextAnalysesToday},
		},
		{Feature: FeatureFullResults, Unlimited: paidTiers},
		{Feature: FeatureCompareFriends, Unlimited: paidTiers},
		{Feature: FeatureJournal, Unlimited: paidTiers},
		{Feature: FeatureEmotionalRadar, Unlimited: paidTiers},
		{Feature: FeatureAISimulator, Unlimited: paidTiers},
		{Feature: FeaturePatternReports, Unlimited: proAndAbove},
		{Feature: FeatureFriendshipForecast, Unlimited: proAndAbove},
		{Feature: FeatureRedFlagTracking, Unlimited: proAndAbove},
		{Feature: FeatureRedFlagTimeline, Unlimited: proAndAbove},
		{Feature: FeatureDramaHistoryImporter, Unlimited: proAndAbove},
		{Feature: FeatureFriendGroupDynamics, Unlimited: premiumOnly},
		{Feature: FeatureFriendshipContracts, Unlimited: premiumOnly},
		{Feature: FeatureGhostMode, Unlimited: premiumOnly},
		{Feature: FeatureToxicityLeaderboard, Unlimited: premiumOnly},
		{Feature: FeatureCircleMapping, Unlimited: premiumOnly},
	}

	m := make(map[FeatureKey]AccessRule, len(table))
	for _, r := range table {
		m[r.Feature] = r
	}
	return m
}

// RuleFor returns the access rule for a feature key.
// The second result is false for keys outside the table.
func RuleFor(key FeatureKey) (AccessRule, bool) {
	r, ok := rules[key]
	return r, ok
}
