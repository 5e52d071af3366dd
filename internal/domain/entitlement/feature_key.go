package entitlement

import "fmt"

// FeatureKey identifies a gated capability.
// The set is closed: every key must have an entry in the rule table.
type FeatureKey string

const (
	// FeatureBasicAudit is the friendship quiz audit, metered weekly for free users
	FeatureBasicAudit FeatureKey = "basic_audit"
	// FeatureTextAnalysis is the message text analyzer, metered daily for free users
	FeatureTextAnalysis FeatureKey = "text_analysis"
	// FeatureFullResults unblurs the complete audit result
	FeatureFullResults FeatureKey = "full_results"
	// FeatureCompareFriends compares two friends side by side
	FeatureCompareFriends FeatureKey = "compare_friends"
	// FeatureJournal is the friendship journal
	FeatureJournal FeatureKey = "journal"
	// FeatureEmotionalRadar is the emotional radar chart
	FeatureEmotionalRadar FeatureKey = "emotional_radar"
	// FeatureAISimulator is the "Stay or Leave" simulator
	FeatureAISimulator FeatureKey = "ai_simulator"
	// FeaturePatternReports is the emotional pattern report over time
	FeaturePatternReports FeatureKey = "pattern_reports"
	// FeatureFriendshipForecast is the monthly relationship forecast
	FeatureFriendshipForecast FeatureKey = "friendship_forecast"
	// FeatureRedFlagTracking is red flag auto-tracking from message input
	FeatureRedFlagTracking FeatureKey = "red_flag_tracking"
	// FeatureRedFlagTimeline is the red flag pattern timeline
	FeatureRedFlagTimeline FeatureKey = "red_flag_timeline"
	// FeatureDramaHistoryImporter imports chat history for analysis
	FeatureDramaHistoryImporter FeatureKey = "drama_history_importer"
	// FeatureFriendGroupDynamics is the friend group dynamics map
	FeatureFriendGroupDynamics FeatureKey = "friend_group_dynamics"
	// FeatureFriendshipContracts is the friendship contract generator
	FeatureFriendshipContracts FeatureKey = "friendship_contracts"
	// FeatureGhostMode is strategic exit planning
	FeatureGhostMode FeatureKey = "ghost_mode"
	// FeatureToxicityLeaderboard is the global toxicity insights board
	FeatureToxicityLeaderboard FeatureKey = "toxicity_leaderboard"
	// FeatureCircleMapping visualizes the whole friendship circle
	FeatureCircleMapping FeatureKey = "circle_mapping"
)

// String returns the string representation of FeatureKey
func (k FeatureKey) String() string {
	return string(k)
}

// IsValid returns true if the key has an access rule
func (k FeatureKey) IsValid() bool {
	_, ok := rules[k]
	return ok
}

// IsMetered returns true if the key is quota-bound for some tier
func (k FeatureKey) IsMetered() bool {
	rule, ok := rules[k]
	return ok && rule.FreeQuota != nil
}

// AllFeatureKeys returns every known feature key in declaration order
func AllFeatureKeys() []FeatureKey {
	return []FeatureKey{
		FeatureBasicAudit,
		FeatureTextAnalysis,
		FeatureFullResults,
		FeatureCompareFriends,
		FeatureJournal,
		FeatureEmotionalRadar,
		FeatureAISimulator,
		FeaturePatternReports,
		FeatureFriendshipForecast,
		FeatureRedFlagTracking,
		FeatureRedFlagTimeline,
		FeatureDramaHistoryImporter,
		FeatureFriendGroupDynamics,
		FeatureFriendshipContracts,
		FeatureGhostMode,
		FeatureToxicityLeaderboard,
		FeatureCircleMapping,
	}
}

// MeteredFeatureKeys returns the quota-bound feature keys
func MeteredFeatureKeys() []FeatureKey {
	var keys []FeatureKey
	for _, k := range AllFeatureKeys() {
		if k.IsMetered() {
			keys = append(keys, k)
		}
	}
	return keys
}

// ParseFeatureKey parses a string to FeatureKey
func ParseFeatureKey(s string) (FeatureKey, error) {
	k := FeatureKey(s)
	if !k.IsValid() {
		return "", fmt.Errorf("invalid feature key: %s", s)
	}
	return k, nil
}
