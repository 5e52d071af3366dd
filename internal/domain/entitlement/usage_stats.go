package entitlement

// UsageStats holds the windowed usage counts for one user.
// It is derived from the activity log on every refresh and never patched.
type UsageStats struct {
	// AuditsThisWeek counts every activity record in the rolling 7x24h window
	AuditsThisWeek int `json:"audits_this_week"`
	// TextAnalysesToday counts text analyses since the start of the calendar day
	TextAnalysesToday int `json:"text_analyses_today"`
	// SavedFriends counts distinct friends across all records (informational)
	SavedFriends int `json:"saved_friends"`
}

// ZeroUsage is the fail-open value used when usage cannot be computed
var ZeroUsage = UsageStats{}

// UsageMetric selects one of the windowed counts of UsageStats
type UsageMetric string

const (
	// MetricAuditsThisWeek selects UsageStats.AuditsThisWeek
	MetricAuditsThisWeek UsageMetric = "audits_this_week"
	// MetricTextAnalysesToday selects UsageStats.TextAnalysesToday
	MetricTextAnalysesToday UsageMetric = "text_analyses_today"
)

// Value returns the count selected by metric, or 0 for an unknown metric
func (u UsageStats) Value(metric UsageMetric) int {
	switch metric {
	case MetricAuditsThisWeek:
		return max(0, u.AuditsThisWeek)
	case MetricTextAnalysesToday:
		return max(0, u.TextAnalysesToday)
	default:
		return 0
	}
}
