package entitlement

// MeterLevel grades how close a usage meter is to its limit
type MeterLevel string

const (
	MeterLevelOK       MeterLevel = "ok"
	MeterLevelWarning  MeterLevel = "warning"
	MeterLevelCritical MeterLevel = "critical"
)

// Meter thresholds in percent of the limit
const (
	meterWarningPercent  = 70
	meterCriticalPercent = 90
)

// LimitReachedNotice is shown on an exhausted meter
const LimitReachedNotice = "Limit reached - upgrade for unlimited access"

// UsageMeter is the read-only projection of one quota for a free-tier user
type UsageMeter struct {
	Feature    FeatureKey `json:"feature"`
	Label      string     `json:"label"`
	Window     Window     `json:"window"`
	Used       int        `json:"used"`
	Limit      int        `json:"limit"`
	Remaining  int        `json:"remaining"`
	Percentage float64    `json:"percentage"`
	Level      MeterLevel `json:"level"`
	Exhausted  bool       `json:"exhausted"`
	Notice     string     `json:"notice,omitempty"`
}

func meterLabel(key FeatureKey) string {
	switch key {
	case FeatureBasicAudit:
		return "Audits this week"
	case FeatureTextAnalysis:
		return "Text analyses today"
	default:
		return string(key)
	}
}

// UsageDisplayFor returns the usage meter for feature, or nil when the tier
// is not free or the feature is not metered.
func UsageDisplayFor(tier Tier, usage UsageStats, feature FeatureKey) *UsageMeter {
	if tier.orFree() != TierFree {
		return nil
	}
	remaining := RemainingUsage(tier, usage, feature)
	if remaining == Unlimited {
		return nil
	}
	rule := rules[feature]
	limit := rule.FreeQuota.Limit
	used := limit - remaining

	m := &UsageMeter{
		Feature:    feature,
		Label:      meterLabel(feature),
		Window:     rule.FreeQuota.Window,
		Used:       used,
		Limit:      limit,
		Remaining:  remaining,
		Percentage: float64(used*100) / float64(limit),
		Level:      MeterLevelOK,
		Exhausted:  remaining == 0,
	}
	switch {
	case m.Percentage >= meterCriticalPercent:
		m.Level = MeterLevelCritical
	case m.Percentage >= meterWarningPercent:
		m.Level = MeterLevelWarning
	}
	if m.Exhausted {
		m.Notice = LimitReachedNotice
	}
	return m
}

// UsageDisplay returns the meters for every metered feature.
// It returns nil for any tier other than free.
func UsageDisplay(tier Tier, usage UsageStats) []UsageMeter {
	if tier.orFree() != TierFree {
		return nil
	}
	var meters []UsageMeter
	for _, key := range MeteredFeatureKeys() {
		if m := UsageDisplayFor(tier, usage, key); m != nil {
			meters = append(meters, *m)
		}
	}
	return meters
}
