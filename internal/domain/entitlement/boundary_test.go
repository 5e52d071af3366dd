package entitlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLockedState_Messages(t *testing.T) {
	tests := []struct {
		name    string
		tier    Tier
		usage   UsageStats
		feature FeatureKey
		want    string
	}{
		{
			name:    "weekly audits exhausted",
			tier:    TierFree,
			usage:   UsageStats{AuditsThisWeek: 12},
			feature: FeatureBasicAudit,
			want:    "You've used all 10/10 audits this week. Upgrade for unlimited audits!",
		},
		{
			name:    "daily text analyses exhausted",
			tier:    TierFree,
			usage:   UsageStats{TextAnalysesToday: 5},
			feature: FeatureTextAnalysis,
			want:    "You've used all 5/5 text analyses today. Upgrade for unlimited access!",
		},
		{
			name:    "journal",
			tier:    TierFree,
			feature: FeatureJournal,
			want:    "Track friendship patterns over time with our journaling tools!",
		},
		{
			name:    "ai simulator",
			tier:    TierFree,
			feature: FeatureAISimulator,
			want:    `Get AI-powered "Stay or Leave" recommendations with Premium!`,
		},
		{
			name:    "feature without dedicated message",
			tier:    TierPro,
			feature: FeatureGhostMode,
			want:    DefaultLockedMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(tt.tier, tt.usage, tt.feature)
			require.Equal(t, VerdictDenied, d.Verdict)

			ls := DefaultLockedState(d)
			assert.Equal(t, tt.want, ls.Message)
			assert.Equal(t, LockedTitle, ls.Title)
			assert.Equal(t, tt.feature, ls.Feature)
			require.NotNil(t, ls.Upgrade)
		})
	}
}

func TestDefaultLockedState_UnknownFeature(t *testing.T) {
	d := Evaluate(TierPremium, UsageStats{}, "teleportation")
	ls := DefaultLockedState(d)

	assert.Equal(t, DefaultLockedMessage, ls.Message)
	assert.Equal(t, IconLock, ls.Icon)
	assert.Equal(t, TierPremium, ls.Upgrade.SuggestedTier)
}

func TestDefaultLockedState_Icons(t *testing.T) {
	tests := []struct {
		name    string
		tier    Tier
		usage   UsageStats
		feature FeatureKey
		want    LockedIcon
	}{
		{"crown for free journal", TierFree, UsageStats{}, FeatureJournal, IconCrown},
		{"crown for free simulator", TierFree, UsageStats{}, FeatureAISimulator, IconCrown},
		{"sparkles for circle mapping", TierPro, UsageStats{}, FeatureCircleMapping, IconSparkles},
		{"sparkles for contracts", TierFree, UsageStats{}, FeatureFriendshipContracts, IconSparkles},
		{"clock when quota exhausted", TierFree, UsageStats{AuditsThisWeek: 10}, FeatureBasicAudit, IconClock},
		{"lock otherwise", TierTrial, UsageStats{}, FeaturePatternReports, IconLock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ls := DefaultLockedState(Evaluate(tt.tier, tt.usage, tt.feature))
			assert.Equal(t, tt.want, ls.Icon)
		})
	}
}

func TestDefaultLockedState_UpgradeLabel(t *testing.T) {
	free := DefaultLockedState(Evaluate(TierFree, UsageStats{}, FeatureFullResults))
	assert.Equal(t, UpgradeLabelTrial, free.Upgrade.Label)
	assert.Equal(t, TierTrial, free.Upgrade.SuggestedTier)

	pro := DefaultLockedState(Evaluate(TierPro, UsageStats{}, FeatureGhostMode))
	assert.Equal(t, UpgradeLabelPaid, pro.Upgrade.Label)
	assert.Equal(t, TierPremium, pro.Upgrade.SuggestedTier)
}

func TestBoundary_Locked(t *testing.T) {
	t.Run("allowed decision has no locked state", func(t *testing.T) {
		b := NewBoundary(Evaluate(TierPremium, UsageStats{}, FeatureGhostMode))
		assert.Nil(t, b.Locked())
	})

	t.Run("loading decision has no locked state", func(t *testing.T) {
		b := NewBoundary(LoadingDecision(FeatureGhostMode))
		assert.Nil(t, b.Locked())
	})

	t.Run("custom locked state keeps an upgrade trigger", func(t *testing.T) {
		b := NewBoundary(
			Evaluate(TierFree, UsageStats{}, FeatureEmotionalRadar),
			WithLockedState(LockedState{Message: "Unblur your radar", Icon: IconSparkles}),
		)

		ls := b.Locked()
		require.NotNil(t, ls)
		assert.Equal(t, "Unblur your radar", ls.Message)
		assert.Equal(t, IconSparkles, ls.Icon)
		assert.Equal(t, FeatureEmotionalRadar, ls.Feature)
		assert.Equal(t, LockedTitle, ls.Title)
		require.NotNil(t, ls.Upgrade)
		assert.Equal(t, UpgradeLabelTrial, ls.Upgrade.Label)
	})

	t.Run("upgrade can be hidden", func(t *testing.T) {
		b := NewBoundary(Evaluate(TierFree, UsageStats{}, FeatureJournal), WithoutUpgrade())
		ls := b.Locked()
		require.NotNil(t, ls)
		assert.Nil(t, ls.Upgrade)
	})
}

func TestGuard(t *testing.T) {
	calls := 0
	protected := func() string {
		calls++
		return "full report"
	}

	t.Run("allowed runs protected content", func(t *testing.T) {
		out := Guard(NewBoundary(Evaluate(TierPro, UsageStats{}, FeaturePatternReports)), protected)

		assert.Equal(t, VerdictAllowed, out.Verdict)
		assert.Equal(t, "full report", out.Content)
		assert.Nil(t, out.Locked)
		assert.Equal(t, 1, calls)
	})

	t.Run("denied never runs protected content", func(t *testing.T) {
		out := Guard(NewBoundary(Evaluate(TierPro, UsageStats{}, FeatureFriendGroupDynamics)), protected)

		assert.Equal(t, VerdictDenied, out.Verdict)
		assert.Empty(t, out.Content)
		require.NotNil(t, out.Locked)
		assert.Equal(t, 1, calls)
	})

	t.Run("loading exposes neither", func(t *testing.T) {
		out := Guard(NewBoundary(LoadingDecision(FeaturePatternReports)), protected)

		assert.Equal(t, VerdictLoading, out.Verdict)
		assert.Empty(t, out.Content)
		assert.Nil(t, out.Locked)
		assert.Equal(t, 1, calls)
	})
}

func TestBoundary_View(t *testing.T) {
	v := NewBoundary(Evaluate(TierFree, UsageStats{AuditsThisWeek: 10}, FeatureBasicAudit)).View()

	assert.False(t, v.Decision.Allowed)
	require.NotNil(t, v.Locked)
	assert.Equal(t, IconClock, v.Locked.Icon)
}
