package entitlement

import "fmt"

// LockedIcon is the icon hint shown on a locked feature
type LockedIcon string

const (
	IconLock     LockedIcon = "lock"
	IconCrown    LockedIcon = "crown"
	IconSparkles LockedIcon = "sparkles"
	IconClock    LockedIcon = "clock"
)

// Upgrade button labels
const (
	UpgradeLabelTrial = "Start Free Trial"
	UpgradeLabelPaid  = "Upgrade Now"
)

// DefaultLockedMessage is shown for feature keys without a dedicated message
const DefaultLockedMessage = "This feature requires a premium subscription!"

// LockedTitle is the heading of every locked state
const LockedTitle = "Feature Locked"

// UpgradeTrigger is the call to action attached to a locked state.
// Acting on it is the job of the billing checkout flow.
type UpgradeTrigger struct {
	Label         string `json:"label"`
	SuggestedTier Tier   `json:"suggested_tier"`
}

// LockedState is what the consumer sees instead of a locked feature
type LockedState struct {
	Feature FeatureKey      `json:"feature"`
	Title   string          `json:"title"`
	Message string          `json:"message"`
	Icon    LockedIcon      `json:"icon"`
	Upgrade *UpgradeTrigger `json:"upgrade,omitempty"`
}

// DefaultLockedState derives the locked state for a denied decision
func DefaultLockedState(d Decision) LockedState {
	return LockedState{
		Feature: d.Feature,
		Title:   LockedTitle,
		Message: lockedMessage(d),
		Icon:    lockedIcon(d),
		Upgrade: upgradeTrigger(d),
	}
}

func lockedMessage(d Decision) string {
	switch d.Feature {
	case FeatureBasicAudit:
		return fmt.Sprintf("You've used all %d/%d audits this week. Upgrade for unlimited audits!",
			FreeWeeklyAuditLimit-d.Remaining, FreeWeeklyAuditLimit)
	case FeatureTextAnalysis:
		return fmt.Sprintf("You've used all %d/%d text analyses today. Upgrade for unlimited access!",
			FreeDailyTextAnalysisLimit-d.Remaining, FreeDailyTextAnalysisLimit)
	case FeatureFullResults:
		return "Upgrade to see your complete friendship analysis with unblurred insights!"
	case FeatureCompareFriends:
		return "Compare friends side-by-side with Pro or Premium!"
	case FeatureJournal:
		return "Track friendship patterns over time with our journaling tools!"
	case FeatureAISimulator:
		return `Get AI-powered "Stay or Leave" recommendations with Premium!`
	case FeatureCircleMapping:
		return "Visualize your entire friend group dynamics with Premium!"
	default:
		return DefaultLockedMessage
	}
}

func lockedIcon(d Decision) LockedIcon {
	switch {
	case d.Tier == TierFree && (d.Feature == FeatureAISimulator || d.Feature == FeatureJournal):
		return IconCrown
	case d.Feature == FeatureCircleMapping || d.Feature == FeatureFriendshipContracts:
		return IconSparkles
	case d.Remaining == 0:
		return IconClock
	default:
		return IconLock
	}
}

func upgradeTrigger(d Decision) *UpgradeTrigger {
	label := UpgradeLabelPaid
	if d.Tier.orFree() == TierFree {
		label = UpgradeLabelTrial
	}
	suggested := TierPremium
	if rule, ok := rules[d.Feature]; ok {
		suggested = rule.MinimumTier()
	}
	return &UpgradeTrigger{Label: label, SuggestedTier: suggested}
}

// BoundaryOption customises a Boundary
type BoundaryOption func(*Boundary)

// WithLockedState replaces the default locked state.
// A custom state without an upgrade trigger receives the default one.
func WithLockedState(ls LockedState) BoundaryOption {
	return func(b *Boundary) {
		b.custom = &ls
	}
}

// WithoutUpgrade hides the upgrade trigger on the locked state
func WithoutUpgrade() BoundaryOption {
	return func(b *Boundary) {
		b.hideUpgrade = true
	}
}

// Boundary is the consumption point of a single feature decision
type Boundary struct {
	decision    Decision
	custom      *LockedState
	hideUpgrade bool
}

// NewBoundary creates a boundary around decision
func NewBoundary(decision Decision, opts ...BoundaryOption) Boundary {
	b := Boundary{decision: decision}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// Decision returns the decision the boundary was built from
func (b Boundary) Decision() Decision {
	return b.decision
}

// Locked returns the locked state, or nil when the feature is allowed or
// the decision is still loading.
func (b Boundary) Locked() *LockedState {
	if b.decision.Verdict != VerdictDenied {
		return nil
	}
	var ls LockedState
	if b.custom != nil {
		ls = *b.custom
		if ls.Feature == "" {
			ls.Feature = b.decision.Feature
		}
		if ls.Title == "" {
			ls.Title = LockedTitle
		}
		if ls.Upgrade == nil {
			ls.Upgrade = upgradeTrigger(b.decision)
		}
	} else {
		ls = DefaultLockedState(b.decision)
	}
	if b.hideUpgrade {
		ls.Upgrade = nil
	}
	return &ls
}

// View is the serialisable projection of a Boundary
type View struct {
	Decision Decision     `json:"decision"`
	Locked   *LockedState `json:"locked,omitempty"`
}

// View returns the boundary projection
func (b Boundary) View() View {
	return View{Decision: b.decision, Locked: b.Locked()}
}

// Outcome is the result of passing through a Boundary: exactly one of
// Content or Locked is meaningful, selected by Verdict.
type Outcome[T any] struct {
	Verdict Verdict
	Content T
	Locked  *LockedState
}

// Guard runs protected only when the boundary allows it. A denied boundary
// yields its locked state and a loading boundary yields neither.
func Guard[T any](b Boundary, protected func() T) Outcome[T] {
	switch b.decision.Verdict {
	case VerdictAllowed:
		return Outcome[T]{Verdict: VerdictAllowed, Content: protected()}
	case VerdictDenied:
		return Outcome[T]{Verdict: VerdictDenied, Locked: b.Locked()}
	default:
		return Outcome[T]{Verdict: VerdictLoading}
	}
}
