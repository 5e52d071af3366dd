package entitlement

import (
	"fmt"
	"strings"
)

// Tier is the discrete subscription level governing feature access.
// Tiers are ordered by breadth of access but are not numerically comparable:
// use the rule table rather than comparing tiers directly.
type Tier string

const (
	// TierFree is the default tier for users without an entitling subscription
	TierFree Tier = "free"
	// TierTrial is the short paid trial plan
	TierTrial Tier = "trial"
	// TierPro is the mid plan
	TierPro Tier = "pro"
	// TierPremium is the full plan
	TierPremium Tier = "premium"
)

// String returns the string representation of Tier
func (t Tier) String() string {
	return string(t)
}

// IsValid returns true if the tier is one of the known tiers
func (t Tier) IsValid() bool {
	switch t {
	case TierFree, TierTrial, TierPro, TierPremium:
		return true
	default:
		return false
	}
}

// IsPaid returns true for every tier other than free
func (t Tier) IsPaid() bool {
	return t.IsValid() && t != TierFree
}

// DisplayName returns a human-readable name for the tier
func (t Tier) DisplayName() string {
	switch t {
	case TierFree:
		return "Free"
	case TierTrial:
		return "Trial"
	case TierPro:
		return "Pro"
	case TierPremium:
		return "Premium"
	default:
		return string(t)
	}
}

// orFree maps anything unrecognised onto the free tier.
func (t Tier) orFree() Tier {
	if t.IsValid() {
		return t
	}
	return TierFree
}

// AllTiers returns all known tiers from the narrowest to the broadest
func AllTiers() []Tier {
	return []Tier{TierFree, TierTrial, TierPro, TierPremium}
}

// ParseTier parses a string to Tier
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("invalid tier: %s", s)
	}
	return t, nil
}
