package subscription

import (
	"fmt"

	"github.com/friendaudit/backend/internal/domain/entitlement"
	"github.com/shopspring/decimal"
)

// Default provider price references
const (
	DefaultPremiumPriceID = "price_1RZhnrR5oOXaHwM4YL6YbL5I"
	DefaultProPriceID     = "price_1RZhmpR5oOXaHwM44zfHhNOM"
	DefaultTrialPriceID   = "price_1RZhkKR5oOXaHwM4MWvxyeFI"
)

// CheckoutMode is the billing mode of a plan
type CheckoutMode string

const (
	CheckoutModeSubscription CheckoutMode = "subscription"
	CheckoutModePayment      CheckoutMode = "payment"
)

// Plan is a purchasable plan and the tier it grants
type Plan struct {
	Tier        entitlement.Tier `json:"tier"`
	PriceID     string           `json:"price_id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	Currency    string           `json:"currency"`
	Mode        CheckoutMode     `json:"mode"`
}

// PlanCatalog is the static plan to tier table
type PlanCatalog struct {
	plans   []Plan
	byPrice map[string]Plan
	byTier  map[entitlement.Tier]Plan
}

// NewPlanCatalog creates a catalogue. Price references must be unique,
// every plan must grant a paid tier, and each tier may be sold by one plan.
func NewPlanCatalog(plans ...Plan) (*PlanCatalog, error) {
	c := &PlanCatalog{
		byPrice: make(map[string]Plan, len(plans)),
		byTier:  make(map[entitlement.Tier]Plan, len(plans)),
	}
	for _, p := range plans {
		if p.PriceID == "" {
			return nil, fmt.Errorf("plan %q has no price reference", p.Name)
		}
		if !p.Tier.IsPaid() {
			return nil, fmt.Errorf("plan %q must grant a paid tier, got %q", p.Name, p.Tier)
		}
		if _, dup := c.byPrice[p.PriceID]; dup {
			return nil, fmt.Errorf("duplicate price reference: %s", p.PriceID)
		}
		if _, dup := c.byTier[p.Tier]; dup {
			return nil, fmt.Errorf("duplicate plan for tier: %s", p.Tier)
		}
		if p.Mode == "" {
			p.Mode = CheckoutModeSubscription
		}
		c.plans = append(c.plans, p)
		c.byPrice[p.PriceID] = p
		c.byTier[p.Tier] = p
	}
	return c, nil
}

// DefaultPlans returns the built-in plan definitions
func DefaultPlans() []Plan {
	return []Plan{
		{
			Tier:        entitlement.TierTrial,
			PriceID:     DefaultTrialPriceID,
			Name:        "3-Day Premium Trial",
			Description: "Unlimited audits, full text analyzer, Stay or Leave simulator, journaling, emotional radar and friend comparison.",
			Price:       decimal.RequireFromString("6.99"),
			Currency:    "usd",
			Mode:        CheckoutModeSubscription,
		},
		{
			Tier:        entitlement.TierPro,
			PriceID:     DefaultProPriceID,
			Name:        "TheFriendAudit - Pro",
			Description: "Everything in Trial plus red flag timeline, pattern reports, monthly forecast and red flag auto-tracking.",
			Price:       decimal.RequireFromString("9.99"),
			Currency:    "usd",
			Mode:        CheckoutModeSubscription,
		},
		{
			Tier:        entitlement.TierPremium,
			PriceID:     DefaultPremiumPriceID,
			Name:        "TheFriendAudit - Premium",
			Description: "Everything in Pro plus circle mapping, drama history importer, group dynamics, friendship contracts, ghost mode and toxicity leaderboard.",
			Price:       decimal.RequireFromString("14.99"),
			Currency:    "usd",
			Mode:        CheckoutModeSubscription,
		},
	}
}

// DefaultPlanCatalog returns the catalogue built from DefaultPlans
func DefaultPlanCatalog() *PlanCatalog {
	c, err := NewPlanCatalog(DefaultPlans()...)
	if err != nil {
		panic(err)
	}
	return c
}

// WithPriceIDs returns DefaultPlans with price references overridden per tier.
// Tiers missing from overrides keep their default reference.
func WithPriceIDs(overrides map[entitlement.Tier]string) []Plan {
	plans := DefaultPlans()
	for i := range plans {
		if id, ok := overrides[plans[i].Tier]; ok && id != "" {
			plans[i].PriceID = id
		}
	}
	return plans
}

// TierFor maps a price reference to its tier
func (c *PlanCatalog) TierFor(priceID string) (entitlement.Tier, bool) {
	p, ok := c.byPrice[priceID]
	if !ok {
		return entitlement.TierFree, false
	}
	return p.Tier, true
}

// PlanFor returns the plan selling tier
func (c *PlanCatalog) PlanFor(tier entitlement.Tier) (Plan, bool) {
	p, ok := c.byTier[tier]
	return p, ok
}

// Plans returns all plans in catalogue order
func (c *PlanCatalog) Plans() []Plan {
	out := make([]Plan, len(c.plans))
	copy(out, c.plans)
	return out
}
