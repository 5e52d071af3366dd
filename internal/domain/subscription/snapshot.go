package subscription

import (
	"time"

	"github.com/friendaudit/backend/internal/domain/entitlement"
)

// Snapshot is the immutable view of a user's billing record at one point in time.
// It is replaced wholesale on refresh and never patched.
type Snapshot struct {
	// CustomerReference is empty when the user never became a billing customer
	CustomerReference string `json:"customer_reference,omitempty"`
	// BillingStatus is empty when the customer has no subscription record
	BillingStatus BillingStatus `json:"billing_status,omitempty"`
	PlanReference string        `json:"plan_reference,omitempty"`
	PeriodEnd     *time.Time    `json:"period_end,omitempty"`
}

// EmptySnapshot is the snapshot of a user with no billing history
var EmptySnapshot = Snapshot{}

// SnapshotOf builds the snapshot for a customer and its subscription record.
// Either argument may be nil.
func SnapshotOf(customer *Customer, sub *Subscription) Snapshot {
	if customer == nil {
		return EmptySnapshot
	}
	s := Snapshot{CustomerReference: customer.CustomerID}
	if sub == nil {
		return s
	}
	s.BillingStatus = sub.Status
	s.PlanReference = sub.PriceID
	if sub.CurrentPeriodEnd != nil {
		end := *sub.CurrentPeriodEnd
		s.PeriodEnd = &end
	}
	return s
}

// HasCustomer returns true if the user has a billing customer record
func (s Snapshot) HasCustomer() bool {
	return s.CustomerReference != ""
}

// HasSubscription returns true if a subscription record was found
func (s Snapshot) HasSubscription() bool {
	return s.BillingStatus != ""
}

// Tier resolves the snapshot against the plan catalogue. It fails closed:
// missing records, non-entitling statuses and unknown plans all give free.
func (s Snapshot) Tier(catalog *PlanCatalog) entitlement.Tier {
	if !s.HasCustomer() || !s.BillingStatus.IsEntitling() || catalog == nil {
		return entitlement.TierFree
	}
	if tier, ok := catalog.TierFor(s.PlanReference); ok {
		return tier
	}
	return entitlement.TierFree
}
