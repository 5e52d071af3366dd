package subscription

// BillingStatus is the subscription status reported by the billing provider
type BillingStatus string

const (
	BillingStatusNotStarted        BillingStatus = "not_started"
	BillingStatusIncomplete        BillingStatus = "incomplete"
	BillingStatusIncompleteExpired BillingStatus = "incomplete_expired"
	BillingStatusTrialing          BillingStatus = "trialing"
	BillingStatusActive            BillingStatus = "active"
	BillingStatusPastDue           BillingStatus = "past_due"
	BillingStatusCanceled          BillingStatus = "canceled"
	BillingStatusUnpaid            BillingStatus = "unpaid"
	BillingStatusPaused            BillingStatus = "paused"
)

// String returns the string representation of BillingStatus
func (s BillingStatus) String() string {
	return string(s)
}

// IsEntitling returns true for the statuses that grant a paid tier.
// Only active and trialing subscriptions count; everything else,
// including an empty or unrecognised status, does not.
func (s BillingStatus) IsEntitling() bool {
	return s == BillingStatusActive || s == BillingStatusTrialing
}

// IsKnown returns true if the status is one the provider documents
func (s BillingStatus) IsKnown() bool {
	switch s {
	case BillingStatusNotStarted, BillingStatusIncomplete, BillingStatusIncompleteExpired,
		BillingStatusTrialing, BillingStatusActive, BillingStatusPastDue,
		BillingStatusCanceled, BillingStatusUnpaid, BillingStatusPaused:
		return true
	default:
		return false
	}
}
