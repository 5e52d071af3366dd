package subscription

import (
	"strings"
	"time"

	"github.com/friendaudit/backend/internal/domain/shared"
)

// Customer maps an application user onto a billing-provider customer
type Customer struct {
	UserID     string
	CustomerID string
	CreatedAt  time.Time
}

// NewCustomer creates a customer mapping
func NewCustomer(userID, customerID string) (*Customer, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if strings.TrimSpace(customerID) == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	return &Customer{
		UserID:     userID,
		CustomerID: customerID,
		CreatedAt:  time.Now(),
	}, nil
}

// Subscription is the subscription record stored for a billing customer.
// It is written by the billing webhook and only read by the entitlement engine.
type Subscription struct {
	CustomerID        string
	SubscriptionID    string
	Status            BillingStatus
	PriceID           string
	CurrentPeriodEnd  *time.Time
	CancelAtPeriodEnd bool
	UpdatedAt         time.Time
}

// NewSubscription creates a subscription record for a customer
func NewSubscription(customerID, subscriptionID string, status BillingStatus, priceID string) (*Subscription, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	return &Subscription{
		CustomerID:     customerID,
		SubscriptionID: subscriptionID,
		Status:         status,
		PriceID:        priceID,
		UpdatedAt:      time.Now(),
	}, nil
}

// Supersedes reports whether s may replace stored, the record currently kept
// for the same customer. An event older than the stored record never
// replaces it, and an event ending a different subscription does not
// displace one that still entitles.
func (s *Subscription) Supersedes(stored *Subscription) bool {
	if stored == nil {
		return true
	}
	if s.UpdatedAt.Before(stored.UpdatedAt) {
		return false
	}
	if s.SubscriptionID != stored.SubscriptionID && stored.Status.IsEntitling() && !s.Status.IsEntitling() {
		return false
	}
	return true
}

// WithPeriodEnd returns a copy with the current period end set
func (s Subscription) WithPeriodEnd(end time.Time) *Subscription {
	s.CurrentPeriodEnd = &end
	return &s
}
