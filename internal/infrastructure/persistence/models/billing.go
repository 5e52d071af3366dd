package models

import (
	"time"

	"github.com/friendaudit/backend/internal/domain/subscription"
)

// StripeCustomerModel maps an application user onto a Stripe customer
type StripeCustomerModel struct {
	UserID           string    `gorm:"type:varchar(128);primaryKey"`
	StripeCustomerID string    `gorm:"type:varchar(128);not null;uniqueIndex"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StripeCustomerModel) TableName() string {
	return "stripe_customers"
}

// ToDomain converts the persistence model to a domain Customer
func (m *StripeCustomerModel) ToDomain() *subscription.Customer {
	return &subscription.Customer{
		UserID:     m.UserID,
		CustomerID: m.StripeCustomerID,
		CreatedAt:  m.CreatedAt,
	}
}

// StripeCustomerModelFromDomain creates a persistence model from a domain Customer
func StripeCustomerModelFromDomain(c *subscription.Customer) *StripeCustomerModel {
	return &StripeCustomerModel{
		UserID:           c.UserID,
		StripeCustomerID: c.CustomerID,
		CreatedAt:        c.CreatedAt.UTC(),
		UpdatedAt:        time.Now().UTC(),
	}
}

// StripeSubscriptionModel is the subscription record of one Stripe customer
type StripeSubscriptionModel struct {
	StripeCustomerID     string     `gorm:"type:varchar(128);primaryKey"`
	StripeSubscriptionID string     `gorm:"type:varchar(128)"`
	Status               string     `gorm:"type:varchar(32);not null"`
	PriceID              string     `gorm:"type:varchar(128)"`
	CurrentPeriodEnd     *time.Time `gorm:"type:timestamptz"`
	CancelAtPeriodEnd    bool       `gorm:"not null"`
	UpdatedAt            time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StripeSubscriptionModel) TableName() string {
	return "stripe_subscriptions"
}

// ToDomain converts the persistence model to a domain Subscription
func (m *StripeSubscriptionModel) ToDomain() *subscription.Subscription {
	return &subscription.Subscription{
		CustomerID:        m.StripeCustomerID,
		SubscriptionID:    m.StripeSubscriptionID,
		Status:            subscription.BillingStatus(m.Status),
		PriceID:           m.PriceID,
		CurrentPeriodEnd:  m.CurrentPeriodEnd,
		CancelAtPeriodEnd: m.CancelAtPeriodEnd,
		UpdatedAt:         m.UpdatedAt,
	}
}

// StripeSubscriptionModelFromDomain creates a persistence model from a domain Subscription
func StripeSubscriptionModelFromDomain(s *subscription.Subscription) *StripeSubscriptionModel {
	var periodEnd *time.Time
	if s.CurrentPeriodEnd != nil {
		end := s.CurrentPeriodEnd.UTC()
		periodEnd = &end
	}
	return &StripeSubscriptionModel{
		StripeCustomerID:     s.CustomerID,
		StripeSubscriptionID: s.SubscriptionID,
		Status:               string(s.Status),
		PriceID:              s.PriceID,
		CurrentPeriodEnd:     periodEnd,
		CancelAtPeriodEnd:    s.CancelAtPeriodEnd,
		UpdatedAt:            s.UpdatedAt.UTC(),
	}
}
