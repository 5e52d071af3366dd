package subscription

import "context"

// CustomerRepository defines the persistence contract for customer mappings.
// Lookups return shared.ErrNotFound when no record exists; any other error
// is a query failure.
type CustomerRepository interface {
	// FindByUserID finds the customer mapping of an application user
	FindByUserID(ctx context.Context, userID string) (*Customer, error)

	// FindByCustomerID finds the mapping for a billing customer
	FindByCustomerID(ctx context.Context, customerID string) (*Customer, error)

	// Save creates or updates a customer mapping
	Save(ctx context.Context, customer *Customer) error
}

// SubscriptionRepository defines the persistence contract for subscription records
type SubscriptionRepository interface {
	// FindByCustomerID finds the subscription record of a billing customer
	FindByCustomerID(ctx context.Context, customerID string) (*Subscription, error)

	// Save creates or updates the subscription record of a customer
	Save(ctx context.Context, sub *Subscription) error
}
