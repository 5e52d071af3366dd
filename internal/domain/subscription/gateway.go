package subscription

import "context"

// CheckoutRequest describes a hosted checkout to start for one user
type CheckoutRequest struct {
	UserID     string
	CustomerID string
	Plan       Plan
	SuccessURL string
	CancelURL  string
}

// CheckoutSession is a checkout created by the billing provider
type CheckoutSession struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// BillingGateway is the outbound port to the billing provider
type BillingGateway interface {
	// CreateCustomer registers the user with the provider and returns the customer reference
	CreateCustomer(ctx context.Context, userID, email string) (string, error)
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
}
