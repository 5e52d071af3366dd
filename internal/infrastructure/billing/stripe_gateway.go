package billing

import (
	"context"
	"fmt"

	"github.com/friendaudit/backend/internal/domain/subscription"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/customer"
	"go.uber.org/zap"
)

// MetadataUserID is the metadata key carrying the application user on Stripe objects
const MetadataUserID = "user_id"

// StripeGateway implements subscription.BillingGateway against the Stripe API
type StripeGateway struct {
	logger *zap.Logger
}

// NewStripeGateway validates config, initializes the Stripe client and
// returns the gateway
func NewStripeGateway(config *StripeConfig, logger *zap.Logger) (*StripeGateway, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.InitStripeClient()

	return &StripeGateway{logger: logger}, nil
}

// CreateCustomer creates a Stripe customer tagged with the application user
func (g *StripeGateway) CreateCustomer(ctx context.Context, userID, email string) (string, error) {
	params := &stripe.CustomerParams{
		Metadata: map[string]string{MetadataUserID: userID},
	}
	if email != "" {
		params.Email = stripe.String(email)
	}
	params.Context = ctx

	cust, err := customer.New(params)
	if err != nil {
		g.logger.Error("Failed to create Stripe customer",
			zap.String("user_id", userID),
			zap.Error(err))
		return "", fmt.Errorf("stripe: failed to create customer: %w", err)
	}

	g.logger.Info("Created Stripe customer",
		zap.String("user_id", userID),
		zap.String("customer_id", cust.ID))
	return cust.ID, nil
}

// CreateCheckoutSession creates a hosted checkout for req.Plan. The user ID
// travels as the client reference so the completion webhook can map the
// resulting customer back to the user.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req subscription.CheckoutRequest) (*subscription.CheckoutSession, error) {
	if req.Plan.PriceID == "" {
		return nil, fmt.Errorf("stripe: plan %s has no price", req.Plan.Tier)
	}

	mode := stripe.CheckoutSessionModeSubscription
	if req.Plan.Mode == subscription.CheckoutModePayment {
		mode = stripe.CheckoutSessionModePayment
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(mode)),
		ClientReferenceID: stripe.String(req.UserID),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.Plan.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{MetadataUserID: req.UserID},
	}
	if req.CustomerID != "" {
		params.Customer = stripe.String(req.CustomerID)
	}
	if mode == stripe.CheckoutSessionModeSubscription {
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{MetadataUserID: req.UserID},
		}
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		g.logger.Error("Failed to create checkout session",
			zap.String("user_id", req.UserID),
			zap.String("price_id", req.Plan.PriceID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create checkout session: %w", err)
	}

	g.logger.Info("Created checkout session",
		zap.String("user_id", req.UserID),
		zap.String("session_id", sess.ID),
		zap.String("tier", req.Plan.Tier.String()))

	return &subscription.CheckoutSession{
		SessionID: sess.ID,
		URL:       sess.URL,
	}, nil
}

var _ subscription.BillingGateway = (*StripeGateway)(nil)
