package billing

import (
	"context"
	"errors"
	"fmt"

	appentitlement "github.com/friendaudit/backend/internal/application/entitlement"
	"github.com/friendaudit/backend/internal/domain/entitlement"
	"github.com/friendaudit/backend/internal/domain/shared"
	"github.com/friendaudit/backend/internal/domain/subscription"
	"go.uber.org/zap"
)

// Default redirect targets after the hosted checkout
const (
	DefaultSuccessPath = "/subscription-success"
	DefaultCancelPath  = "/pricing"
)

// ErrPlanNotAvailable is returned when no plan sells the requested tier
var ErrPlanNotAvailable = shared.NewDomainError("PLAN_NOT_AVAILABLE", "No plan is available for the requested tier")

// EntitlementRefresher is the part of the entitlement service billing needs
type EntitlementRefresher interface {
	Refresh(ctx context.Context, userID string) (appentitlement.State, error)
	Invalidate(ctx context.Context, userID string) error
}

// CheckoutServiceConfig contains configuration for CheckoutService
type CheckoutServiceConfig struct {
	// BaseURL is the public origin the redirect paths are appended to
	BaseURL     string
	SuccessPath string
	CancelPath  string
}

// DefaultCheckoutServiceConfig returns the default redirect configuration
func DefaultCheckoutServiceConfig() CheckoutServiceConfig {
	return CheckoutServiceConfig{
		BaseURL:     "http://localhost:5173",
		SuccessPath: DefaultSuccessPath,
		CancelPath:  DefaultCancelPath,
	}
}

// CheckoutInput contains input for starting a checkout
type CheckoutInput struct {
	UserID string
	Email  string
	Tier   entitlement.Tier
}

// CheckoutService starts provider checkouts and completes them
type CheckoutService struct {
	customers    subscription.CustomerRepository
	catalog      *subscription.PlanCatalog
	gateway      subscription.BillingGateway
	entitlements EntitlementRefresher
	config       CheckoutServiceConfig
	logger       *zap.Logger
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(
	customers subscription.CustomerRepository,
	catalog *subscription.PlanCatalog,
	gateway subscription.BillingGateway,
	entitlements EntitlementRefresher,
	config CheckoutServiceConfig,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		customers:    customers,
		catalog:      catalog,
		gateway:      gateway,
		entitlements: entitlements,
		config:       config,
		logger:       logger,
	}
}

// Plans returns the purchasable plans
func (s *CheckoutService) Plans() []subscription.Plan {
	return s.catalog.Plans()
}

// StartCheckout creates a hosted checkout for the tier and returns where to redirect the user.
// A provider customer is created on the first checkout and remembered for later ones.
func (s *CheckoutService) StartCheckout(ctx context.Context, input CheckoutInput) (*subscription.CheckoutSession, error) {
	if input.UserID == "" {
		return nil, shared.ErrUnauthorized
	}
	plan, ok := s.catalog.PlanFor(input.Tier)
	if !ok {
		return nil, ErrPlanNotAvailable
	}

	customerID, err := s.ensureCustomer(ctx, input.UserID, input.Email)
	if err != nil {
		return nil, err
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, subscription.CheckoutRequest{
		UserID:     input.UserID,
		CustomerID: customerID,
		Plan:       plan,
		SuccessURL: s.config.BaseURL + s.config.SuccessPath,
		CancelURL:  s.config.BaseURL + s.config.CancelPath,
	})
	if err != nil {
		s.logger.Error("Failed to create checkout session",
			zap.String("user_id", input.UserID),
			zap.String("tier", input.Tier.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	s.logger.Info("Checkout session created",
		zap.String("user_id", input.UserID),
		zap.String("customer_id", customerID),
		zap.String("price_id", plan.PriceID),
		zap.String("session_id", session.SessionID))

	return session, nil
}

// Complete is called once the user lands back from a successful checkout.
// The entitlement state is refreshed so the new tier shows up immediately.
func (s *CheckoutService) Complete(ctx context.Context, userID string) (appentitlement.State, error) {
	return s.entitlements.Refresh(ctx, userID)
}

func (s *CheckoutService) ensureCustomer(ctx context.Context, userID, email string) (string, error) {
	existing, err := s.customers.FindByUserID(ctx, userID)
	if err == nil {
		return existing.CustomerID, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return "", fmt.Errorf("failed to look up customer: %w", err)
	}

	customerID, err := s.gateway.CreateCustomer(ctx, userID, email)
	if err != nil {
		return "", fmt.Errorf("failed to create customer: %w", err)
	}
	customer, err := subscription.NewCustomer(userID, customerID)
	if err != nil {
		return "", err
	}
	if err := s.customers.Save(ctx, customer); err != nil {
		return "", fmt.Errorf("failed to save customer: %w", err)
	}

	s.logger.Info("Billing customer created",
		zap.String("user_id", userID),
		zap.String("customer_id", customerID))
	return customerID, nil
}
