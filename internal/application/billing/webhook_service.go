package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/friendaudit/backend/internal/domain/shared"
	"github.com/friendaudit/backend/internal/domain/subscription"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

// Handled provider event types
const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
	EventSubscriptionCreated      = "customer.subscription.created"
	EventSubscriptionUpdated      = "customer.subscription.updated"
	EventSubscriptionDeleted      = "customer.subscription.deleted"
)

// ErrInvalidSignature is returned when the webhook payload cannot be verified
var ErrInvalidSignature = errors.New("webhook signature verification failed")

// WebhookServiceConfig contains configuration for WebhookService
type WebhookServiceConfig struct {
	WebhookSecret            string
	IgnoreAPIVersionMismatch bool
}

// WebhookResult contains the result of processing a webhook
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Processed bool   `json:"processed"`
	Message   string `json:"message,omitempty"`
}

// WebhookService keeps the stored customer and subscription records in sync
// with the billing provider. It is the only writer of those records.
type WebhookService struct {
	customers     subscription.CustomerRepository
	subscriptions subscription.SubscriptionRepository
	entitlements  EntitlementRefresher
	config        WebhookServiceConfig
	logger        *zap.Logger
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(
	customers subscription.CustomerRepository,
	subscriptions subscription.SubscriptionRepository,
	entitlements EntitlementRefresher,
	config WebhookServiceConfig,
	logger *zap.Logger,
) *WebhookService {
	return &WebhookService{
		customers:     customers,
		subscriptions: subscriptions,
		entitlements:  entitlements,
		config:        config,
		logger:        logger,
	}
}

// ProcessWebhook verifies and applies one provider event
func (s *WebhookService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.config.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: s.config.IgnoreAPIVersionMismatch})
	if err != nil {
		s.logger.Warn("Failed to verify webhook signature", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	return s.HandleEvent(ctx, event)
}

// HandleEvent applies an already verified event
func (s *WebhookService) HandleEvent(ctx context.Context, event stripe.Event) (*WebhookResult, error) {
	s.logger.Info("Processing billing webhook event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))

	result := &WebhookResult{
		EventID:   event.ID,
		EventType: string(event.Type),
		Processed: true,
	}

	var err error
	switch string(event.Type) {
	case EventCheckoutSessionCompleted:
		err = s.handleCheckoutCompleted(ctx, event)
	case EventSubscriptionCreated, EventSubscriptionUpdated:
		err = s.handleSubscriptionChanged(ctx, event, false)
	case EventSubscriptionDeleted:
		err = s.handleSubscriptionChanged(ctx, event, true)
	default:
		s.logger.Debug("Unhandled webhook event type",
			zap.String("event_type", string(event.Type)))
		result.Message = "Event type not handled"
	}

	if err != nil {
		s.logger.Error("Failed to process webhook event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		result.Processed = false
		result.Message = err.Error()
		return result, err
	}
	return result, nil
}

func (s *WebhookService) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var session stripe.CheckoutSession
	if err := unmarshalEventData(event, &session); err != nil {
		return fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}

	userID := session.ClientReferenceID
	customerID := ""
	if session.Customer != nil {
		customerID = session.Customer.ID
	}
	if userID == "" || customerID == "" {
		s.logger.Warn("Checkout session without user or customer reference, skipping",
			zap.String("session_id", session.ID))
		return nil
	}

	existing, err := s.customers.FindByUserID(ctx, userID)
	switch {
	case err == nil && existing.CustomerID == customerID:
	case err == nil || errors.Is(err, shared.ErrNotFound):
		customer, cerr := subscription.NewCustomer(userID, customerID)
		if cerr != nil {
			return cerr
		}
		if err := s.customers.Save(ctx, customer); err != nil {
			return fmt.Errorf("failed to save customer: %w", err)
		}
	default:
		return fmt.Errorf("failed to find customer: %w", err)
	}

	s.invalidate(ctx, userID)
	return nil
}

func (s *WebhookService) handleSubscriptionChanged(ctx context.Context, event stripe.Event, deleted bool) error {
	var stripeSub stripe.Subscription
	if err := unmarshalEventData(event, &stripeSub); err != nil {
		return fmt.Errorf("failed to unmarshal subscription: %w", err)
	}

	customerID := ""
	if stripeSub.Customer != nil {
		customerID = stripeSub.Customer.ID
	}
	if customerID == "" {
		s.logger.Warn("Subscription has no customer ID, skipping",
			zap.String("subscription_id", stripeSub.ID))
		return nil
	}

	status := subscription.BillingStatus(stripeSub.Status)
	if deleted {
		status = subscription.BillingStatusCanceled
	}
	if !status.IsKnown() {
		s.logger.Warn("Unknown subscription status",
			zap.String("subscription_id", stripeSub.ID),
			zap.String("status", string(stripeSub.Status)))
	}

	sub, err := subscription.NewSubscription(customerID, stripeSub.ID, status, firstPriceID(&stripeSub))
	if err != nil {
		return err
	}
	if stripeSub.CurrentPeriodEnd > 0 {
		sub = sub.WithPeriodEnd(time.Unix(stripeSub.CurrentPeriodEnd, 0).UTC())
	}
	sub.CancelAtPeriodEnd = stripeSub.CancelAtPeriodEnd
	sub.UpdatedAt = eventTime(event)

	stored, err := s.subscriptions.FindByCustomerID(ctx, customerID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("failed to load subscription: %w", err)
	}
	if !sub.Supersedes(stored) {
		s.logger.Info("Subscription event superseded by stored record, skipping",
			zap.String("event_id", event.ID),
			zap.String("customer_id", customerID),
			zap.String("subscription_id", stripeSub.ID),
			zap.String("stored_subscription_id", stored.SubscriptionID),
			zap.String("stored_status", stored.Status.String()))
		return nil
	}

	if err := s.subscriptions.Save(ctx, sub); err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}

	s.logger.Info("Subscription synced",
		zap.String("customer_id", customerID),
		zap.String("subscription_id", stripeSub.ID),
		zap.String("status", status.String()),
		zap.String("price_id", sub.PriceID))

	customer, err := s.customers.FindByCustomerID(ctx, customerID)
	if err != nil {
		// webhooks can arrive before the checkout completion that maps the customer
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("No user mapped to billing customer",
				zap.String("customer_id", customerID))
			return nil
		}
		return fmt.Errorf("failed to find customer: %w", err)
	}
	s.invalidate(ctx, customer.UserID)
	return nil
}

func (s *WebhookService) invalidate(ctx context.Context, userID string) {
	if s.entitlements == nil {
		return
	}
	if err := s.entitlements.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("Failed to invalidate entitlement state",
			zap.String("user_id", userID),
			zap.Error(err))
	}
}

// eventTime is when the provider created the event. Delivery order is not
// guaranteed, so records are versioned by it rather than by arrival.
func eventTime(event stripe.Event) time.Time {
	if event.Created > 0 {
		return time.Unix(event.Created, 0).UTC()
	}
	return time.Now().UTC()
}

func unmarshalEventData(event stripe.Event, v any) error {
	if event.Data == nil {
		return errors.New("event has no data")
	}
	return json.Unmarshal(event.Data.Raw, v)
}

func firstPriceID(sub *stripe.Subscription) string {
	if sub.Items == nil {
		return ""
	}
	for _, item := range sub.Items.Data {
		if item != nil && item.Price != nil && item.Price.ID != "" {
			return item.Price.ID
		}
	}
	return ""
}
