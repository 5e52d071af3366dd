package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	appbilling "github.com/friendaudit/backend/internal/application/billing"
	appentitlement "github.com/friendaudit/backend/internal/application/entitlement"
	"github.com/friendaudit/backend/internal/domain/entitlement"
	"github.com/friendaudit/backend/internal/domain/subscription"
	"github.com/friendaudit/backend/internal/interfaces/http/dto"
	"github.com/friendaudit/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// maxWebhookPayloadSize bounds provider webhook bodies (64KB)
const maxWebhookPayloadSize = 65536

// StripeSignatureHeader carries the provider's webhook signature
const StripeSignatureHeader = "Stripe-Signature"

// CheckoutStarter is the checkout flow as seen by HTTP
type CheckoutStarter interface {
	Plans() []subscription.Plan
	StartCheckout(ctx context.Context, input appbilling.CheckoutInput) (*subscription.CheckoutSession, error)
	Complete(ctx context.Context, userID string) (appentitlement.State, error)
}

// WebhookProcessor verifies and applies provider events
type WebhookProcessor interface {
	ProcessWebhook(ctx context.Context, payload []byte, signature string) (*appbilling.WebhookResult, error)
}

// WebhookResponse is the reply to the billing provider
type WebhookResponse struct {
	Received  bool   `json:"received"`
	EventID   string `json:"event_id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Message   string `json:"message,omitempty"`
}

// BillingHandler serves plans, checkout and the provider webhook
type BillingHandler struct {
	BaseHandler
	checkout CheckoutStarter
	webhooks WebhookProcessor
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(checkout CheckoutStarter, webhooks WebhookProcessor) *BillingHandler {
	return &BillingHandler{
		checkout: checkout,
		webhooks: webhooks,
	}
}

// ListPlans returns the purchasable plans
func (h *BillingHandler) ListPlans(c *gin.Context) {
	h.Success(c, h.checkout.Plans())
}

// StartCheckout creates a hosted checkout for the requested tier
func (h *BillingHandler) StartCheckout(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	tier, err := entitlement.ParseTier(req.Tier)
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, err.Error())
		return
	}

	session, err := h.checkout.StartCheckout(c.Request.Context(), appbilling.CheckoutInput{
		UserID: userID,
		Email:  middleware.GetJWTEmail(c),
		Tier:   tier,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, session)
}

// CompleteCheckout is called after the provider redirects back on success.
// It refreshes the entitlement state and returns it.
func (h *BillingHandler) CompleteCheckout(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	state, err := h.checkout.Complete(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, newEntitlementsResponse(state))
}

// HandleWebhook receives signed provider events. It is unauthenticated;
// the signature is the credential. Processing failures of a verified event
// still answer 200 so the provider does not retry events that cannot succeed.
func (h *BillingHandler) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookPayloadSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, WebhookResponse{Message: "Failed to read request body"})
		return
	}
	if len(payload) > maxWebhookPayloadSize {
		c.JSON(http.StatusRequestEntityTooLarge, WebhookResponse{Message: "Payload too large"})
		return
	}

	signature := c.GetHeader(StripeSignatureHeader)
	if signature == "" {
		c.JSON(http.StatusBadRequest, WebhookResponse{Message: "Missing " + StripeSignatureHeader + " header"})
		return
	}

	result, err := h.webhooks.ProcessWebhook(c.Request.Context(), payload, signature)
	if errors.Is(err, appbilling.ErrInvalidSignature) {
		c.JSON(http.StatusBadRequest, WebhookResponse{Message: "Webhook signature verification failed"})
		return
	}
	if err != nil {
		_ = c.Error(err)
		resp := WebhookResponse{Received: true, Message: "Webhook received but processing encountered an issue"}
		if result != nil {
			resp.EventID = result.EventID
			resp.EventType = result.EventType
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	c.JSON(http.StatusOK, WebhookResponse{
		Received:  true,
		EventID:   result.EventID,
		EventType: result.EventType,
		Message:   result.Message,
	})
}
