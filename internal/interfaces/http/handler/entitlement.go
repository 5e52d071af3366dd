package handler

import (
	"context"
	"net/http"

	appentitlement "github.com/friendaudit/backend/internal/application/entitlement"
	"github.com/friendaudit/backend/internal/domain/entitlement"
	"github.com/friendaudit/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// EntitlementService is the entitlement refresh model as seen by HTTP
type EntitlementService interface {
	Current(ctx context.Context, userID string) appentitlement.State
	Load(ctx context.Context, userID string) (appentitlement.State, error)
	Refresh(ctx context.Context, userID string) (appentitlement.State, error)
	Check(ctx context.Context, userID string, feature entitlement.FeatureKey) (entitlement.Decision, error)
	Invalidate(ctx context.Context, userID string) error
}

// EntitlementHandler serves the caller's tier, usage and feature decisions
type EntitlementHandler struct {
	BaseHandler
	entitlements EntitlementService
}

// NewEntitlementHandler creates a new EntitlementHandler
func NewEntitlementHandler(entitlements EntitlementService) *EntitlementHandler {
	return &EntitlementHandler{entitlements: entitlements}
}

// GetEntitlements returns the stored state without triggering a refresh.
// A caller that never refreshed gets loading=true and loading decisions.
func (h *EntitlementHandler) GetEntitlements(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	h.Success(c, newEntitlementsResponse(h.entitlements.Current(c.Request.Context(), userID)))
}

// Refresh re-reads tier and usage and returns the new state
func (h *EntitlementHandler) Refresh(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	state, err := h.entitlements.Refresh(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, newEntitlementsResponse(state))
}

// GetFeature returns the decision and boundary view for one feature key
func (h *EntitlementHandler) GetFeature(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	feature, err := entitlement.ParseFeatureKey(c.Param("feature"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, err.Error())
		return
	}

	state, err := h.entitlements.Load(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.FeatureResponse{
		View:  state.Boundary(feature).View(),
		Meter: entitlement.UsageDisplayFor(state.Tier, state.Usage, feature),
	})
}

// GetUsage returns the caller's usage meters, loading the state if needed
func (h *EntitlementHandler) GetUsage(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	state, err := h.entitlements.Load(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	usage := state.Usage
	meters := state.UsageMeters()
	if meters == nil {
		meters = []entitlement.UsageMeter{}
	}
	h.Success(c, dto.UsageResponse{
		Tier:   state.Tier,
		Usage:  &usage,
		Meters: meters,
	})
}

func newEntitlementsResponse(state appentitlement.State) dto.EntitlementsResponse {
	resp := dto.EntitlementsResponse{
		Loading:  state.IsLoading(),
		Features: state.Decisions(),
		Meters:   state.UsageMeters(),
	}
	if resp.Meters == nil {
		resp.Meters = []entitlement.UsageMeter{}
	}
	if state.IsLoading() {
		return resp
	}

	usage := state.Usage
	snapshot := state.Subscription
	refreshedAt := state.RefreshedAt
	resp.Tier = state.Tier
	resp.Usage = &usage
	resp.Subscription = &snapshot
	resp.RefreshedAt = &refreshedAt
	resp.Degraded = state.TierDegraded || state.UsageDegraded
	return resp
}
