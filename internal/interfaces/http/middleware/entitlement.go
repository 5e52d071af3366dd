package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	appentitlement "github.com/friendaudit/backend/internal/application/entitlement"
	"github.com/friendaudit/backend/internal/domain/entitlement"
	"github.com/friendaudit/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DecisionKey holds the entitlement.Decision that admitted the request
const DecisionKey = "entitlement_decision"

// FeatureChecker decides whether a user may use a feature
type FeatureChecker interface {
	Check(ctx context.Context, userID string, feature entitlement.FeatureKey) (entitlement.Decision, error)
}

// RequireFeature creates middleware that admits the request only when the
// authenticated user may use feature. It must run after JWT auth.
// Panics if feature is not a known key.
func RequireFeature(feature entitlement.FeatureKey, checker FeatureChecker, log *zap.Logger) gin.HandlerFunc {
	if !feature.IsValid() {
		panic(fmt.Sprintf("invalid feature key: %s", feature))
	}
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		if !EnforceFeature(c, feature, checker, log) {
			return
		}
		c.Next()
	}
}

// EnforceFeature checks feature for the authenticated user. When the
// decision does not allow it, the matching error response is written, the
// chain is aborted and false is returned. Handlers whose feature depends on
// the request body call it directly.
func EnforceFeature(c *gin.Context, feature entitlement.FeatureKey, checker FeatureChecker, log *zap.Logger) bool {
	requestID := GetRequestID(c)
	userID := GetJWTUserID(c)

	decision, err := checker.Check(c.Request.Context(), userID, feature)
	if err != nil {
		if errors.Is(err, appentitlement.ErrMissingUser) {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Authentication required", requestID))
			return false
		}
		log.Error("Failed to check feature",
			zap.String("user_id", userID),
			zap.String("feature", feature.String()),
			zap.Error(err),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			dto.NewErrorResponseWithRequestID(dto.ErrCodeInternal, "Failed to check feature availability", requestID))
		return false
	}

	switch decision.Verdict {
	case entitlement.VerdictAllowed:
		c.Set(DecisionKey, decision)
		return true
	case entitlement.VerdictDenied:
		locked := entitlement.NewBoundary(decision).Locked()
		log.Info("Feature access denied",
			zap.String("user_id", userID),
			zap.String("feature", feature.String()),
			zap.String("tier", decision.Tier.String()),
		)
		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewFeatureLockedResponse(locked.Message, requestID, locked))
		return false
	default:
		c.AbortWithStatusJSON(http.StatusServiceUnavailable,
			dto.NewErrorResponseWithRequestID(dto.ErrCodeEntitlementLoading, "Entitlements are still loading", requestID))
		return false
	}
}

// GetDecision returns the decision stored by RequireFeature, if any
func GetDecision(c *gin.Context) (entitlement.Decision, bool) {
	v, ok := c.Get(DecisionKey)
	if !ok {
		return entitlement.Decision{}, false
	}
	d, ok := v.(entitlement.Decision)
	return d, ok
}
