package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	appentitlement "github.com/friendaudit/backend/internal/application/entitlement"
	"github.com/friendaudit/backend/internal/domain/entitlement"
	"github.com/friendaudit/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockFeatureChecker struct {
	mock.Mock
}

func (m *MockFeatureChecker) Check(ctx context.Context, userID string, feature entitlement.FeatureKey) (entitlement.Decision, error) {
	args := m.Called(ctx, userID, feature)
	return args.Get(0).(entitlement.Decision), args.Error(1)
}

func newGatedRouter(checker FeatureChecker, userID string) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set(JWTUserIDKey, userID)
		}
		c.Next()
	})
	r.POST("/journal", RequireFeature(entitlement.FeatureJournal, checker, zap.NewNop()), func(c *gin.Context) {
		d, ok := GetDecision(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusCreated, d)
	})
	return r
}

func TestRequireFeature(t *testing.T) {
	tests := []struct {
		name         string
		userID       string
		decision     entitlement.Decision
		err          error
		expectedHTTP int
		expectedCode string
	}{
		{
			name:         "paid tier allowed",
			userID:       "user-1",
			decision:     entitlement.Evaluate(entitlement.TierTrial, entitlement.UsageStats{}, entitlement.FeatureJournal),
			expectedHTTP: http.StatusCreated,
		},
		{
			name:         "free tier locked",
			userID:       "user-1",
			decision:     entitlement.Evaluate(entitlement.TierFree, entitlement.UsageStats{}, entitlement.FeatureJournal),
			expectedHTTP: http.StatusForbidden,
			expectedCode: dto.ErrCodeFeatureLocked,
		},
		{
			name:         "loading decision",
			userID:       "user-1",
			decision:     entitlement.LoadingDecision(entitlement.FeatureJournal),
			expectedHTTP: http.StatusServiceUnavailable,
			expectedCode: dto.ErrCodeEntitlementLoading,
		},
		{
			name:         "missing user",
			err:          appentitlement.ErrMissingUser,
			expectedHTTP: http.StatusUnauthorized,
			expectedCode: dto.ErrCodeUnauthorized,
		},
		{
			name:         "checker failure",
			userID:       "user-1",
			err:          errors.New("store unavailable"),
			expectedHTTP: http.StatusInternalServerError,
			expectedCode: dto.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := new(MockFeatureChecker)
			checker.On("Check", mock.Anything, tt.userID, entitlement.FeatureJournal).Return(tt.decision, tt.err)

			w := httptest.NewRecorder()
			newGatedRouter(checker, tt.userID).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/journal", nil))

			assert.Equal(t, tt.expectedHTTP, w.Code)
			if tt.expectedCode != "" {
				var resp dto.Response
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.expectedCode, resp.Error.Code)
			}
			checker.AssertExpectations(t)
		})
	}
}

func TestRequireFeature_LockedPayload(t *testing.T) {
	checker := new(MockFeatureChecker)
	checker.On("Check", mock.Anything, "user-1", entitlement.FeatureJournal).
		Return(entitlement.Evaluate(entitlement.TierFree, entitlement.UsageStats{}, entitlement.FeatureJournal), nil)

	w := httptest.NewRecorder()
	newGatedRouter(checker, "user-1").ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/journal", nil))

	var body struct {
		Error struct {
			Locked entitlement.LockedState `json:"locked"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, entitlement.FeatureJournal, body.Error.Locked.Feature)
	assert.Equal(t, entitlement.IconCrown, body.Error.Locked.Icon)
	require.NotNil(t, body.Error.Locked.Upgrade)
	assert.Equal(t, entitlement.UpgradeLabelTrial, body.Error.Locked.Upgrade.Label)
}

func TestRequireFeature_PanicsOnUnknownKey(t *testing.T) {
	assert.Panics(t, func() {
		RequireFeature(entitlement.FeatureKey("teleport"), new(MockFeatureChecker), nil)
	})
}
