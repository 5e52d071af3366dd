package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appactivity "github.com/friendaudit/backend/internal/application/activity"
	appbilling "github.com/friendaudit/backend/internal/application/billing"
	appentitlement "github.com/friendaudit/backend/internal/application/entitlement"
	"github.com/friendaudit/backend/internal/domain/activity"
	"github.com/friendaudit/backend/internal/domain/entitlement"
	"github.com/friendaudit/backend/internal/domain/subscription"
	"github.com/friendaudit/backend/internal/interfaces/http/dto"
	"github.com/friendaudit/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testUserID = "user-123"

// withUser simulates the JWT middleware
func withUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			c.Set(middleware.JWTUserIDKey, userID)
			c.Set(middleware.JWTEmailKey, "sam@example.com")
		}
		c.Next()
	}
}

func newTestRouter(userID string) *gin.Engine {
	r := gin.New()
	r.Use(withUser(userID))
	return r
}

func doRequest(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// testEnvelope decodes the response envelope keeping data raw
type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func loadedState(tier entitlement.Tier, usage entitlement.UsageStats) appentitlement.State {
	return appentitlement.State{
		UserID:      testUserID,
		Loaded:      true,
		Tier:        tier,
		Usage:       usage,
		RefreshedAt: time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC),
	}
}

type MockEntitlementService struct {
	mock.Mock
}

func (m *MockEntitlementService) Current(ctx context.Context, userID string) appentitlement.State {
	return m.Called(ctx, userID).Get(0).(appentitlement.State)
}

func (m *MockEntitlementService) Load(ctx context.Context, userID string) (appentitlement.State, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(appentitlement.State), args.Error(1)
}

func (m *MockEntitlementService) Refresh(ctx context.Context, userID string) (appentitlement.State, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(appentitlement.State), args.Error(1)
}

func (m *MockEntitlementService) Check(ctx context.Context, userID string, feature entitlement.FeatureKey) (entitlement.Decision, error) {
	args := m.Called(ctx, userID, feature)
	return args.Get(0).(entitlement.Decision), args.Error(1)
}

func (m *MockEntitlementService) Invalidate(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type MockActivityRecorder struct {
	mock.Mock
}

func (m *MockActivityRecorder) RecordAudit(ctx context.Context, input appactivity.RecordAuditInput) (*activity.ActivityRecord, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*activity.ActivityRecord), args.Error(1)
}

func (m *MockActivityRecorder) RecordJournalNote(ctx context.Context, input appactivity.RecordJournalInput) (*activity.JournalEntry, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*activity.JournalEntry), args.Error(1)
}

func (m *MockActivityRecorder) History(ctx context.Context, userID string, opts activity.ListOptions) (*appactivity.History, error) {
	args := m.Called(ctx, userID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appactivity.History), args.Error(1)
}

func (m *MockActivityRecorder) Audits(ctx context.Context, userID string, opts activity.ListOptions) ([]*activity.ActivityRecord, error) {
	args := m.Called(ctx, userID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*activity.ActivityRecord), args.Error(1)
}

func (m *MockActivityRecorder) Journal(ctx context.Context, userID string, opts activity.ListOptions) ([]*activity.JournalEntry, error) {
	args := m.Called(ctx, userID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*activity.JournalEntry), args.Error(1)
}

func (m *MockActivityRecorder) DeleteAudit(ctx context.Context, userID string, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockActivityRecorder) DeleteJournalEntry(ctx context.Context, userID string, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

type MockCheckoutStarter struct {
	mock.Mock
}

func (m *MockCheckoutStarter) Plans() []subscription.Plan {
	return m.Called().Get(0).([]subscription.Plan)
}

func (m *MockCheckoutStarter) StartCheckout(ctx context.Context, input appbilling.CheckoutInput) (*subscription.CheckoutSession, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.CheckoutSession), args.Error(1)
}

func (m *MockCheckoutStarter) Complete(ctx context.Context, userID string) (appentitlement.State, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(appentitlement.State), args.Error(1)
}

type MockWebhookProcessor struct {
	mock.Mock
}

func (m *MockWebhookProcessor) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*appbilling.WebhookResult, error) {
	args := m.Called(ctx, payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appbilling.WebhookResult), args.Error(1)
}
