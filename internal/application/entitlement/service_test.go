package entitlement

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/friendaudit/backend/internal/domain/activity"
	domain "github.com/friendaudit/backend/internal/domain/entitlement"
	"github.com/friendaudit/backend/internal/domain/shared"
	"github.com/friendaudit/backend/internal/domain/subscription"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type serviceFixture struct {
	service   *Service
	customers *MockCustomerRepository
	subs      *MockSubscriptionRepository
	log       *memoryActivityLog
	store     *mapStore
	now       time.Time
}

func newServiceFixture() *serviceFixture {
	fx := &serviceFixture{
		customers: new(MockCustomerRepository),
		subs:      new(MockSubscriptionRepository),
		log:       &memoryActivityLog{},
		store:     newMapStore(),
		now:       time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC),
	}
	fetcher := NewSnapshotFetcher(fx.customers, fx.subs, subscription.DefaultPlanCatalog(), nil, zap.NewNop())
	counter := NewUsageCounter(fx.log, time.UTC, nil, zap.NewNop())
	fx.service = NewService(fetcher, counter, fx.store, nil, zap.NewNop(), ServiceConfig{
		ReadTimeout: time.Second,
		Clock:       func() time.Time { return fx.now },
	})
	return fx
}

func (fx *serviceFixture) withTier(userID string, priceID string) {
	customer := &subscription.Customer{UserID: userID, CustomerID: "cus_" + userID}
	fx.customers.On("FindByUserID", mock.Anything, userID).Return(customer, nil)
	fx.subs.On("FindByCustomerID", mock.Anything, customer.CustomerID).
		Return(activeSub(customer.CustomerID, priceID, subscription.BillingStatusActive), nil)
}

func (fx *serviceFixture) withoutCustomer(userID string) {
	fx.customers.On("FindByUserID", mock.Anything, userID).Return(nil, shared.ErrNotFound)
}

func TestService_ScenarioA_FreeUserReachesWeeklyLimit(t *testing.T) {
	ctx := context.Background()
	fx := newServiceFixture()
	fx.withoutCustomer("user-a")

	for i := 0; i < 9; i++ {
		appendRecord(t, fx.log, "user-a", "Sam", activity.AuditTypeQuiz, fx.now.Add(-time.Duration(i+1)*time.Hour))
	}

	state, err := fx.service.Refresh(ctx, "user-a")
	require.NoError(t, err)
	assert.Equal(t, domain.TierFree, state.Tier)
	assert.True(t, state.CanUseFeature(domain.FeatureBasicAudit))
	assert.Equal(t, 1, state.RemainingUsage(domain.FeatureBasicAudit))

	appendRecord(t, fx.log, "user-a", "Sam", activity.AuditTypeQuiz, fx.now)

	stale := fx.service.Current(ctx, "user-a")
	assert.True(t, stale.CanUseFeature(domain.FeatureBasicAudit), "usage is not reflected until the next refresh")

	state, err = fx.service.Refresh(ctx, "user-a")
	require.NoError(t, err)
	assert.False(t, state.CanUseFeature(domain.FeatureBasicAudit))
	assert.Equal(t, 0, state.RemainingUsage(domain.FeatureBasicAudit))
}

func TestService_ScenarioB_NoCustomerAndUnreachablePersistence(t *testing.T) {
	ctx := context.Background()

	t.Run("no customer record", func(t *testing.T) {
		fx := newServiceFixture()
		fx.withoutCustomer("user-b")

		state, err := fx.service.Refresh(ctx, "user-b")

		require.NoError(t, err)
		assert.Equal(t, domain.TierFree, state.Tier)
		assert.False(t, state.TierDegraded)
	})

	t.Run("persistence unreachable", func(t *testing.T) {
		customers := new(MockCustomerRepository)
		subs := new(MockSubscriptionRepository)
		activities := new(MockActivityRepository)
		unreachable := errors.New("dial tcp 10.0.0.1:5432: connect: connection refused")
		customers.On("FindByUserID", mock.Anything, "user-b").Return(nil, unreachable)
		activities.On("Count", mock.Anything, mock.Anything).Return(int64(0), unreachable)

		svc := NewService(
			NewSnapshotFetcher(customers, subs, subscription.DefaultPlanCatalog(), nil, zap.NewNop()),
			NewUsageCounter(activities, time.UTC, nil, zap.NewNop()),
			newMapStore(), nil, zap.NewNop(), DefaultServiceConfig(),
		)

		state, err := svc.Refresh(ctx, "user-b")

		require.NoError(t, err)
		assert.Equal(t, domain.TierFree, state.Tier)
		assert.True(t, state.TierDegraded)
		assert.True(t, state.UsageDegraded)
		assert.Equal(t, domain.ZeroUsage, state.Usage)
		assert.True(t, state.CanUseFeature(domain.FeatureBasicAudit), "zero usage fails open for metered features")
		assert.False(t, state.CanUseFeature(domain.FeatureJournal), "tier fails closed for paid features")
	})
}

func TestService_ReadsDegradeIndependently(t *testing.T) {
	ctx := context.Background()
	fx := newServiceFixture()
	fx.customers.On("FindByUserID", mock.Anything, "user-d").Return(nil, errors.New("connection reset"))
	appendRecord(t, fx.log, "user-d", "Sam", activity.AuditTypeQuiz, fx.now.Add(-time.Hour))
	appendRecord(t, fx.log, "user-d", "Alex", activity.AuditTypeTextAnalysis, fx.now.Add(-time.Hour))

	state, err := fx.service.Refresh(ctx, "user-d")

	require.NoError(t, err)
	assert.True(t, state.TierDegraded)
	assert.Equal(t, domain.TierFree, state.Tier)
	assert.False(t, state.UsageDegraded, "a failed tier read does not cancel the usage read")
	assert.Equal(t, 2, state.Usage.AuditsThisWeek)
	assert.Equal(t, 1, state.Usage.TextAnalysesToday)
	assert.Equal(t, 2, state.Usage.SavedFriends)
}

func TestService_ScenarioC_ProUser(t *testing.T) {
	ctx := context.Background()
	fx := newServiceFixture()
	fx.withTier("user-c", subscription.DefaultProPriceID)

	state, err := fx.service.Refresh(ctx, "user-c")
	require.NoError(t, err)

	assert.Equal(t, domain.TierPro, state.Tier)
	assert.False(t, state.CanUseFeature(domain.FeatureFriendGroupDynamics))
	assert.True(t, state.CanUseFeature(domain.FeaturePatternReports))
	assert.Nil(t, state.UsageMeters())
}

func TestService_LoadingState(t *testing.T) {
	ctx := context.Background()
	fx := newServiceFixture()

	state := fx.service.Current(ctx, "user-new")

	assert.True(t, state.IsLoading())
	d := state.Decide(domain.FeatureBasicAudit)
	assert.Equal(t, domain.VerdictLoading, d.Verdict)
	assert.False(t, d.Allowed)
	assert.Nil(t, state.Boundary(domain.FeatureJournal).Locked(), "loading is neither allow nor deny")
	assert.Nil(t, state.UsageMeters())
	for _, d := range state.Decisions() {
		assert.True(t, d.IsLoading())
	}
}

func TestService_Load(t *testing.T) {
	ctx := context.Background()
	fx := newServiceFixture()
	fx.withTier("user-l", subscription.DefaultPremiumPriceID)

	state, err := fx.service.Load(ctx, "user-l")
	require.NoError(t, err)
	assert.Equal(t, domain.TierPremium, state.Tier)

	_, err = fx.service.Load(ctx, "user-l")
	require.NoError(t, err)
	fx.customers.AssertNumberOfCalls(t, "FindByUserID", 1)

	require.NoError(t, fx.service.Invalidate(ctx, "user-l"))
	assert.True(t, fx.service.Current(ctx, "user-l").IsLoading())
}

func TestService_Check(t *testing.T) {
	ctx := context.Background()
	fx := newServiceFixture()
	fx.withTier("user-k", subscription.DefaultTrialPriceID)

	d, err := fx.service.Check(ctx, "user-k", domain.FeatureAISimulator)
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = fx.service.Check(ctx, "user-k", "teleportation")
	require.NoError(t, err)
	assert.False(t, d.Allowed)

	_, err = fx.service.Check(ctx, "", domain.FeatureAISimulator)
	assert.ErrorIs(t, err, ErrMissingUser)
}

func TestService_RefreshReplacesStateWhole(t *testing.T) {
	ctx := context.Background()
	fx := newServiceFixture()
	fx.withoutCustomer("user-r")

	first, err := fx.service.Refresh(ctx, "user-r")
	require.NoError(t, err)

	appendRecord(t, fx.log, "user-r", "Sam", activity.AuditTypeTextAnalysis, fx.now)
	fx.now = fx.now.Add(time.Minute)

	second, err := fx.service.Refresh(ctx, "user-r")
	require.NoError(t, err)

	assert.Equal(t, 0, first.Usage.TextAnalysesToday, "a returned state is never patched")
	assert.Equal(t, 1, second.Usage.TextAnalysesToday)
	assert.True(t, second.RefreshedAt.After(first.RefreshedAt))
	assert.Equal(t, second, fx.service.Current(ctx, "user-r"))
}

func TestService_StoreFailureStillReturnsState(t *testing.T) {
	ctx := context.Background()
	fx := newServiceFixture()
	fx.withoutCustomer("user-s")
	fx.store.putErr = errors.New("redis down")

	state, err := fx.service.Refresh(ctx, "user-s")

	require.NoError(t, err)
	assert.False(t, state.IsLoading())
	assert.True(t, fx.service.Current(ctx, "user-s").IsLoading())
}

func TestService_ConcurrentRefreshObservesWholeStates(t *testing.T) {
	ctx := context.Background()
	fx := newServiceFixture()
	fx.withoutCustomer("user-x")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = fx.service.Refresh(ctx, "user-x")
		}()
		go func() {
			defer wg.Done()
			st := fx.service.Current(ctx, "user-x")
			if !st.IsLoading() {
				assert.Equal(t, "user-x", st.UserID)
				assert.Equal(t, domain.TierFree, st.Tier)
			}
		}()
	}
	wg.Wait()
}

func TestService_RefreshRequiresUser(t *testing.T) {
	fx := newServiceFixture()
	_, err := fx.service.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingUser)
}
