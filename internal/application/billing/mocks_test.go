package billing

import (
	"context"

	appentitlement "github.com/friendaudit/backend/internal/application/entitlement"
	"github.com/friendaudit/backend/internal/domain/subscription"
	"github.com/stretchr/testify/mock"
)

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByUserID(ctx context.Context, userID string) (*subscription.Customer, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByCustomerID(ctx context.Context, customerID string) (*subscription.Customer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *subscription.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) FindByCustomerID(ctx context.Context, customerID string) (*subscription.Subscription, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) Save(ctx context.Context, sub *subscription.Subscription) error {
	return m.Called(ctx, sub).Error(0)
}

type MockBillingGateway struct {
	mock.Mock
}

func (m *MockBillingGateway) CreateCustomer(ctx context.Context, userID, email string) (string, error) {
	args := m.Called(ctx, userID, email)
	return args.String(0), args.Error(1)
}

func (m *MockBillingGateway) CreateCheckoutSession(ctx context.Context, req subscription.CheckoutRequest) (*subscription.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.CheckoutSession), args.Error(1)
}

type MockEntitlementRefresher struct {
	mock.Mock
}

func (m *MockEntitlementRefresher) Refresh(ctx context.Context, userID string) (appentitlement.State, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(appentitlement.State), args.Error(1)
}

func (m *MockEntitlementRefresher) Invalidate(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}
