package entitlement

import (
	"context"
	"sync"

	"github.com/friendaudit/backend/internal/domain/activity"
	"github.com/friendaudit/backend/internal/domain/shared"
	"github.com/friendaudit/backend/internal/domain/subscription"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCustomerRepository is a mock implementation of subscription.CustomerRepository
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
	args := m.Called(ctx, customer)
	return args.Error(0)
}

// MockSubscriptionRepository is a mock implementation of subscription.SubscriptionRepository
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
	args := m.Called(ctx, sub)
	return args.Error(0)
}

// MockActivityRepository is a mock implementation of activity.ActivityRepository
type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Append(ctx context.Context, record *activity.ActivityRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockActivityRepository) Count(ctx context.Context, filter activity.ActivityFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockActivityRepository) CountDistinctFriends(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockActivityRepository) FindByID(ctx context.Context, id uuid.UUID) (*activity.ActivityRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*activity.ActivityRecord), args.Error(1)
}

func (m *MockActivityRepository) ListByUser(ctx context.Context, userID string, opts activity.ListOptions) ([]*activity.ActivityRecord, error) {
	args := m.Called(ctx, userID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*activity.ActivityRecord), args.Error(1)
}

func (m *MockActivityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// memoryActivityLog is an ActivityRepository that filters an in-memory slice
type memoryActivityLog struct {
	mu      sync.Mutex
	records []*activity.ActivityRecord
}

func (l *memoryActivityLog) Append(_ context.Context, record *activity.ActivityRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, record)
	return nil
}

func (l *memoryActivityLog) Count(_ context.Context, filter activity.ActivityFilter) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var n int64
	for _, r := range l.records {
		if r.UserID != filter.UserID {
			continue
		}
		if filter.Since != nil && r.CreatedAt.Before(*filter.Since) {
			continue
		}
		if filter.AuditType != nil && r.AuditType != *filter.AuditType {
			continue
		}
		n++
	}
	return n, nil
}

func (l *memoryActivityLog) CountDistinctFriends(_ context.Context, userID string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	seen := map[string]struct{}{}
	for _, r := range l.records {
		if r.UserID == userID {
			seen[r.FriendName] = struct{}{}
		}
	}
	return int64(len(seen)), nil
}

func (l *memoryActivityLog) FindByID(_ context.Context, id uuid.UUID) (*activity.ActivityRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range l.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (l *memoryActivityLog) ListByUser(_ context.Context, userID string, _ activity.ListOptions) ([]*activity.ActivityRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*activity.ActivityRecord
	for i := len(l.records) - 1; i >= 0; i-- {
		if l.records[i].UserID == userID {
			out = append(out, l.records[i])
		}
	}
	return out, nil
}

func (l *memoryActivityLog) Delete(_ context.Context, id uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, r := range l.records {
		if r.ID == id {
			l.records = append(l.records[:i], l.records[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

// mapStore is a StateStore backed by a map
type mapStore struct {
	mu     sync.Mutex
	states map[string]State
	putErr error
}

func newMapStore() *mapStore {
	return &mapStore{states: map[string]State{}}
}

func (s *mapStore) Get(_ context.Context, userID string) (State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[userID]
	return st, ok, nil
}

func (s *mapStore) Put(_ context.Context, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.states[state.UserID] = state
	return nil
}

func (s *mapStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, userID)
	return nil
}
