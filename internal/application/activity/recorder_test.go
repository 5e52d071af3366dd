package activity

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/friendaudit/backend/internal/domain/activity"
	"github.com/friendaudit/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Append(ctx context.Context, record *activity.ActivityRecord) error {
	return m.Called(ctx, record).Error(0)
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
	return m.Called(ctx, id).Error(0)
}

type MockJournalRepository struct {
	mock.Mock
}

func (m *MockJournalRepository) Append(ctx context.Context, entry *activity.JournalEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockJournalRepository) FindByID(ctx context.Context, id uuid.UUID) (*activity.JournalEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*activity.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) ListByUser(ctx context.Context, userID string, opts activity.ListOptions) ([]*activity.JournalEntry, error) {
	args := m.Called(ctx, userID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*activity.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func newTestRecorder() (*Recorder, *MockActivityRepository, *MockJournalRepository) {
	activities := new(MockActivityRepository)
	journal := new(MockJournalRepository)
	r := NewRecorder(activities, journal, zap.NewNop())
	r.clock = func() time.Time { return time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC) }
	return r, activities, journal
}

func TestRecorder_RecordAudit(t *testing.T) {
	ctx := context.Background()

	t.Run("appends record", func(t *testing.T) {
		r, activities, _ := newTestRecorder()
		activities.On("Append", ctx, mock.AnythingOfType("*activity.ActivityRecord")).Return(nil)

		record, err := r.RecordAudit(ctx, RecordAuditInput{
			UserID:     "user-1",
			FriendName: "Sam",
			AuditType:  activity.AuditTypeQuiz,
			Results:    json.RawMessage(`{"score":80}`),
		})

		require.NoError(t, err)
		assert.Equal(t, "user-1", record.UserID)
		assert.Equal(t, time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC), record.CreatedAt)
		activities.AssertExpectations(t)
	})

	t.Run("write failure is surfaced without retry", func(t *testing.T) {
		r, activities, _ := newTestRecorder()
		activities.On("Append", ctx, mock.Anything).Return(errors.New("disk full")).Once()

		record, err := r.RecordAudit(ctx, RecordAuditInput{UserID: "user-1", FriendName: "Sam", AuditType: activity.AuditTypeQuiz})

		assert.Nil(t, record)
		assert.ErrorIs(t, err, ErrPersistFailed)
		assert.ErrorContains(t, err, "disk full")
		activities.AssertNumberOfCalls(t, "Append", 1)
	})

	t.Run("invalid input never reaches persistence", func(t *testing.T) {
		r, activities, _ := newTestRecorder()

		_, err := r.RecordAudit(ctx, RecordAuditInput{UserID: "user-1", FriendName: "Sam", AuditType: "poll"})

		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrPersistFailed)
		activities.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})
}

func TestRecorder_RecordJournalNote(t *testing.T) {
	ctx := context.Background()

	r, _, journal := newTestRecorder()
	journal.On("Append", ctx, mock.Anything).Return(nil).Once()
	journal.On("Append", ctx, mock.Anything).Return(errors.New("connection reset")).Once()

	entry, err := r.RecordJournalNote(ctx, RecordJournalInput{UserID: "user-1", FriendName: "Sam", EntryType: activity.EntryTypeGood, Content: "helped me move"})
	require.NoError(t, err)
	assert.Equal(t, "helped me move", entry.Content)

	_, err = r.RecordJournalNote(ctx, RecordJournalInput{UserID: "user-1", FriendName: "Sam", EntryType: activity.EntryTypeGood, Content: "again"})
	assert.ErrorIs(t, err, ErrPersistFailed)
}

func TestRecorder_DeleteAudit(t *testing.T) {
	ctx := context.Background()
	record := activity.RestoreActivityRecord(uuid.New(), "user-1", "Sam", activity.AuditTypeQuiz, nil, time.Now())

	t.Run("owner deletes", func(t *testing.T) {
		r, activities, _ := newTestRecorder()
		activities.On("FindByID", ctx, record.ID).Return(record, nil)
		activities.On("Delete", ctx, record.ID).Return(nil)

		require.NoError(t, r.DeleteAudit(ctx, "user-1", record.ID))
		activities.AssertExpectations(t)
	})

	t.Run("other users see not found", func(t *testing.T) {
		r, activities, _ := newTestRecorder()
		activities.On("FindByID", ctx, record.ID).Return(record, nil)

		err := r.DeleteAudit(ctx, "user-2", record.ID)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		activities.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("missing record", func(t *testing.T) {
		r, activities, _ := newTestRecorder()
		id := uuid.New()
		activities.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		assert.ErrorIs(t, r.DeleteAudit(ctx, "user-1", id), shared.ErrNotFound)
	})
}

func TestRecorder_DeleteJournalEntry(t *testing.T) {
	ctx := context.Background()
	entry := activity.RestoreJournalEntry(uuid.New(), "user-1", "Sam", activity.EntryTypePattern, "always late", time.Now())

	r, _, journal := newTestRecorder()
	journal.On("FindByID", ctx, entry.ID).Return(entry, nil)
	journal.On("Delete", ctx, entry.ID).Return(nil)

	assert.ErrorIs(t, r.DeleteJournalEntry(ctx, "user-9", entry.ID), shared.ErrNotFound)
	require.NoError(t, r.DeleteJournalEntry(ctx, "user-1", entry.ID))
}

func TestRecorder_History(t *testing.T) {
	ctx := context.Background()
	opts := activity.DefaultListOptions()

	r, activities, journal := newTestRecorder()
	audits := []*activity.ActivityRecord{activity.RestoreActivityRecord(uuid.New(), "user-1", "Sam", activity.AuditTypeQuiz, nil, time.Now())}
	activities.On("ListByUser", ctx, "user-1", opts).Return(audits, nil)
	journal.On("ListByUser", ctx, "user-1", opts).Return([]*activity.JournalEntry{}, nil)

	h, err := r.History(ctx, "user-1", opts)
	require.NoError(t, err)
	assert.Len(t, h.Audits, 1)
	assert.Empty(t, h.Journal)

	r2, activities2, _ := newTestRecorder()
	activities2.On("ListByUser", ctx, "user-1", opts).Return(nil, errors.New("boom"))
	_, err = r2.History(ctx, "user-1", opts)
	assert.ErrorContains(t, err, "failed to list audits")
}

func TestRecorder_Journal(t *testing.T) {
	ctx := context.Background()
	opts := activity.ListOptions{Limit: 10, Offset: 10}

	r, _, journal := newTestRecorder()
	journal.On("ListByUser", ctx, "user-1", opts).Return(nil, errors.New("boom"))

	_, err := r.Journal(ctx, "user-1", opts)
	assert.ErrorContains(t, err, "failed to list journal entries")
	journal.AssertExpectations(t)
}
