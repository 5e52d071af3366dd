package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/friendaudit/backend/internal/domain/activity"
	"github.com/friendaudit/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrPersistFailed is returned when an activity or note could not be stored.
// Nothing is retried; the caller decides what to tell the user.
var ErrPersistFailed = errors.New("failed to persist activity")

// RecordAuditInput contains input for recording a completed audit
type RecordAuditInput struct {
	UserID     string
	FriendName string
	AuditType  activity.AuditType
	Results    json.RawMessage
}

// RecordJournalInput contains input for recording a journal note
type RecordJournalInput struct {
	UserID     string
	FriendName string
	EntryType  activity.EntryType
	Content    string
}

// History is a user's audit results and journal entries, newest first
type History struct {
	Audits  []*activity.ActivityRecord
	Journal []*activity.JournalEntry
}

// Recorder is the write path of the activity log
type Recorder struct {
	activities activity.ActivityRepository
	journal    activity.JournalRepository
	logger     *zap.Logger
	clock      func() time.Time
}

// NewRecorder creates a new Recorder
func NewRecorder(activities activity.ActivityRepository, journal activity.JournalRepository, logger *zap.Logger) *Recorder {
	return &Recorder{
		activities: activities,
		journal:    journal,
		logger:     logger,
		clock:      time.Now,
	}
}

// RecordAudit appends one activity record for a completed audit
func (r *Recorder) RecordAudit(ctx context.Context, input RecordAuditInput) (*activity.ActivityRecord, error) {
	record, err := activity.NewActivityRecord(input.UserID, input.FriendName, input.AuditType, input.Results, r.clock())
	if err != nil {
		return nil, err
	}

	if err := r.activities.Append(ctx, record); err != nil {
		r.logger.Error("Failed to append activity record",
			zap.String("user_id", input.UserID),
			zap.String("audit_type", input.AuditType.String()),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}

	r.logger.Info("Activity recorded",
		zap.String("user_id", record.UserID),
		zap.String("record_id", record.ID.String()),
		zap.String("audit_type", record.AuditType.String()))

	return record, nil
}

// RecordJournalNote appends one journal entry
func (r *Recorder) RecordJournalNote(ctx context.Context, input RecordJournalInput) (*activity.JournalEntry, error) {
	entry, err := activity.NewJournalEntry(input.UserID, input.FriendName, input.EntryType, input.Content, r.clock())
	if err != nil {
		return nil, err
	}

	if err := r.journal.Append(ctx, entry); err != nil {
		r.logger.Error("Failed to append journal entry",
			zap.String("user_id", input.UserID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}

	return entry, nil
}

// History lists the user's audits and journal entries
func (r *Recorder) History(ctx context.Context, userID string, opts activity.ListOptions) (*History, error) {
	audits, err := r.Audits(ctx, userID, opts)
	if err != nil {
		return nil, err
	}
	journal, err := r.Journal(ctx, userID, opts)
	if err != nil {
		return nil, err
	}
	return &History{Audits: audits, Journal: journal}, nil
}

// Audits lists one page of the user's audit results, newest first
func (r *Recorder) Audits(ctx context.Context, userID string, opts activity.ListOptions) ([]*activity.ActivityRecord, error) {
	audits, err := r.activities.ListByUser(ctx, userID, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list audits: %w", err)
	}
	return audits, nil
}

// Journal lists one page of the user's journal entries, newest first
func (r *Recorder) Journal(ctx context.Context, userID string, opts activity.ListOptions) ([]*activity.JournalEntry, error) {
	entries, err := r.journal.ListByUser(ctx, userID, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	return entries, nil
}

// DeleteAudit removes one of the user's audit results.
// Records owned by someone else are reported as not found.
func (r *Recorder) DeleteAudit(ctx context.Context, userID string, id uuid.UUID) error {
	record, err := r.activities.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !record.IsOwnedBy(userID) {
		return shared.ErrNotFound
	}
	if err := r.activities.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete audit: %w", err)
	}
	r.logger.Info("Audit deleted",
		zap.String("user_id", userID),
		zap.String("record_id", id.String()))
	return nil
}

// DeleteJournalEntry removes one of the user's journal entries
func (r *Recorder) DeleteJournalEntry(ctx context.Context, userID string, id uuid.UUID) error {
	entry, err := r.journal.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !entry.IsOwnedBy(userID) {
		return shared.ErrNotFound
	}
	if err := r.journal.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}
	return nil
}
