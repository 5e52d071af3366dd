package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ActivityFilter selects activity records for one user
type ActivityFilter struct {
	UserID    string
	Since     *time.Time
	AuditType *AuditType
}

// ForUser creates a filter for userID
func ForUser(userID string) ActivityFilter {
	return ActivityFilter{UserID: userID}
}

// WithSince restricts the filter to records created at or after t
func (f ActivityFilter) WithSince(t time.Time) ActivityFilter {
	f.Since = &t
	return f
}

// WithAuditType restricts the filter to one audit type
func (f ActivityFilter) WithAuditType(t AuditType) ActivityFilter {
	f.AuditType = &t
	return f
}

// ListOptions pages through history, newest first
type ListOptions struct {
	Limit  int
	Offset int
}

// DefaultListOptions returns the default page
func DefaultListOptions() ListOptions {
	return ListOptions{Limit: 50}
}

// ActivityRepository defines the persistence contract for the activity log
type ActivityRepository interface {
	// Append stores one new activity record
	Append(ctx context.Context, record *ActivityRecord) error

	// Count counts the records matching filter
	Count(ctx context.Context, filter ActivityFilter) (int64, error)

	// CountDistinctFriends counts distinct friend names across a user's records
	CountDistinctFriends(ctx context.Context, userID string) (int64, error)

	// FindByID finds a record by ID. Returns shared.ErrNotFound if absent.
	FindByID(ctx context.Context, id uuid.UUID) (*ActivityRecord, error)

	// ListByUser lists a user's records, newest first
	ListByUser(ctx context.Context, userID string, opts ListOptions) ([]*ActivityRecord, error)

	// Delete removes one record
	Delete(ctx context.Context, id uuid.UUID) error
}

// JournalRepository defines the persistence contract for journal notes
type JournalRepository interface {
	// Append stores one new journal entry
	Append(ctx context.Context, entry *JournalEntry) error

	// FindByID finds an entry by ID. Returns shared.ErrNotFound if absent.
	FindByID(ctx context.Context, id uuid.UUID) (*JournalEntry, error)

	// ListByUser lists a user's entries, newest first
	ListByUser(ctx context.Context, userID string, opts ListOptions) ([]*JournalEntry, error)

	// Delete removes one entry
	Delete(ctx context.Context, id uuid.UUID) error
}
