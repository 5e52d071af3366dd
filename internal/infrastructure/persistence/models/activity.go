package models

import (
	"encoding/json"
	"time"

	"github.com/friendaudit/backend/internal/domain/activity"
	"github.com/google/uuid"
)

// AuditResultModel is one row of the append-only activity log
type AuditResultModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID     string    `gorm:"type:varchar(128);not null;index:idx_audit_results_user_created,priority:1"`
	FriendName string    `gorm:"type:varchar(200);not null"`
	AuditType  string    `gorm:"type:varchar(32);not null"`
	Results    string    `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time `gorm:"not null;index:idx_audit_results_user_created,priority:2"`
}

// TableName returns the table name for GORM
func (AuditResultModel) TableName() string {
	return "audit_results"
}

// ToDomain converts the persistence model to a domain ActivityRecord
func (m *AuditResultModel) ToDomain() *activity.ActivityRecord {
	return activity.RestoreActivityRecord(
		m.ID,
		m.UserID,
		m.FriendName,
		activity.AuditType(m.AuditType),
		json.RawMessage(m.Results),
		m.CreatedAt,
	)
}

// AuditResultModelFromDomain creates a persistence model from a domain ActivityRecord
func AuditResultModelFromDomain(r *activity.ActivityRecord) *AuditResultModel {
	return &AuditResultModel{
		ID:         r.ID,
		UserID:     r.UserID,
		FriendName: r.FriendName,
		AuditType:  r.AuditType.String(),
		Results:    string(r.Results),
		CreatedAt:  r.CreatedAt.UTC(),
	}
}

// JournalEntryModel is one free-form journal note
type JournalEntryModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID     string    `gorm:"type:varchar(128);not null;index"`
	FriendName string    `gorm:"type:varchar(200);not null"`
	EntryType  string    `gorm:"type:varchar(32);not null"`
	Content    string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (JournalEntryModel) TableName() string {
	return "journal_entries"
}

// ToDomain converts the persistence model to a domain JournalEntry
func (m *JournalEntryModel) ToDomain() *activity.JournalEntry {
	return activity.RestoreJournalEntry(
		m.ID,
		m.UserID,
		m.FriendName,
		activity.EntryType(m.EntryType),
		m.Content,
		m.CreatedAt,
	)
}

// JournalEntryModelFromDomain creates a persistence model from a domain JournalEntry
func JournalEntryModelFromDomain(e *activity.JournalEntry) *JournalEntryModel {
	return &JournalEntryModel{
		ID:         e.ID,
		UserID:     e.UserID,
		FriendName: e.FriendName,
		EntryType:  string(e.EntryType),
		Content:    e.Content,
		CreatedAt:  e.CreatedAt.UTC(),
	}
}
