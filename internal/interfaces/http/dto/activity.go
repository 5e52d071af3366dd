package dto

import (
	"encoding/json"
	"time"

	"github.com/friendaudit/backend/internal/domain/activity"
)

// RecordAuditRequest is the body of POST /audits
type RecordAuditRequest struct {
	FriendName string          `json:"friend_name" binding:"required,max=200"`
	AuditType  string          `json:"audit_type" binding:"required,oneof=quiz text_analysis comparison"`
	Results    json.RawMessage `json:"results"`
}

// RecordJournalRequest is the body of POST /journal
type RecordJournalRequest struct {
	FriendName string `json:"friend_name" binding:"required,max=200"`
	EntryType  string `json:"entry_type" binding:"required,oneof=good red-flag pattern"`
	Content    string `json:"content" binding:"required,max=10000"`
}

// ListQuery is the offset pagination of history listings
type ListQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// ToListOptions converts the query to repository options
func (q ListQuery) ToListOptions() activity.ListOptions {
	opts := activity.DefaultListOptions()
	if q.Limit > 0 {
		opts.Limit = q.Limit
	}
	opts.Offset = q.Offset
	return opts
}

// IDRequest represents a request with an ID path parameter
type IDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// AuditResponse is one stored audit result
type AuditResponse struct {
	ID         string          `json:"id"`
	FriendName string          `json:"friend_name"`
	AuditType  string          `json:"audit_type"`
	Results    json.RawMessage `json:"results"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewAuditResponse converts a domain record
func NewAuditResponse(r *activity.ActivityRecord) AuditResponse {
	return AuditResponse{
		ID:         r.ID.String(),
		FriendName: r.FriendName,
		AuditType:  r.AuditType.String(),
		Results:    r.Results,
		CreatedAt:  r.CreatedAt,
	}
}

// NewAuditResponses converts a page of domain records
func NewAuditResponses(records []*activity.ActivityRecord) []AuditResponse {
	out := make([]AuditResponse, len(records))
	for i, r := range records {
		out[i] = NewAuditResponse(r)
	}
	return out
}

// JournalEntryResponse is one stored journal note
type JournalEntryResponse struct {
	ID         string    `json:"id"`
	FriendName string    `json:"friend_name"`
	EntryType  string    `json:"entry_type"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewJournalEntryResponse converts a domain entry
func NewJournalEntryResponse(e *activity.JournalEntry) JournalEntryResponse {
	return JournalEntryResponse{
		ID:         e.ID.String(),
		FriendName: e.FriendName,
		EntryType:  string(e.EntryType),
		Content:    e.Content,
		CreatedAt:  e.CreatedAt,
	}
}

// NewJournalEntryResponses converts a page of domain entries
func NewJournalEntryResponses(entries []*activity.JournalEntry) []JournalEntryResponse {
	out := make([]JournalEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = NewJournalEntryResponse(e)
	}
	return out
}
