package activity

import (
	"strings"
	"time"

	"github.com/friendaudit/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const maxJournalContentLength = 10000

// JournalEntry is a free-form note about a friend
type JournalEntry struct {
	shared.Owned
	FriendName string
	EntryType  EntryType
	Content    string
}

// NewJournalEntry creates a journal entry stamped at now
func NewJournalEntry(userID, friendName string, entryType EntryType, content string, now time.Time) (*JournalEntry, error) {
	owned, err := shared.NewOwned(userID, now)
	if err != nil {
		return nil, err
	}
	if friendName, err = normalizeFriendName(friendName); err != nil {
		return nil, err
	}
	if !entryType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ENTRY_TYPE", "Invalid journal entry type")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, shared.NewDomainError("INVALID_CONTENT", "Journal content cannot be empty")
	}
	if len(content) > maxJournalContentLength {
		return nil, shared.NewDomainError("INVALID_CONTENT", "Journal content is too long")
	}

	return &JournalEntry{
		Owned:      owned,
		FriendName: friendName,
		EntryType:  entryType,
		Content:    content,
	}, nil
}

// RestoreJournalEntry rebuilds a persisted entry without validation
func RestoreJournalEntry(id uuid.UUID, userID, friendName string, entryType EntryType, content string, createdAt time.Time) *JournalEntry {
	return &JournalEntry{
		Owned:      shared.Owned{ID: id, UserID: userID, CreatedAt: createdAt},
		FriendName: friendName,
		EntryType:  entryType,
		Content:    content,
	}
}
