package shared

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Owned is the identity carried by every append-only record a user owns.
type Owned struct {
	ID        uuid.UUID
	UserID    string
	CreatedAt time.Time
}

// NewOwned issues a fresh identity for userID stamped at now.
func NewOwned(userID string, now time.Time) (Owned, error) {
	if strings.TrimSpace(userID) == "" {
		return Owned{}, NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	return Owned{ID: uuid.New(), UserID: userID, CreatedAt: now}, nil
}

func (o Owned) IsOwnedBy(userID string) bool {
	return o.UserID == userID
}
