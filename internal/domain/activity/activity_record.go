package activity

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/friendaudit/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// maxFriendNameLength bounds the friend identifier stored with a record
const maxFriendNameLength = 200

// ActivityRecord is one completed use of a metered feature.
// Records are append-only: they are never mutated and only removed by the owner.
type ActivityRecord struct {
	shared.Owned
	FriendName string
	AuditType  AuditType
	Results    json.RawMessage
}

// NewActivityRecord creates a new activity record stamped at now
func NewActivityRecord(userID, friendName string, auditType AuditType, results json.RawMessage, now time.Time) (*ActivityRecord, error) {
	owned, err := shared.NewOwned(userID, now)
	if err != nil {
		return nil, err
	}
	friendName, err = normalizeFriendName(friendName)
	if err != nil {
		return nil, err
	}
	if !auditType.IsValid() {
		return nil, shared.NewDomainError("INVALID_AUDIT_TYPE", "Invalid audit type")
	}
	if len(results) == 0 {
		results = json.RawMessage("{}")
	}
	if !json.Valid(results) {
		return nil, shared.NewDomainError("INVALID_RESULTS", "Results must be valid JSON")
	}

	return &ActivityRecord{
		Owned:      owned,
		FriendName: friendName,
		AuditType:  auditType,
		Results:    results,
	}, nil
}

// RestoreActivityRecord rebuilds a persisted record without validation
func RestoreActivityRecord(id uuid.UUID, userID, friendName string, auditType AuditType, results json.RawMessage, createdAt time.Time) *ActivityRecord {
	return &ActivityRecord{
		Owned:      shared.Owned{ID: id, UserID: userID, CreatedAt: createdAt},
		FriendName: friendName,
		AuditType:  auditType,
		Results:    results,
	}
}

// normalizeFriendName trims the friend identifier and bounds its length.
func normalizeFriendName(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", shared.NewDomainError("INVALID_FRIEND", "Friend name cannot be empty")
	case len(name) > maxFriendNameLength:
		return "", shared.NewDomainError("INVALID_FRIEND", "Friend name is too long")
	}
	return name, nil
}
