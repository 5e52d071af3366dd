package activity

import (
	"fmt"

	"github.com/friendaudit/backend/internal/domain/entitlement"
)

// AuditType is the kind of completed audit recorded in the activity log
type AuditType string

const (
	// AuditTypeQuiz is a completed friendship quiz
	AuditTypeQuiz AuditType = "quiz"
	// AuditTypeTextAnalysis is a completed message text analysis
	AuditTypeTextAnalysis AuditType = "text_analysis"
	// AuditTypeComparison is a completed side-by-side friend comparison
	AuditTypeComparison AuditType = "comparison"
)

// String returns the string representation of AuditType
func (t AuditType) String() string {
	return string(t)
}

// IsValid returns true if the audit type is known
func (t AuditType) IsValid() bool {
	switch t {
	case AuditTypeQuiz, AuditTypeTextAnalysis, AuditTypeComparison:
		return true
	default:
		return false
	}
}

// Feature returns the feature key gating this audit type
func (t AuditType) Feature() entitlement.FeatureKey {
	switch t {
	case AuditTypeTextAnalysis:
		return entitlement.FeatureTextAnalysis
	case AuditTypeComparison:
		return entitlement.FeatureCompareFriends
	default:
		return entitlement.FeatureBasicAudit
	}
}

// AllAuditTypes returns all audit types
func AllAuditTypes() []AuditType {
	return []AuditType{AuditTypeQuiz, AuditTypeTextAnalysis, AuditTypeComparison}
}

// ParseAuditType parses a string to AuditType
func ParseAuditType(s string) (AuditType, error) {
	t := AuditType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid audit type: %s", s)
	}
	return t, nil
}

// EntryType is the category of a journal note
type EntryType string

const (
	EntryTypeGood    EntryType = "good"
	EntryTypeRedFlag EntryType = "red-flag"
	EntryTypePattern EntryType = "pattern"
)

// IsValid returns true if the entry type is known
func (t EntryType) IsValid() bool {
	switch t {
	case EntryTypeGood, EntryTypeRedFlag, EntryTypePattern:
		return true
	default:
		return false
	}
}

// ParseEntryType parses a string to EntryType
func ParseEntryType(s string) (EntryType, error) {
	t := EntryType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid entry type: %s", s)
	}
	return t, nil
}
