package persistence

import (
	"context"
	"errors"

	"github.com/friendaudit/backend/internal/domain/activity"
	"github.com/friendaudit/backend/internal/domain/shared"
	"github.com/friendaudit/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormJournalRepository implements activity.JournalRepository using GORM
type GormJournalRepository struct {
	db *gorm.DB
}

// NewGormJournalRepository creates a new GormJournalRepository
func NewGormJournalRepository(db *gorm.DB) *GormJournalRepository {
	return &GormJournalRepository{db: db}
}

// Append stores one new journal entry
func (r *GormJournalRepository) Append(ctx context.Context, entry *activity.JournalEntry) error {
	return r.db.WithContext(ctx).Create(models.JournalEntryModelFromDomain(entry)).Error
}

// FindByID finds an entry by ID
func (r *GormJournalRepository) FindByID(ctx context.Context, id uuid.UUID) (*activity.JournalEntry, error) {
	var model models.JournalEntryModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListByUser lists a user's entries, newest first
func (r *GormJournalRepository) ListByUser(ctx context.Context, userID string, opts activity.ListOptions) ([]*activity.JournalEntry, error) {
	var rows []models.JournalEntryModel
	err := paginate(r.db.WithContext(ctx).Where("user_id = ?", userID), opts).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]*activity.JournalEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, nil
}

// Delete removes one entry
func (r *GormJournalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.JournalEntryModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ activity.JournalRepository = (*GormJournalRepository)(nil)
