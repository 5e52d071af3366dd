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

// maxListLimit caps a single history page
const maxListLimit = 200

// GormActivityRepository implements activity.ActivityRepository using GORM
type GormActivityRepository struct {
	db *gorm.DB
}

// NewGormActivityRepository creates a new GormActivityRepository
func NewGormActivityRepository(db *gorm.DB) *GormActivityRepository {
	return &GormActivityRepository{db: db}
}

// Append stores one new activity record
func (r *GormActivityRepository) Append(ctx context.Context, record *activity.ActivityRecord) error {
	return r.db.WithContext(ctx).Create(models.AuditResultModelFromDomain(record)).Error
}

// Count counts the records matching filter
func (r *GormActivityRepository) Count(ctx context.Context, filter activity.ActivityFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.AuditResultModel{}), filter).
		Count(&count).Error
	return count, err
}

// CountDistinctFriends counts distinct friend names across a user's records
func (r *GormActivityRepository) CountDistinctFriends(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AuditResultModel{}).
		Where("user_id = ?", userID).
		Distinct("friend_name").
		Count(&count).Error
	return count, err
}

// FindByID finds a record by ID
func (r *GormActivityRepository) FindByID(ctx context.Context, id uuid.UUID) (*activity.ActivityRecord, error) {
	var model models.AuditResultModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListByUser lists a user's records, newest first
func (r *GormActivityRepository) ListByUser(ctx context.Context, userID string, opts activity.ListOptions) ([]*activity.ActivityRecord, error) {
	var rows []models.AuditResultModel
	err := paginate(r.db.WithContext(ctx).Where("user_id = ?", userID), opts).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	records := make([]*activity.ActivityRecord, len(rows))
	for i := range rows {
		records[i] = rows[i].ToDomain()
	}
	return records, nil
}

// Delete removes one record
func (r *GormActivityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.AuditResultModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormActivityRepository) applyFilter(query *gorm.DB, filter activity.ActivityFilter) *gorm.DB {
	query = query.Where("user_id = ?", filter.UserID)
	if filter.Since != nil {
		query = query.Where("created_at >= ?", filter.Since.UTC())
	}
	if filter.AuditType != nil {
		query = query.Where("audit_type = ?", filter.AuditType.String())
	}
	return query
}

// paginate applies limit and offset, clamping the limit to maxListLimit
func paginate(query *gorm.DB, opts activity.ListOptions) *gorm.DB {
	limit := opts.Limit
	if limit <= 0 {
		limit = activity.DefaultListOptions().Limit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	query = query.Limit(limit)
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}
	return query
}

var _ activity.ActivityRepository = (*GormActivityRepository)(nil)
