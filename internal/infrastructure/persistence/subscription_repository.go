package persistence

import (
	"context"
	"errors"

	"github.com/friendaudit/backend/internal/domain/shared"
	"github.com/friendaudit/backend/internal/domain/subscription"
	"github.com/friendaudit/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSubscriptionRepository implements subscription.SubscriptionRepository using GORM.
// Each customer has at most one record. A write carrying an older UpdatedAt
// than the stored row is dropped.
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionRepository creates a new GormSubscriptionRepository
func NewGormSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

// FindByCustomerID finds the subscription record of a Stripe customer
func (r *GormSubscriptionRepository) FindByCustomerID(ctx context.Context, customerID string) (*subscription.Subscription, error) {
	var model models.StripeSubscriptionModel
	err := r.db.WithContext(ctx).
		Where("stripe_customer_id = ?", customerID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates the subscription record of a customer. Stale
// writes are ignored without error.
func (r *GormSubscriptionRepository) Save(ctx context.Context, sub *subscription.Subscription) error {
	model := models.StripeSubscriptionModelFromDomain(sub)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "stripe_customer_id"}},
			UpdateAll: true,
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "stripe_subscriptions.updated_at <= excluded.updated_at"},
			}},
		}).
		Create(model).Error
}

var _ subscription.SubscriptionRepository = (*GormSubscriptionRepository)(nil)
