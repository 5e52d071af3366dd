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

// GormCustomerRepository implements subscription.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByUserID finds the customer mapping of an application user
func (r *GormCustomerRepository) FindByUserID(ctx context.Context, userID string) (*subscription.Customer, error) {
	return r.findOne(ctx, "user_id = ?", userID)
}

// FindByCustomerID finds the mapping for a Stripe customer
func (r *GormCustomerRepository) FindByCustomerID(ctx context.Context, customerID string) (*subscription.Customer, error) {
	return r.findOne(ctx, "stripe_customer_id = ?", customerID)
}

func (r *GormCustomerRepository) findOne(ctx context.Context, query string, arg string) (*subscription.Customer, error) {
	var model models.StripeCustomerModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a customer mapping keyed by user
func (r *GormCustomerRepository) Save(ctx context.Context, customer *subscription.Customer) error {
	model := models.StripeCustomerModelFromDomain(customer)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"stripe_customer_id", "updated_at"}),
		}).
		Create(model).Error
}

// Ensure GormCustomerRepository implements CustomerRepository
var _ subscription.CustomerRepository = (*GormCustomerRepository)(nil)
