package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/terangahq/teranga-backend/internal/models"
)

type OrderRepo interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID, limit int) ([]models.Order, error)
	Update(ctx context.Context, order *models.Order) error
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepo {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &order, nil
}

func (r *orderRepo) ListByBusiness(ctx context.Context, businessID uuid.UUID, limit int) ([]models.Order, error) {
	if limit < 1 {
		limit = 50
	}
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) Update(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}
