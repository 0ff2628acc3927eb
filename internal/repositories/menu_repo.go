package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/terangahq/teranga-backend/internal/models"
)

type MenuRepo interface {
	Create(ctx context.Context, item *models.MenuItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]models.MenuItem, error)
	ListAvailable(ctx context.Context, businessID uuid.UUID) ([]models.MenuItem, error)
	Update(ctx context.Context, item *models.MenuItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type menuRepo struct {
	db *gorm.DB
}

func NewMenuRepo(db *gorm.DB) MenuRepo {
	return &menuRepo{db: db}
}

func (r *menuRepo) Create(ctx context.Context, item *models.MenuItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *menuRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &item, nil
}

func (r *menuRepo) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("category, name").
		Find(&items).Error
	return items, err
}

// ListAvailable returns the items the chatbot may sell. It is read
// fresh on every conversation turn; menu prices are never cached
// across requests because staff may edit them between turns.
func (r *menuRepo) ListAvailable(ctx context.Context, businessID uuid.UUID) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := r.db.WithContext(ctx).
		Where("business_id = ? AND is_available = ?", businessID, true).
		Order("category, name").
		Find(&items).Error
	return items, err
}

func (r *menuRepo) Update(ctx context.Context, item *models.MenuItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *menuRepo) Delete(ctx context.Context, id uuid.UUID) error {
	// Soft delete; orders hold price snapshots so history is unaffected.
	return r.db.WithContext(ctx).Delete(&models.MenuItem{}, "id = ?", id).Error
}
