package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/terangahq/teranga-backend/internal/models"
)

type BusinessRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Business, error)
	GetByWhatsAppNumber(ctx context.Context, number string) (*models.Business, error)
	Update(ctx context.Context, business *models.Business) error
}

type businessRepo struct {
	db *gorm.DB
}

func NewBusinessRepo(db *gorm.DB) BusinessRepo {
	return &businessRepo{db: db}
}

func (r *businessRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	var business models.Business
	err := r.db.WithContext(ctx).First(&business, "id = ?", id).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &business, nil
}

func (r *businessRepo) GetByWhatsAppNumber(ctx context.Context, number string) (*models.Business, error) {
	var business models.Business
	err := r.db.WithContext(ctx).Where("whatsapp_number = ?", number).First(&business).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &business, nil
}

func (r *businessRepo) Update(ctx context.Context, business *models.Business) error {
	return r.db.WithContext(ctx).Save(business).Error
}
