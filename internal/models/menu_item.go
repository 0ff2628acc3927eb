package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MenuItem represents a dish on a business's menu. Prices are stored in
// the minor currency unit (e.g. FCFA) to avoid float arithmetic.
type MenuItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	BusinessID uuid.UUID `gorm:"type:uuid;not null;index" json:"business_id"`

	Name        string `gorm:"type:text;not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	Category    string `gorm:"type:text" json:"category,omitempty"`

	PriceCents  int64 `gorm:"type:bigint;not null;default:0" json:"price_cents"`
	IsAvailable bool  `gorm:"type:boolean;default:true" json:"is_available"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// Relationship
	Business Business `gorm:"foreignKey:BusinessID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name
func (MenuItem) TableName() string {
	return "menu_items"
}

// BeforeCreate sets UUID before creating
func (m *MenuItem) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// CreateMenuItemRequest represents menu item creation request
type CreateMenuItemRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description,omitempty" validate:"max=1000"`
	Category    string `json:"category,omitempty" validate:"max=100"`
	PriceCents  int64  `json:"price_cents" validate:"required,gte=0"`
	IsAvailable *bool  `json:"is_available,omitempty"`
}

// UpdateMenuItemRequest represents menu item update request
type UpdateMenuItemRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Category    *string `json:"category,omitempty" validate:"omitempty,max=100"`
	PriceCents  *int64  `json:"price_cents,omitempty" validate:"omitempty,gte=0"`
	IsAvailable *bool   `json:"is_available,omitempty"`
}
