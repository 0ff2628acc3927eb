package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OrderLine is a single item in an order. Unit price is a snapshot of
// the menu price at ordering time, so later menu edits never rewrite
// order history.
type OrderLine struct {
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	SubtotalCents  int64  `json:"subtotal_cents"`
}

// Order represents a customer order placed through the chatbot.
type Order struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	BusinessID uuid.UUID `gorm:"type:uuid;not null;index" json:"business_id"`

	// Customer
	CustomerPhone string `gorm:"type:text;not null" json:"customer_phone"`
	CustomerName  string `gorm:"type:text" json:"customer_name"`

	// Order details
	Items      datatypes.JSON `gorm:"type:jsonb;not null" json:"items"`
	TotalCents int64          `gorm:"type:bigint;not null" json:"total_cents"`
	Notes      string         `gorm:"type:text" json:"notes,omitempty"`

	Status string `gorm:"type:text;default:'pending'" json:"status"`

	// Timestamps
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (Order) TableName() string {
	return "orders"
}

// BeforeCreate sets UUID before creating
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// Lines decodes the stored order lines.
func (o *Order) Lines() ([]OrderLine, error) {
	var lines []OrderLine
	if err := json.Unmarshal(o.Items, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// SetLines stores the order lines and recomputes the total from them.
// The total always derives from the lines, never from caller input.
func (o *Order) SetLines(lines []OrderLine) error {
	var total int64
	for i := range lines {
		lines[i].SubtotalCents = lines[i].UnitPriceCents * int64(lines[i].Quantity)
		total += lines[i].SubtotalCents
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	o.Items = datatypes.JSON(raw)
	o.TotalCents = total
	return nil
}

// Order status constants
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// UpdateOrderRequest represents a staff-side status/notes update.
// Orders are otherwise immutable once created.
type UpdateOrderRequest struct {
	Status *string `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed completed cancelled"`
	Notes  *string `json:"notes,omitempty"`
}
