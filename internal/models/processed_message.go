package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProcessedMessage is the dedup record for one accepted inbound message.
// The composite unique index makes the insert the admission gate: two
// concurrent deliveries of the same provider message id race on the
// constraint and exactly one insert wins.
type ProcessedMessage struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	BusinessID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_processed_message,priority:1" json:"business_id"`
	ProviderMessageID string    `gorm:"type:text;not null;uniqueIndex:ux_processed_message,priority:2" json:"provider_message_id"`
	Provider          string    `gorm:"type:text;not null" json:"provider"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
}

// TableName specifies the table name
func (ProcessedMessage) TableName() string {
	return "processed_messages"
}

// BeforeCreate sets UUID before creating
func (p *ProcessedMessage) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
