package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ChatTurn is one utterance in a conversation transcript.
type ChatTurn struct {
	Role    string    `json:"role"` // "user" or "assistant"
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Conversation represents the durable chat session between a business
// and one end-user phone number. One row per (business, customer) pair.
type Conversation struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	BusinessID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_conversation_party,priority:1" json:"business_id"`
	CustomerPhone string    `gorm:"type:text;not null;uniqueIndex:ux_conversation_party,priority:2" json:"customer_phone"`
	CustomerName  string    `gorm:"type:text" json:"customer_name,omitempty"`

	History      datatypes.JSON `gorm:"type:jsonb" json:"history"`
	LastActiveAt time.Time      `gorm:"index" json:"last_active_at"`
	IsArchived   bool           `gorm:"type:boolean;default:false" json:"is_archived"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationship
	Business Business `gorm:"foreignKey:BusinessID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name
func (Conversation) TableName() string {
	return "conversations"
}

// BeforeCreate sets UUID before creating
func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Turns decodes the stored transcript. A corrupt or empty history
// yields an empty slice rather than an error; the transcript is
// best-effort context, not a source of truth.
func (c *Conversation) Turns() []ChatTurn {
	var turns []ChatTurn
	if len(c.History) == 0 {
		return turns
	}
	if err := json.Unmarshal(c.History, &turns); err != nil {
		return nil
	}
	return turns
}

// AppendTurns adds turns to the transcript, keeping only the most
// recent maxTurns to bound prompt size.
func (c *Conversation) AppendTurns(maxTurns int, turns ...ChatTurn) error {
	all := append(c.Turns(), turns...)
	if maxTurns > 0 && len(all) > maxTurns {
		all = all[len(all)-maxTurns:]
	}
	raw, err := json.Marshal(all)
	if err != nil {
		return err
	}
	c.History = datatypes.JSON(raw)
	return nil
}
