package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Business represents a restaurant tenant: its messaging identity,
// provider credentials, and chatbot configuration.
type Business struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`

	// Identity
	Name        string `gorm:"type:text;not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	Cuisine     string `gorm:"type:text" json:"cuisine,omitempty"`

	// Messaging identity + provider credentials
	WhatsAppNumber     string `gorm:"column:whatsapp_number;type:text;uniqueIndex;not null" json:"whatsapp_number"`
	AccessToken        string `gorm:"type:text" json:"-"`
	PhoneNumberID      string `gorm:"type:text" json:"phone_number_id,omitempty"`
	AppSecret          string `gorm:"type:text" json:"-"`
	WebhookVerifyToken string `gorm:"type:text" json:"-"`

	// Lifecycle flags
	IsActive   bool `gorm:"type:boolean;default:true" json:"is_active"`
	IsVerified bool `gorm:"type:boolean;default:false" json:"is_verified"`

	// Chatbot configuration
	WelcomeMessage      string `gorm:"type:text" json:"welcome_message,omitempty"`
	BusinessHours       string `gorm:"type:text" json:"business_hours,omitempty"`
	SpecialInstructions string `gorm:"type:text" json:"special_instructions,omitempty"`
	DeliveryInfo        string `gorm:"type:text" json:"delivery_info,omitempty"`
	OrderingEnabled     bool   `gorm:"type:boolean;default:true" json:"ordering_enabled"`

	// Timestamps
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name
func (Business) TableName() string {
	return "businesses"
}

// BeforeCreate sets UUID before creating
func (b *Business) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// HasMetaCredentials reports whether the business is wired to the Meta
// Cloud API. Businesses without them deliver through the LAM aggregator.
func (b *Business) HasMetaCredentials() bool {
	return b.PhoneNumberID != "" && b.AccessToken != ""
}

// UpdateBusinessRequest represents a settings update from the admin side.
type UpdateBusinessRequest struct {
	Name                *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description         *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Cuisine             *string `json:"cuisine,omitempty" validate:"omitempty,max=100"`
	WelcomeMessage      *string `json:"welcome_message,omitempty"`
	BusinessHours       *string `json:"business_hours,omitempty"`
	SpecialInstructions *string `json:"special_instructions,omitempty"`
	DeliveryInfo        *string `json:"delivery_info,omitempty"`
	OrderingEnabled     *bool   `json:"ordering_enabled,omitempty"`
	IsActive            *bool   `json:"is_active,omitempty"`
}
