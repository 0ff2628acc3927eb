package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/terangahq/teranga-backend/internal/models"
)

type ConversationRepo interface {
	GetOrCreate(ctx context.Context, businessID uuid.UUID, customerPhone, customerName string) (*models.Conversation, error)
	Update(ctx context.Context, conversation *models.Conversation) error
	ArchiveIdle(ctx context.Context, idleSince time.Time) (int64, error)
}

type conversationRepo struct {
	db *gorm.DB
}

func NewConversationRepo(db *gorm.DB) ConversationRepo {
	return &conversationRepo{db: db}
}

// GetOrCreate locates the conversation for a (business, customer) pair,
// creating it on first contact. The insert uses ON CONFLICT DO NOTHING
// on the pair's unique index rather than a read-then-write, so two
// concurrent first messages from the same sender produce one row.
func (r *conversationRepo) GetOrCreate(ctx context.Context, businessID uuid.UUID, customerPhone, customerName string) (*models.Conversation, error) {
	conversation := models.Conversation{
		BusinessID:    businessID,
		CustomerPhone: customerPhone,
		CustomerName:  customerName,
		LastActiveAt:  time.Now().UTC(),
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "business_id"}, {Name: "customer_phone"}},
			DoNothing: true,
		}).
		Create(&conversation).Error
	if err != nil && !isUniqueViolation(err) {
		return nil, err
	}

	// Re-read to get the winning row (ours or the concurrent creator's).
	var existing models.Conversation
	err = r.db.WithContext(ctx).
		Where("business_id = ? AND customer_phone = ?", businessID, customerPhone).
		First(&existing).Error
	if err != nil {
		return nil, translateNotFound(err)
	}

	// A returning customer un-archives their conversation.
	if existing.IsArchived {
		existing.IsArchived = false
	}
	if customerName != "" && existing.CustomerName == "" {
		existing.CustomerName = customerName
	}
	return &existing, nil
}

func (r *conversationRepo) Update(ctx context.Context, conversation *models.Conversation) error {
	conversation.LastActiveAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(conversation).Error
}

// ArchiveIdle flags conversations idle since the given cutoff and clears
// their transcript. Rows are kept so order history joins keep working.
func (r *conversationRepo) ArchiveIdle(ctx context.Context, idleSince time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("last_active_at < ? AND is_archived = ?", idleSince, false).
		Updates(map[string]interface{}{
			"is_archived": true,
			"history":     nil,
		})
	return res.RowsAffected, res.Error
}
