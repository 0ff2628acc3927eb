package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/terangahq/teranga-backend/internal/models"
)

type DedupRepo interface {
	// MarkProcessed records a provider message id as handled. Returns
	// ErrDuplicate if the id was already recorded for this business.
	MarkProcessed(ctx context.Context, businessID uuid.UUID, provider, messageID string) error
	PruneExpired(ctx context.Context, now time.Time) (int64, error)
}

type dedupRepo struct {
	db        *gorm.DB
	retention time.Duration
}

func NewDedupRepo(db *gorm.DB, retention time.Duration) DedupRepo {
	return &dedupRepo{db: db, retention: retention}
}

// MarkProcessed is the atomic admission gate: the insert itself decides.
// Under concurrent deliveries of the same message id the unique index
// on (business_id, provider_message_id) lets exactly one insert succeed;
// every loser sees ErrDuplicate. There is no read-then-write window.
func (r *dedupRepo) MarkProcessed(ctx context.Context, businessID uuid.UUID, provider, messageID string) error {
	now := time.Now().UTC()
	rec := models.ProcessedMessage{
		BusinessID:        businessID,
		ProviderMessageID: messageID,
		Provider:          provider,
		ExpiresAt:         now.Add(r.retention),
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *dedupRepo) PruneExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&models.ProcessedMessage{})
	return res.RowsAffected, res.Error
}
