package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/terangahq/teranga-backend/internal/repositories"
)

// Retention runs the background cleanup schedules: hourly dedup pruning
// and daily archival of idle conversations.
type Retention struct {
	cron          *cron.Cron
	dedup         repositories.DedupRepo
	conversations repositories.ConversationRepo
	idleAfter     time.Duration
}

func NewRetention(dedup repositories.DedupRepo, conversations repositories.ConversationRepo, conversationRetentionDays int) *Retention {
	return &Retention{
		cron:          cron.New(),
		dedup:         dedup,
		conversations: conversations,
		idleAfter:     time.Duration(conversationRetentionDays) * 24 * time.Hour,
	}
}

// Start registers the schedules and starts the cron runner.
func (r *Retention) Start() error {
	if _, err := r.cron.AddFunc("@hourly", r.pruneDedup); err != nil {
		return err
	}
	if _, err := r.cron.AddFunc("@daily", r.archiveConversations); err != nil {
		return err
	}
	r.cron.Start()
	log.Info().Msg("retention scheduler started")
	return nil
}

// Stop stops the cron runner and waits for running jobs to finish.
func (r *Retention) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("retention scheduler stopped")
}

func (r *Retention) pruneDedup() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pruned, err := r.dedup.PruneExpired(ctx, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("dedup prune failed")
		return
	}
	if pruned > 0 {
		log.Info().Int64("pruned", pruned).Msg("expired dedup records removed")
	}
}

func (r *Retention) archiveConversations() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-r.idleAfter)
	archived, err := r.conversations.ArchiveIdle(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("conversation archival failed")
		return
	}
	if archived > 0 {
		log.Info().Int64("archived", archived).Msg("idle conversations archived")
	}
}
