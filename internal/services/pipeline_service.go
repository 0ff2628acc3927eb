package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/terangahq/teranga-backend/internal/core/ai"
	"github.com/terangahq/teranga-backend/internal/core/delivery"
	"github.com/terangahq/teranga-backend/internal/core/provider"
	"github.com/terangahq/teranga-backend/internal/models"
	"github.com/terangahq/teranga-backend/internal/repositories"
)

// State is the pipeline position a message reached.
type State string

const (
	StateReceived     State = "RECEIVED"
	StateAdapted      State = "ADAPTED"
	StateResolved     State = "RESOLVED"
	StateDedupChecked State = "DEDUP_CHECKED"
	StateAIProcessed  State = "AI_PROCESSED"
	StateDelivered    State = "DELIVERED"
	StateDone         State = "DONE"
	StateFailed       State = "FAILED"
)

// Outcome records how far a message got and why it stopped.
type Outcome struct {
	State     State
	Reason    string
	Duplicate bool
	Reply     string
	OrderID   string
}

// ConversationEngine is the AI engine surface the pipeline needs;
// tests substitute a scripted implementation.
type ConversationEngine interface {
	Run(ctx context.Context, business *models.Business, conversation *models.Conversation, text string) (*ai.Reply, error)
}

// Pipeline wires adapter, resolver, dedup guard, AI engine and
// delivery into the per-message flow.
//
// Ordering within one sender's conversation is best-effort: a fast
// second message can finish before a slow first one. Serializing per
// sender would need a per-sender queue and is deliberately not done.
type Pipeline struct {
	resolver *Resolver
	dedup    repositories.DedupRepo
	engine   ConversationEngine
	convos   repositories.ConversationRepo

	meta *delivery.MetaSender
	lam  *delivery.LAMSender

	turnTimeout time.Duration
}

func NewPipeline(
	resolver *Resolver,
	dedup repositories.DedupRepo,
	engine ConversationEngine,
	convos repositories.ConversationRepo,
	meta *delivery.MetaSender,
	lam *delivery.LAMSender,
) *Pipeline {
	return &Pipeline{
		resolver:    resolver,
		dedup:       dedup,
		engine:      engine,
		convos:      convos,
		meta:        meta,
		lam:         lam,
		turnTimeout: 90 * time.Second,
	}
}

// Adapt is the synchronous boundary stage: it classifies the payload
// before the webhook is acknowledged, so the handler can 4xx malformed
// input while everything downstream stays asynchronous.
func (p *Pipeline) Adapt(raw []byte, kind provider.Kind) (*provider.InboundMessage, error) {
	return provider.Normalize(raw, kind)
}

// Process runs the rest of the pipeline for one adapted message.
// Every failure is converted into an Outcome; nothing propagates to
// the webhook response.
func (p *Pipeline) Process(in *provider.InboundMessage, businessID string) *Outcome {
	ctx, cancel := context.WithTimeout(context.Background(), p.turnTimeout)
	defer cancel()

	logger := log.With().
		Str("provider", string(in.Provider)).
		Str("message_id", in.MessageID).
		Str("sender", in.From).
		Logger()

	// RESOLVED
	business, conversation, err := p.resolver.Resolve(ctx, businessID, in)
	if err != nil {
		if errors.Is(err, ErrBusinessNotFound) || errors.Is(err, ErrBusinessInactive) {
			logger.Warn().Err(err).Msg("message dropped at resolve stage")
			return &Outcome{State: StateDone, Reason: err.Error()}
		}
		logger.Error().Err(err).Msg("resolve stage failed")
		return &Outcome{State: StateFailed, Reason: "resolve: " + err.Error()}
	}
	logger = logger.With().Str("business_id", business.ID.String()).Logger()

	// DEDUP_CHECKED: admission is the insert itself.
	if err := p.dedup.MarkProcessed(ctx, business.ID, string(in.Provider), in.MessageID); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			logger.Info().Msg("duplicate delivery, skipping")
			return &Outcome{State: StateDone, Duplicate: true}
		}
		logger.Error().Err(err).Msg("dedup stage failed")
		return &Outcome{State: StateFailed, Reason: "dedup: " + err.Error()}
	}

	// AI_PROCESSED: the engine degrades model and menu-read failures
	// to a fallback reply internally; an error here means the turn
	// produced nothing deliverable.
	reply, err := p.engine.Run(ctx, business, conversation, in.Text)
	if err != nil {
		logger.Error().Err(err).Msg("AI stage failed")
		return &Outcome{State: StateFailed, Reason: "ai: " + err.Error()}
	}

	// Record the turn before delivery; a delivery failure should not
	// lose the transcript.
	if err := conversation.AppendTurns(2*ai.MaxHistoryTurns,
		models.ChatTurn{Role: ai.RoleUser, Content: in.Text, At: in.ReceivedAt},
		models.ChatTurn{Role: ai.RoleAssistant, Content: reply.Text, At: time.Now().UTC()},
	); err != nil {
		logger.Warn().Err(err).Msg("failed to encode conversation history")
	} else if err := p.convos.Update(ctx, conversation); err != nil {
		logger.Warn().Err(err).Msg("failed to persist conversation history")
	}

	// DELIVERED
	sender, creds := delivery.ForBusiness(business, p.meta, p.lam)
	res, err := sender.Send(ctx, creds, in.From, reply.Text)
	outcome := &Outcome{State: StateDone, Reply: reply.Text}
	if reply.Order != nil {
		outcome.OrderID = reply.Order.ID.String()
	}
	if err != nil {
		// Retries are exhausted inside the sender; the user gets
		// silence rather than a partial error.
		logger.Error().Err(err).Str("delivery", sender.Name()).Msg("delivery failed")
		outcome.State = StateFailed
		outcome.Reason = "delivery: " + err.Error()
		return outcome
	}

	logger.Info().
		Str("delivery", sender.Name()).
		Str("delivery_message_id", res.MessageID).
		Bool("degraded", reply.Degraded).
		Msg("reply delivered")
	return outcome
}
