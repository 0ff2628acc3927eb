package ai

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/terangahq/teranga-backend/internal/models"
	"github.com/terangahq/teranga-backend/internal/repositories"
)

// maxToolRounds bounds the tool-call loop so a confused model cannot
// spin forever; after the cap the model is forced to answer from the
// tool outputs it already has.
const maxToolRounds = 5

// MaxHistoryTurns caps how much transcript is replayed into the prompt.
const MaxHistoryTurns = 20

// Reply is the outcome of one conversation turn.
type Reply struct {
	Text     string
	Order    *models.Order // non-nil when place_order succeeded
	Degraded bool          // true when Text is the static fallback
}

// Engine runs one turn of tool-calling conversation.
type Engine struct {
	model      ToolModel
	menuRepo   repositories.MenuRepo
	orderRepo  repositories.OrderRepo
	llmTimeout time.Duration
}

func NewEngine(model ToolModel, menuRepo repositories.MenuRepo, orderRepo repositories.OrderRepo, llmTimeout time.Duration) *Engine {
	if llmTimeout <= 0 {
		llmTimeout = 25 * time.Second
	}
	return &Engine{
		model:      model,
		menuRepo:   menuRepo,
		orderRepo:  orderRepo,
		llmTimeout: llmTimeout,
	}
}

// Run produces the reply for one inbound message. It never returns a
// model or menu-read error to the caller: those turns degrade to a
// static fallback reply so the pipeline can still deliver something.
func (e *Engine) Run(ctx context.Context, business *models.Business, conversation *models.Conversation, text string) (*Reply, error) {
	tag := DetectLanguage(text)

	menu, err := e.menuRepo.ListAvailable(ctx, business.ID)
	if err != nil {
		log.Error().Err(err).
			Str("business_id", business.ID.String()).
			Msg("menu read failed, degrading to fallback reply")
		return &Reply{Text: fallbackReply(tag), Degraded: true}, nil
	}

	toolset := NewToolset(business, menu, e.orderRepo, conversation.CustomerPhone, conversation.CustomerName)
	system := BuildSystemPrompt(business, menu, tag)

	messages := make([]ChatMessage, 0, MaxHistoryTurns+1)
	for _, turn := range conversation.Turns() {
		messages = append(messages, ChatMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, ChatMessage{Role: RoleUser, Content: text})

	for round := 0; ; round++ {
		req := ProposeRequest{
			System:     system,
			Messages:   messages,
			Tools:      toolset.Specs(),
			ForceFinal: round >= maxToolRounds,
		}

		proposal, err := e.propose(ctx, req)
		if err != nil {
			log.Error().Err(err).
				Str("business_id", business.ID.String()).
				Str("model", e.model.Name()).
				Msg("LLM call failed after retry, degrading to fallback reply")
			return &Reply{
				Text:     fallbackReply(tag),
				Order:    toolset.PlacedOrder(),
				Degraded: true,
			}, nil
		}

		if len(proposal.ToolCalls) == 0 || req.ForceFinal {
			reply := &Reply{Text: proposal.FinalText, Order: toolset.PlacedOrder()}
			if reply.Text == "" {
				// Forced final round with no text: degrade rather than
				// deliver an empty message.
				reply.Text = fallbackReply(tag)
				reply.Degraded = true
			}
			return reply, nil
		}

		// Execute every requested call synchronously and feed the
		// results back as tool messages for the next round.
		messages = append(messages, ChatMessage{Role: RoleAssistant, ToolCalls: proposal.ToolCalls})
		for _, call := range proposal.ToolCalls {
			result := toolset.Execute(ctx, call)
			log.Info().
				Str("business_id", business.ID.String()).
				Str("tool", call.Name).
				Int("round", round).
				Msg("tool call executed")
			messages = append(messages, ChatMessage{
				Role:       RoleTool,
				ToolCallID: call.ID,
				Content:    result,
			})
		}
	}
}

// propose performs one model round-trip with its own timeout, retrying
// once after a short backoff on failure.
func (e *Engine) propose(ctx context.Context, req ProposeRequest) (*Proposal, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.llmTimeout)
	proposal, err := e.model.Propose(callCtx, req)
	cancel()
	if err == nil {
		return proposal, nil
	}

	log.Warn().Err(err).Str("model", e.model.Name()).Msg("LLM call failed, retrying once")
	select {
	case <-time.After(500 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	callCtx, cancel = context.WithTimeout(ctx, e.llmTimeout)
	defer cancel()
	return e.model.Propose(callCtx, req)
}
