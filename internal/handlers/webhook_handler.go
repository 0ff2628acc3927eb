package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/terangahq/teranga-backend/internal/core/provider"
	"github.com/terangahq/teranga-backend/internal/repositories"
	"github.com/terangahq/teranga-backend/internal/services"
)

// MessagePipeline is the orchestrator surface the webhook needs.
type MessagePipeline interface {
	Adapt(raw []byte, kind provider.Kind) (*provider.InboundMessage, error)
	Process(in *provider.InboundMessage, businessID string) *services.Outcome
}

type WebhookHandler struct {
	pipeline   MessagePipeline
	businesses repositories.BusinessRepo
}

func NewWebhookHandler(pipeline MessagePipeline, businesses repositories.BusinessRepo) *WebhookHandler {
	return &WebhookHandler{pipeline: pipeline, businesses: businesses}
}

// VerifyWebhook godoc
// @Summary Webhook verification handshake
// @Description Answers the provider's subscription handshake when the verify token matches
// @Tags Webhook
// @Param businessID path string true "Business ID"
// @Param hub.mode query string true "Must be subscribe"
// @Param hub.verify_token query string true "Shared verify token"
// @Param hub.challenge query string true "Challenge echoed back on success"
// @Success 200 {string} string "challenge"
// @Failure 403 {object} map[string]interface{}
// @Router /webhook/{businessID} [get]
func (h *WebhookHandler) VerifyWebhook(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	id, err := uuid.Parse(c.Params("businessID"))
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "unknown business"})
	}

	business, err := h.businesses.GetByID(c.Context(), id)
	if err != nil {
		log.Warn().Err(err).Str("business_id", id.String()).Msg("verification for unknown business")
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "unknown business"})
	}

	// Byte-exact comparison, per the subscription contract.
	if mode != "subscribe" || business.WebhookVerifyToken == "" || token != business.WebhookVerifyToken {
		log.Warn().Str("business_id", id.String()).Msg("verification token mismatch")
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "verification failed"})
	}

	return c.SendString(challenge)
}

// ReceiveMetaWebhook godoc
// @Summary Meta Cloud API message webhook
// @Tags Webhook
// @Accept json
// @Produce json
// @Param businessID path string true "Business ID"
// @Param payload body map[string]interface{} true "Webhook payload"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /webhook/{businessID} [post]
func (h *WebhookHandler) ReceiveMetaWebhook(c *fiber.Ctx) error {
	return h.receive(c, provider.KindMeta)
}

// ReceiveLAMWebhook handles deliveries from the LAM aggregator.
func (h *WebhookHandler) ReceiveLAMWebhook(c *fiber.Ctx) error {
	return h.receive(c, provider.KindLAM)
}

// receive acknowledges every structurally parseable delivery with 200
// regardless of downstream outcome, so the provider never re-delivers
// a message we accepted. Only validation failures get a 4xx.
func (h *WebhookHandler) receive(c *fiber.Ctx, kind provider.Kind) error {
	// Params point into the pooled request buffer; the pipeline reads
	// the id after this handler returns, so it needs its own copy.
	businessID := utils.CopyString(c.Params("businessID"))

	in, err := h.pipeline.Adapt(c.Body(), kind)
	if err != nil {
		switch {
		case errors.Is(err, provider.ErrNoMessage), errors.Is(err, provider.ErrEmptyMessage):
			// Status events and empty bodies are acked and dropped.
			return c.JSON(fiber.Map{"status": "ignored"})
		case errors.Is(err, provider.ErrMissingSender):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing sender"})
		default:
			log.Warn().Err(err).Str("provider", string(kind)).Msg("malformed webhook payload")
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
		}
	}

	// Process asynchronously; the ack must not wait on the LLM.
	go h.pipeline.Process(in, businessID)

	return c.JSON(fiber.Map{"status": "received"})
}
