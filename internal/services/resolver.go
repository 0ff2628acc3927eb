package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/terangahq/teranga-backend/internal/core/provider"
	"github.com/terangahq/teranga-backend/internal/models"
	"github.com/terangahq/teranga-backend/internal/repositories"
)

// Resolver maps an inbound message to its business and durable
// conversation state.
type Resolver struct {
	businesses    repositories.BusinessRepo
	conversations repositories.ConversationRepo
}

func NewResolver(businesses repositories.BusinessRepo, conversations repositories.ConversationRepo) *Resolver {
	return &Resolver{businesses: businesses, conversations: conversations}
}

// Resolve looks up the business by the webhook path's business id, or
// by matching the payload's "to" number when the path carries none,
// then locates or creates the sender's conversation.
func (r *Resolver) Resolve(ctx context.Context, businessID string, in *provider.InboundMessage) (*models.Business, *models.Conversation, error) {
	business, err := r.findBusiness(ctx, businessID, in)
	if err != nil {
		return nil, nil, err
	}
	if !business.IsActive {
		return nil, nil, ErrBusinessInactive
	}

	conversation, err := r.conversations.GetOrCreate(ctx, business.ID, in.From, in.ContactName)
	if err != nil {
		return nil, nil, fmt.Errorf("conversation get-or-create: %w", err)
	}
	return business, conversation, nil
}

func (r *Resolver) findBusiness(ctx context.Context, businessID string, in *provider.InboundMessage) (*models.Business, error) {
	if businessID != "" {
		id, err := uuid.Parse(businessID)
		if err != nil {
			return nil, ErrBusinessNotFound
		}
		business, err := r.businesses.GetByID(ctx, id)
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrBusinessNotFound
		}
		return business, err
	}

	if in.To == "" {
		return nil, ErrBusinessNotFound
	}
	business, err := r.businesses.GetByWhatsAppNumber(ctx, in.To)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrBusinessNotFound
	}
	return business, err
}
