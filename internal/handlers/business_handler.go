package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/terangahq/teranga-backend/internal/models"
	"github.com/terangahq/teranga-backend/internal/repositories"
)

type BusinessHandler struct {
	businesses repositories.BusinessRepo
}

func NewBusinessHandler(businesses repositories.BusinessRepo) *BusinessHandler {
	return &BusinessHandler{businesses: businesses}
}

// GetBusiness godoc
// @Summary Get business profile
// @Tags Business
// @Produce json
// @Param id path string true "Business ID"
// @Success 200 {object} models.Business
// @Failure 404 {object} map[string]interface{}
// @Router /businesses/{id} [get]
func (h *BusinessHandler) GetBusiness(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid business id"})
	}

	business, err := h.businesses.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "business not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch business"})
	}

	return c.JSON(business)
}

// UpdateBusiness godoc
// @Summary Update business profile and chatbot settings
// @Tags Business
// @Accept json
// @Produce json
// @Param id path string true "Business ID"
// @Param data body models.UpdateBusinessRequest true "Fields to update"
// @Success 200 {object} models.Business
// @Failure 400 {object} map[string]interface{}
// @Router /businesses/{id} [put]
func (h *BusinessHandler) UpdateBusiness(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid business id"})
	}

	var req models.UpdateBusinessRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	business, err := h.businesses.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "business not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch business"})
	}

	if req.Name != nil {
		business.Name = *req.Name
	}
	if req.Description != nil {
		business.Description = *req.Description
	}
	if req.Cuisine != nil {
		business.Cuisine = *req.Cuisine
	}
	if req.IsActive != nil {
		business.IsActive = *req.IsActive
	}
	if req.WelcomeMessage != nil {
		business.WelcomeMessage = *req.WelcomeMessage
	}
	if req.BusinessHours != nil {
		business.BusinessHours = *req.BusinessHours
	}
	if req.SpecialInstructions != nil {
		business.SpecialInstructions = *req.SpecialInstructions
	}
	if req.DeliveryInfo != nil {
		business.DeliveryInfo = *req.DeliveryInfo
	}
	if req.OrderingEnabled != nil {
		business.OrderingEnabled = *req.OrderingEnabled
	}

	if err := h.businesses.Update(c.Context(), business); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update business"})
	}

	return c.JSON(business)
}
