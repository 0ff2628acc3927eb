package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/terangahq/teranga-backend/internal/models"
	"github.com/terangahq/teranga-backend/internal/repositories"
)

type MenuHandler struct {
	menu repositories.MenuRepo
}

func NewMenuHandler(menu repositories.MenuRepo) *MenuHandler {
	return &MenuHandler{menu: menu}
}

// ListMenu godoc
// @Summary List a business's menu
// @Tags Menu
// @Produce json
// @Param businessID path string true "Business ID"
// @Success 200 {array} models.MenuItem
// @Router /businesses/{businessID}/menu [get]
func (h *MenuHandler) ListMenu(c *fiber.Ctx) error {
	businessID, err := uuid.Parse(c.Params("businessID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid business id"})
	}

	items, err := h.menu.ListByBusiness(c.Context(), businessID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch menu"})
	}

	return c.JSON(items)
}

// CreateMenuItem godoc
// @Summary Add a menu item
// @Tags Menu
// @Accept json
// @Produce json
// @Param businessID path string true "Business ID"
// @Param data body models.CreateMenuItemRequest true "Menu item"
// @Success 201 {object} models.MenuItem
// @Failure 400 {object} map[string]interface{}
// @Router /businesses/{businessID}/menu [post]
func (h *MenuHandler) CreateMenuItem(c *fiber.Ctx) error {
	businessID, err := uuid.Parse(c.Params("businessID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid business id"})
	}

	var req models.CreateMenuItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}
	if req.PriceCents < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "price_cents must be non-negative"})
	}

	item := &models.MenuItem{
		BusinessID:  businessID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		PriceCents:  req.PriceCents,
		IsAvailable: true,
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}

	if err := h.menu.Create(c.Context(), item); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create menu item"})
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

// UpdateMenuItem godoc
// @Summary Update a menu item
// @Tags Menu
// @Accept json
// @Produce json
// @Param businessID path string true "Business ID"
// @Param id path string true "Menu item ID"
// @Param data body models.UpdateMenuItemRequest true "Fields to update"
// @Success 200 {object} models.MenuItem
// @Failure 404 {object} map[string]interface{}
// @Router /businesses/{businessID}/menu/{id} [put]
func (h *MenuHandler) UpdateMenuItem(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid menu item id"})
	}

	var req models.UpdateMenuItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	item, err := h.menu.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "menu item not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch menu item"})
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.PriceCents != nil {
		if *req.PriceCents < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "price_cents must be non-negative"})
		}
		item.PriceCents = *req.PriceCents
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}

	if err := h.menu.Update(c.Context(), item); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update menu item"})
	}

	return c.JSON(item)
}

// DeleteMenuItem godoc
// @Summary Remove a menu item
// @Tags Menu
// @Param businessID path string true "Business ID"
// @Param id path string true "Menu item ID"
// @Success 204
// @Router /businesses/{businessID}/menu/{id} [delete]
func (h *MenuHandler) DeleteMenuItem(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid menu item id"})
	}

	if err := h.menu.Delete(c.Context(), id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "menu item not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete menu item"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
