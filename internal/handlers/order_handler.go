package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/terangahq/teranga-backend/internal/models"
	"github.com/terangahq/teranga-backend/internal/repositories"
)

type OrderHandler struct {
	orders repositories.OrderRepo
}

func NewOrderHandler(orders repositories.OrderRepo) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// ListOrders godoc
// @Summary List recent orders for a business
// @Tags Orders
// @Produce json
// @Param businessID path string true "Business ID"
// @Param limit query int false "Max rows (default 50)"
// @Success 200 {array} models.Order
// @Router /businesses/{businessID}/orders [get]
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	businessID, err := uuid.Parse(c.Params("businessID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid business id"})
	}

	limit := c.QueryInt("limit", 50)
	orders, err := h.orders.ListByBusiness(c.Context(), businessID, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch orders"})
	}

	return c.JSON(orders)
}

// GetOrder godoc
// @Summary Get one order
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} models.Order
// @Failure 404 {object} map[string]interface{}
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}

	order, err := h.orders.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch order"})
	}

	return c.JSON(order)
}

// UpdateOrder godoc
// @Summary Update order status or notes
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param data body models.UpdateOrderRequest true "Fields to update"
// @Success 200 {object} models.Order
// @Failure 400 {object} map[string]interface{}
// @Router /orders/{id} [put]
func (h *OrderHandler) UpdateOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}

	var req models.UpdateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	order, err := h.orders.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch order"})
	}

	if req.Status != nil {
		switch *req.Status {
		case models.OrderStatusPending, models.OrderStatusConfirmed,
			models.OrderStatusCompleted, models.OrderStatusCancelled:
			order.Status = *req.Status
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid status"})
		}
	}
	if req.Notes != nil {
		order.Notes = *req.Notes
	}

	if err := h.orders.Update(c.Context(), order); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update order"})
	}

	return c.JSON(order)
}
