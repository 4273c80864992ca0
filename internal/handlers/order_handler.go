package handlers

import (
	"tienda/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes on router.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleGetOrders)
	router.Get("/:id", h.HandleGetOrderByID)
}

// HandleGetOrders retrieves all orders, newest first.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(c.UserContext())
	if err != nil {
		return respondError(c, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, "Could not retrieve order", err)
	}
	return c.JSON(order)
}
