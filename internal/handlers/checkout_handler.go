package handlers

import (
	"tienda/internal/models"
	"tienda/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CheckoutHandler accepts the checkout form and redirects to the payment page.
type CheckoutHandler struct {
	service *services.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(service *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

// RegisterRoutes registers /checkout on router.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/checkout", h.HandleCheckout)
	router.All("/checkout", methodNotAllowed(fiber.MethodPost))
}

// HandleCheckout parses a form-encoded or JSON checkout, stores the order and
// answers 303 with the hosted session URL.
func (h *CheckoutHandler) HandleCheckout(c *fiber.Ctx) error {
	var req models.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}

	result, err := h.service.Checkout(c.UserContext(), req, c.Get(fiber.HeaderOrigin))
	if err != nil {
		return respondError(c, "Checkout failed", err)
	}
	return c.Redirect(result.SessionURL, fiber.StatusSeeOther)
}
