package handlers

import (
	"tienda/internal/models"
	"tienda/internal/services"

	"github.com/gofiber/fiber/v2"
)

// editProductRequest is the body of the admin product editor. _id is ignored
// on create.
type editProductRequest struct {
	ID string `json:"_id" form:"_id"`
	models.ProductInput
}

// AdminHandler serves the admin product editor. Access control is applied by
// the router group it is registered on.
type AdminHandler struct {
	products *services.ProductService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(products *services.ProductService) *AdminHandler {
	return &AdminHandler{products: products}
}

// RegisterRoutes registers /edit-product on router.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/edit-product", h.HandleCreateProduct)
	router.Put("/edit-product", h.HandleUpdateProduct)
	router.Delete("/edit-product", h.HandleDeleteProduct)
	router.All("/edit-product", methodNotAllowed(fiber.MethodPost, fiber.MethodPut, fiber.MethodDelete))
}

// HandleCreateProduct creates a product and returns it with 201.
func (h *AdminHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req editProductRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	product, err := h.products.CreateProduct(c.UserContext(), req.ProductInput)
	if err != nil {
		return respondError(c, "Could not create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct replaces the editable fields of the product named by _id.
func (h *AdminHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var req editProductRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	product, err := h.products.UpdateProduct(c.UserContext(), req.ID, req.ProductInput)
	if err != nil {
		return respondError(c, "Could not update product", err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct removes the product named by _id, read from the body or
// the query string. Deleting a missing product still answers 204.
func (h *AdminHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	var req editProductRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c, err)
		}
	}
	if req.ID == "" {
		req.ID = c.Query("_id")
	}
	if err := h.products.DeleteProduct(c.UserContext(), req.ID); err != nil {
		return respondError(c, "Could not delete product", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
