package handlers

import (
	"tienda/internal/cart"
	"tienda/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler serves the public catalog.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// RegisterRoutes registers the catalog routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
}

// HandleGetProducts lists the catalog. ?ids=a,b,c restricts the result to
// those products; a blank list means the whole catalog.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	ids := cart.Parse(c.Query("ids")).Distinct()
	products, err := h.service.ListProducts(c.UserContext(), ids)
	if err != nil {
		return respondError(c, "Could not retrieve products", err)
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, "Could not retrieve product", err)
	}
	return c.JSON(product)
}
