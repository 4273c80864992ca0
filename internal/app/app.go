// Package app assembles the Fiber application from the storefront services.
package app

import (
	"time"

	"tienda/internal/handlers"
	"tienda/internal/middleware"
	"tienda/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Services are the dependencies of the HTTP surface.
type Services struct {
	Products *services.ProductService
	Orders   *services.OrderService
	Profiles *services.ProfileService
	Checkout *services.CheckoutService
	Identity middleware.IdentityVerifier
}

// Options tune the application for its environment.
type Options struct {
	// RequestLog enables the per-request access log.
	RequestLog bool
	// Health adds extra fields to the /health response.
	Health func() fiber.Map
}

// New builds the Fiber app with every route registered.
func New(svc Services, opts Options) *fiber.App {
	// Parsed bodies are kept by the in-memory stores, so they must not alias
	// fasthttp's pooled buffers.
	app := fiber.New(fiber.Config{AppName: "tienda", Immutable: true})

	app.Use(recover.New())
	if opts.RequestLog {
		app.Use(logger.New())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		body := fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		}
		if opts.Health != nil {
			for k, v := range opts.Health() {
				body[k] = v
			}
		}
		return c.Status(fiber.StatusOK).JSON(body)
	})

	identityRequired := middleware.IdentityRequired(svc.Identity)
	adminRequired := middleware.AdminRequired(svc.Identity)

	handlers.NewProductHandler(svc.Products).RegisterRoutes(app)
	handlers.NewCheckoutHandler(svc.Checkout).RegisterRoutes(app)

	handlers.NewProfileHandler(svc.Profiles).RegisterRoutes(app.Group("/profile", identityRequired))

	admin := app.Group("/admin", identityRequired, adminRequired)
	handlers.NewAdminHandler(svc.Products).RegisterRoutes(admin)

	orders := app.Group("/orders", identityRequired, adminRequired)
	handlers.NewOrderHandler(svc.Orders).RegisterRoutes(orders)

	return app
}
