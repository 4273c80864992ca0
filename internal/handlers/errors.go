package handlers

import (
	"errors"
	"log"
	"strings"

	"tienda/internal/services"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps service errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError logs err and writes the JSON error body for it.
func respondError(c *fiber.Ctx, message string, err error) error {
	log.Printf("%s %s: %s: %v", c.Method(), c.Path(), message, err)

	body := fiber.Map{
		"message": message,
		"error":   err.Error(),
	}
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		body["message"] = "Validation failed"
		if len(validationErr.Fields) > 0 {
			body["errors"] = validationErr.Fields
		}
	}
	return c.Status(statusFor(err)).JSON(body)
}

func invalidBody(c *fiber.Ctx, err error) error {
	log.Printf("Error parsing request body: %v", err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

// methodNotAllowed answers any verb that has no route on the path.
func methodNotAllowed(allowed ...string) fiber.Handler {
	allow := strings.Join(allowed, ", ")
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderAllow, allow)
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{
			"message": "Method " + c.Method() + " not allowed",
		})
	}
}
