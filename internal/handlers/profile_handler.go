package handlers

import (
	"tienda/internal/middleware"
	"tienda/internal/models"
	"tienda/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProfileHandler reads and saves the caller's own profile. It expects the
// identity placed in the context by middleware.IdentityRequired.
type ProfileHandler struct {
	service *services.ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(service *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// RegisterRoutes registers the profile routes on router.
func (h *ProfileHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleGetProfile)
	router.Post("/", h.HandleSaveProfile)
	router.All("/", methodNotAllowed(fiber.MethodGet, fiber.MethodPost))
}

// HandleGetProfile returns the caller's profile, or null when none is stored.
func (h *ProfileHandler) HandleGetProfile(c *fiber.Ctx) error {
	profile, err := h.service.GetProfile(c.UserContext(), middleware.IdentityFromContext(c))
	if err != nil {
		return respondError(c, "Could not retrieve profile", err)
	}
	return c.JSON(profile)
}

// HandleSaveProfile creates or updates the caller's profile.
func (h *ProfileHandler) HandleSaveProfile(c *fiber.Ctx) error {
	var in models.ProfileInput
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c, err)
	}
	profile, err := h.service.SaveProfile(c.UserContext(), middleware.IdentityFromContext(c), in)
	if err != nil {
		return respondError(c, "Could not save profile", err)
	}
	return c.JSON(profile)
}
