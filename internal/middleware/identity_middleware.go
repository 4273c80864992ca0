package middleware

import (
	"log"
	"strings"

	"tienda/internal/models"

	"github.com/gofiber/fiber/v2"
)

const identityKey = "identity"

// IdentityVerifier checks a bearer token and reports admin membership.
type IdentityVerifier interface {
	Verify(token string) (*models.AuthenticatedIdentity, error)
	IsAdmin(identity *models.AuthenticatedIdentity) bool
}

// IdentityRequired is a Fiber middleware that rejects requests without a valid
// identity token and stores the verified identity for subsequent handlers.
func IdentityRequired(verifier IdentityVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && strings.EqualFold(parts[0], "Bearer")) || strings.TrimSpace(parts[1]) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		identity, err := verifier.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			log.Printf("Identity verification failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// AdminRequired lets through only identities on the admin allow-list. It must
// be mounted after IdentityRequired.
func AdminRequired(verifier IdentityVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := IdentityFromContext(c)
		if identity == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}
		if !verifier.IsAdmin(identity) {
			log.Printf("Admin access denied for subject %s", identity.Subject)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Admin access required",
			})
		}
		return c.Next()
	}
}

// IdentityFromContext returns the identity stored by IdentityRequired, or nil.
func IdentityFromContext(c *fiber.Ctx) *models.AuthenticatedIdentity {
	identity, _ := c.Locals(identityKey).(*models.AuthenticatedIdentity)
	return identity
}
