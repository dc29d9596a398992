// middleware/auth.go
package middleware

import (
	"log"
	"strconv"
	"strings"

	"leftover-food-system/models"

	"github.com/gofiber/fiber/v2"
)

// ActorContextMiddleware reads the identity the gateway forwards (X-User-ID,
// X-User-Name, X-User-Role) into c.Locals("actor"). Requests without it pass
// through unchanged; handlers then fall back to body fields.
func ActorContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rawID := strings.TrimSpace(c.Get("X-User-ID"))
		if rawID == "" {
			return c.Next()
		}

		id, err := strconv.ParseUint(rawID, 10, 64)
		if err != nil || id == 0 {
			log.Printf("❌ [ACTOR] Malformed X-User-ID %q on %s", rawID, c.Path())
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "X-User-ID must be a positive integer",
			})
		}

		role := strings.ToLower(strings.TrimSpace(c.Get("X-User-Role")))
		if role != "" && !models.ValidRole(role) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "X-User-Role must be host, ngo or volunteer",
			})
		}

		c.Locals("actor", models.Actor{
			ID:   uint(id),
			Name: strings.TrimSpace(c.Get("X-User-Name")),
			Role: role,
		})
		return c.Next()
	}
}
