package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "picklist/internal/log"
	"picklist/internal/services"
)

// RequireUser validates the Bearer token and stores the picker code in
// Locals("userCode") for downstream handlers and the logger.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
		}
		code, err := auth.UserCode(token)
		if err != nil {
			applog.Security(c, "access.denied.token", map[string]any{"err": err.Error()})
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}
		c.Locals("userCode", code)
		return c.Next()
	}
}

func userCode(c *fiber.Ctx) string {
	code, _ := c.Locals("userCode").(string)
	return code
}
