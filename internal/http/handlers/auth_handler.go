package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "picklist/internal/log"
	"picklist/internal/services"
	"picklist/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in struct {
		Code     string `json:"code"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request"})
	}
	code, ok := validate.UserCode(in.Code)
	if !ok || in.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "enter a picker code and password"})
	}

	token, err := h.Auth.Login(code, in.Password)
	if err != nil {
		applog.Security(c, "login.fail", map[string]any{"code": code})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid picker code or password"})
	}
	applog.Audit(c, "login.ok", map[string]any{"code": code})
	return c.JSON(fiber.Map{"token": token})
}
