package handlers

import (
	"github.com/gofiber/fiber/v2"

	"picklist/internal/services"
)

type StatsHandler struct {
	Stats *services.StatsService
}

func (h *StatsHandler) Get(c *fiber.Ctx) error {
	return c.JSON(h.Stats.Snapshot())
}
