package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "picklist/internal/log"
	"picklist/internal/services"
	"picklist/internal/validate"
)

type ImportHandler struct {
	Life *services.LifecycleService
}

// Import accepts either a multipart sheet photo (field "scan") or a
// JSON body with raw sheet text, parses it and creates a pending list.
func (h *ImportHandler) Import(c *fiber.Ctx) error {
	name, _ := validate.ListName(c.FormValue("name"))

	if fh, err := c.FormFile("scan"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unreadable scan upload"})
		}
		defer f.Close()

		if name == "" {
			name, _ = validate.ListName(fh.Filename)
		}
		l, err := h.Life.ImportScan(c.Context(), name, f)
		if err != nil {
			return writeErr(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(l)
	}

	var in struct {
		Name string `json:"name"`
		Text string `json:"text"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request"})
	}
	if name == "" {
		name, _ = validate.ListName(in.Name)
	}
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "enter a list name"})
	}

	l, err := h.Life.ImportText(name, in.Text)
	if err != nil {
		applog.Info(c, "import.rejected", map[string]any{"name": name})
		return writeErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(l)
}
