package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"picklist/internal/domain"
	applog "picklist/internal/log"
	"picklist/internal/services"
	"picklist/internal/store"
	"picklist/internal/validate"
)

type ListHandler struct {
	Lists *store.Local
	Life  *services.LifecycleService
}

// writeErr maps domain errors onto API statuses.
func writeErr(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "list not found"})
	case errors.Is(err, domain.ErrListLocked):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrListCompleted):
		return c.Status(fiber.StatusGone).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrParseEmpty):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "no valid items found"})
	default:
		applog.Error(c, "api.error", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "server error"})
	}
}

func listID(c *fiber.Ctx) (string, bool) {
	return validate.ListID(c.Params("id"))
}

// Create stores an already-parsed list, as pushed by a device syncing
// its locally imported sheet.
func (h *ListHandler) Create(c *fiber.Ctx) error {
	var in struct {
		Name           string        `json:"name"`
		Items          []domain.Item `json:"items"`
		InitialSeconds int           `json:"initial_seconds"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request"})
	}
	name, ok := validate.ListName(in.Name)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "enter a list name"})
	}
	if len(in.Items) == 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "no valid items found"})
	}
	if in.InitialSeconds < 0 {
		in.InitialSeconds = 0
	}

	l, err := h.Lists.CreateList(name, in.Items, in.InitialSeconds)
	if err != nil {
		return writeErr(c, err)
	}
	applog.Audit(c, "list.create", map[string]any{"list_id": l.ID, "items": len(in.Items)})
	return c.Status(fiber.StatusCreated).JSON(l)
}

// List returns summaries filtered by ?status=a,b (newest first).
func (h *ListHandler) List(c *fiber.Ctx) error {
	raw := c.Query("status", string(domain.StatusPending)+","+string(domain.StatusInProgress))
	var statuses []domain.Status
	for _, part := range strings.Split(raw, ",") {
		st := domain.Status(strings.TrimSpace(part))
		if !st.Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown status " + string(st)})
		}
		statuses = append(statuses, st)
	}

	out, err := h.Lists.ListByStatus(statuses...)
	if err != nil {
		return writeErr(c, err)
	}
	if out == nil {
		out = []domain.ListSummary{}
	}
	return c.JSON(out)
}

func (h *ListHandler) Completed(c *fiber.Ctx) error {
	out, err := h.Lists.ListCompleted()
	if err != nil {
		return writeErr(c, err)
	}
	if out == nil {
		out = []domain.ListSummary{}
	}
	return c.JSON(out)
}

// Active returns the caller's in-progress list, or 204 when none.
func (h *ListHandler) Active(c *fiber.Ctx) error {
	act, err := h.Lists.ActiveList(userCode(c))
	if err != nil {
		return writeErr(c, err)
	}
	if act == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(act)
}

func (h *ListHandler) Get(c *fiber.Ctx) error {
	id, ok := listID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid list id"})
	}
	out, err := h.Lists.WithItems(id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(out)
}

// Start claims the list for the calling picker.
func (h *ListHandler) Start(c *fiber.Ctx) error {
	id, ok := listID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid list id"})
	}
	l, err := h.Lists.MarkInProgress(id, userCode(c))
	if err != nil {
		if errors.Is(err, domain.ErrListLocked) {
			applog.Security(c, "list.locked", map[string]any{"list_id": id})
		}
		return writeErr(c, err)
	}
	applog.Audit(c, "list.start", map[string]any{"list_id": id})
	return c.JSON(l)
}

func (h *ListHandler) Complete(c *fiber.Ctx) error {
	id, ok := listID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid list id"})
	}
	l, err := h.Lists.GetList(id)
	if err != nil {
		return writeErr(c, err)
	}
	switch l.Status {
	case domain.StatusCompleted:
		// Already terminal; completing twice has no further effect.
		return c.SendStatus(fiber.StatusNoContent)
	case domain.StatusPending:
		// A list nobody started cannot jump straight to completed.
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "list was never started"})
	}

	if err := h.Lists.MarkCompleted(id); err != nil {
		return writeErr(c, err)
	}
	applog.Audit(c, "list.complete", map[string]any{"list_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

// ToggleItem flips one position's completion flag. Completion detection
// runs server-side too, so a device that dies right after its last
// toggle still gets the list closed out.
func (h *ListHandler) ToggleItem(c *fiber.Ctx) error {
	id, ok := listID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid list id"})
	}
	pos, err := c.ParamsInt("pos")
	if err != nil || pos <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid item position"})
	}
	var in struct {
		Completed bool `json:"completed"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request"})
	}

	done, err := h.Life.ToggleItem(id, pos, in.Completed)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(fiber.Map{"list_completed": done})
}

// Seconds overwrites the list's stored elapsed time (periodic flush
// from the picking device).
func (h *ListHandler) Seconds(c *fiber.Ctx) error {
	id, ok := listID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid list id"})
	}
	var in struct {
		Seconds int `json:"seconds"`
	}
	if err := c.BodyParser(&in); err != nil || in.Seconds < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid seconds"})
	}
	if err := h.Lists.SetAccumulatedSeconds(id, in.Seconds); err != nil {
		return writeErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
