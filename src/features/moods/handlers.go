package moods

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lumideck/lumideck/src/features/state"
	"github.com/lumideck/lumideck/src/media"
)

// Handler handles HTTP requests for mood presets.
type Handler struct {
	service *Service
	store   *state.Store
}

// NewHandler creates a new moods handler.
func NewHandler(service *Service, store *state.Store) *Handler {
	return &Handler{service: service, store: store}
}

// GetPresets returns all presets plus the active selection.
func (h *Handler) GetPresets(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"presets":  h.store.MoodPresets(),
		"selected": h.store.Snapshot().MoodPresetID,
	})
}

// CreatePreset adds a custom preset.
func (h *Handler) CreatePreset(c *fiber.Ctx) error {
	var body struct {
		Name      string            `json:"name"`
		Filter    string            `json:"filter"`
		Intensity int               `json:"intensity"`
		Options   media.MoodOptions `json:"options"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	preset, err := h.service.CreatePreset(c.Context(), body.Name, body.Filter, body.Intensity, body.Options)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"preset": preset})
}

// UpdatePreset applies a partial update to a preset.
func (h *Handler) UpdatePreset(c *fiber.Ctx) error {
	var changes PresetChanges
	if err := c.BodyParser(&changes); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	preset, err := h.service.UpdatePreset(c.Context(), c.Params("id"), changes)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"preset": preset})
}

// SelectPreset records the active preset.
func (h *Handler) SelectPreset(c *fiber.Ctx) error {
	if err := h.service.SelectPreset(c.Context(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ClearSelection removes the active preset.
func (h *Handler) ClearSelection(c *fiber.Ctx) error {
	h.service.SelectPreset(c.Context(), "")
	return c.SendStatus(fiber.StatusNoContent)
}
