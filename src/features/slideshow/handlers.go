package slideshow

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lumideck/lumideck/src/features/state"
)

// Handler handles HTTP requests for the slideshow.
type Handler struct {
	rotator *Rotator
	store   *state.Store
}

// NewHandler creates a new slideshow handler.
func NewHandler(rotator *Rotator, store *state.Store) *Handler {
	return &Handler{rotator: rotator, store: store}
}

// GetCurrent returns the photo the slideshow is on, with the active mood
// preset id for the presentation layer to apply.
func (h *Handler) GetCurrent(c *fiber.Ctx) error {
	snap := h.store.Snapshot()
	resp := fiber.Map{
		"index":        snap.CurrentPhotoIndex,
		"moodPresetId": snap.MoodPresetID,
	}
	if photo := h.store.CurrentPhoto(); photo != nil {
		resp["photo"] = photo
	}
	if preset := h.store.MoodPreset(snap.MoodPresetID); preset != nil {
		resp["moodFilter"] = preset.ComposedFilter()
	}
	return c.JSON(resp)
}

// Next advances the slideshow by hand.
func (h *Handler) Next(c *fiber.Ctx) error {
	h.rotator.Next()
	return h.GetCurrent(c)
}

// Previous rewinds the slideshow by hand.
func (h *Handler) Previous(c *fiber.Ctx) error {
	h.rotator.Previous()
	return h.GetCurrent(c)
}
