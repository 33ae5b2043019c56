package state

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/lumideck/lumideck/src/media"
)

// Handler handles HTTP requests for the app-state snapshot.
type Handler struct {
	store *Store
}

// NewHandler creates a new state handler.
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// GetState returns the persisted snapshot plus the transient playback
// mirror.
func (h *Handler) GetState(c *fiber.Ctx) error {
	snap := h.store.Snapshot()
	playing, position, duration := h.store.PlaybackMirror()
	return c.JSON(fiber.Map{
		"snapshot":     snap,
		"isPlaying":    playing,
		"position_sec": position.Seconds(),
		"duration_sec": duration.Seconds(),
	})
}

// SetTheme records the UI theme preference.
func (h *Handler) SetTheme(c *fiber.Ctx) error {
	var body struct {
		Theme string `json:"theme"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	theme := media.Theme(body.Theme)
	switch theme {
	case media.ThemeLight, media.ThemeDark, media.ThemeSystem:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown theme"})
	}
	h.store.SetTheme(theme)
	slog.Debug("Theme changed", "theme", theme)
	return c.JSON(fiber.Map{"theme": theme})
}

// SetView records which screen the presentation layer is showing.
func (h *Handler) SetView(c *fiber.Ctx) error {
	var body struct {
		View string `json:"view"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	view := media.View(body.View)
	switch view {
	case media.ViewNowPlaying, media.ViewMenu, media.ViewMusicEditor, media.ViewPhotoEditor, media.ViewMood:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown view"})
	}
	h.store.SetView(view)
	return c.JSON(fiber.Map{"view": view})
}
