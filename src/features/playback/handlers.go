package playback

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/lumideck/lumideck/src/media"
)

// Handler handles HTTP requests for the playback transport.
type Handler struct {
	engine *Engine
}

// NewHandler creates a new playback handler.
func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

// GetStatus returns the current transport state.
func (h *Handler) GetStatus(c *fiber.Ctx) error {
	st := h.engine.Status()
	resp := fiber.Map{
		"state":        string(st.State),
		"index":        st.Index,
		"position_sec": st.Position.Seconds(),
		"duration_sec": st.Duration.Seconds(),
		"volume":       st.Volume,
		"repeat":       string(st.Repeat),
	}
	if st.Track != nil {
		resp["track"] = st.Track
	}
	return c.JSON(resp)
}

// Play starts or resumes playback.
func (h *Handler) Play(c *fiber.Ctx) error {
	slog.Debug("Play handler called")
	h.engine.Play()
	return h.GetStatus(c)
}

// Pause suspends playback.
func (h *Handler) Pause(c *fiber.Ctx) error {
	slog.Debug("Pause handler called")
	h.engine.Pause()
	return h.GetStatus(c)
}

// Next skips to the following track.
func (h *Handler) Next(c *fiber.Ctx) error {
	slog.Debug("Next handler called")
	h.engine.Next()
	return h.GetStatus(c)
}

// Previous skips to the preceding track.
func (h *Handler) Previous(c *fiber.Ctx) error {
	slog.Debug("Previous handler called")
	h.engine.Previous()
	return h.GetStatus(c)
}

// Seek moves the playback position within the loaded track.
func (h *Handler) Seek(c *fiber.Ctx) error {
	var body struct {
		PositionSec float64 `json:"position_sec"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	h.engine.Seek(time.Duration(body.PositionSec * float64(time.Second)))
	return h.GetStatus(c)
}

// SetVolume applies a volume level. Out-of-range values are clamped.
func (h *Handler) SetVolume(c *fiber.Ctx) error {
	var body struct {
		Volume float64 `json:"volume"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	h.engine.SetVolume(body.Volume)
	return h.GetStatus(c)
}

// SetRepeat changes the repeat mode.
func (h *Handler) SetRepeat(c *fiber.Ctx) error {
	var body struct {
		Mode string `json:"mode"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	mode := media.RepeatMode(body.Mode)
	if !mode.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid repeat mode"})
	}
	h.engine.SetRepeatMode(mode)
	return h.GetStatus(c)
}
