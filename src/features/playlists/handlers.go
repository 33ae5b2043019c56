package playlists

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/lumideck/lumideck/src/features/state"
)

// Handler handles HTTP requests for playlists.
type Handler struct {
	service *Service
	store   *state.Store
}

// NewHandler creates a new playlists handler.
func NewHandler(service *Service, store *state.Store) *Handler {
	return &Handler{service: service, store: store}
}

// GetMusicPlaylists returns all music playlists.
func (h *Handler) GetMusicPlaylists(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"playlists": h.store.MusicPlaylists()})
}

// GetMusicPlaylist returns one music playlist with its songs resolved.
func (h *Handler) GetMusicPlaylist(c *fiber.Ctx) error {
	id := c.Params("id")
	playlist := h.store.MusicPlaylist(id)
	if playlist == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Playlist not found"})
	}
	return c.JSON(fiber.Map{
		"playlist": playlist,
		"songs":    h.store.ResolveMusicPlaylist(id),
	})
}

// CreateMusicPlaylist creates a new music playlist.
func (h *Handler) CreateMusicPlaylist(c *fiber.Ctx) error {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	playlist, err := h.service.CreateMusicPlaylist(c.Context(), body.Name)
	if err != nil {
		slog.Error("Failed to create music playlist", "error", err, "name", body.Name)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"playlist": playlist})
}

// UpdateMusicPlaylist applies a partial update to a music playlist.
func (h *Handler) UpdateMusicPlaylist(c *fiber.Ctx) error {
	var changes MusicPlaylistChanges
	if err := c.BodyParser(&changes); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	playlist, err := h.service.UpdateMusicPlaylist(c.Context(), c.Params("id"), changes)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"playlist": playlist})
}

// DeleteMusicPlaylist removes a music playlist.
func (h *Handler) DeleteMusicPlaylist(c *fiber.Ctx) error {
	if err := h.service.DeleteMusicPlaylist(c.Context(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SelectMusicPlaylist activates a music playlist for playback.
func (h *Handler) SelectMusicPlaylist(c *fiber.Ctx) error {
	if err := h.service.SelectMusicPlaylist(c.Context(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddSongToMusicPlaylist appends a song to a music playlist.
func (h *Handler) AddSongToMusicPlaylist(c *fiber.Ctx) error {
	var body struct {
		SongID string `json:"songId"`
	}
	if err := c.BodyParser(&body); err != nil || body.SongID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "A songId is required"})
	}
	if err := h.service.AddSongToMusicPlaylist(c.Context(), c.Params("id"), body.SongID); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveSongFromMusicPlaylist strips a song from a music playlist.
func (h *Handler) RemoveSongFromMusicPlaylist(c *fiber.Ctx) error {
	if err := h.service.RemoveSongFromMusicPlaylist(c.Context(), c.Params("id"), c.Params("songId")); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetPhotoPlaylists returns all photo playlists.
func (h *Handler) GetPhotoPlaylists(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"playlists": h.store.PhotoPlaylists()})
}

// GetPhotoPlaylist returns one photo playlist with its photos resolved.
func (h *Handler) GetPhotoPlaylist(c *fiber.Ctx) error {
	id := c.Params("id")
	playlist := h.store.PhotoPlaylist(id)
	if playlist == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Playlist not found"})
	}
	return c.JSON(fiber.Map{
		"playlist": playlist,
		"photos":   h.store.ResolvePhotoPlaylist(id),
	})
}

// CreatePhotoPlaylist creates a new photo playlist.
func (h *Handler) CreatePhotoPlaylist(c *fiber.Ctx) error {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	playlist, err := h.service.CreatePhotoPlaylist(c.Context(), body.Name, body.Description)
	if err != nil {
		slog.Error("Failed to create photo playlist", "error", err, "name", body.Name)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"playlist": playlist})
}

// UpdatePhotoPlaylist applies a partial update to a photo playlist.
func (h *Handler) UpdatePhotoPlaylist(c *fiber.Ctx) error {
	var changes PhotoPlaylistChanges
	if err := c.BodyParser(&changes); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	playlist, err := h.service.UpdatePhotoPlaylist(c.Context(), c.Params("id"), changes)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"playlist": playlist})
}

// DeletePhotoPlaylist removes a photo playlist.
func (h *Handler) DeletePhotoPlaylist(c *fiber.Ctx) error {
	if err := h.service.DeletePhotoPlaylist(c.Context(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SelectPhotoPlaylist activates a photo playlist for the slideshow.
func (h *Handler) SelectPhotoPlaylist(c *fiber.Ctx) error {
	if err := h.service.SelectPhotoPlaylist(c.Context(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddPhotoToPhotoPlaylist appends a photo to a photo playlist.
func (h *Handler) AddPhotoToPhotoPlaylist(c *fiber.Ctx) error {
	var body struct {
		PhotoID string `json:"photoId"`
	}
	if err := c.BodyParser(&body); err != nil || body.PhotoID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "A photoId is required"})
	}
	if err := h.service.AddPhotoToPhotoPlaylist(c.Context(), c.Params("id"), body.PhotoID); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RemovePhotoFromPhotoPlaylist strips a photo from a photo playlist.
func (h *Handler) RemovePhotoFromPhotoPlaylist(c *fiber.Ctx) error {
	if err := h.service.RemovePhotoFromPhotoPlaylist(c.Context(), c.Params("id"), c.Params("photoId")); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
