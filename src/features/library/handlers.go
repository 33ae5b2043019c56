package library

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/lumideck/lumideck/src/features/state"
	"github.com/lumideck/lumideck/src/infra/files"
	"github.com/lumideck/lumideck/src/media"
)

// Handler handles HTTP requests for the media library.
type Handler struct {
	service *Service
	store   *state.Store
	fs      *files.Store
}

// NewHandler creates a new library handler.
func NewHandler(service *Service, store *state.Store, fs *files.Store) *Handler {
	return &Handler{service: service, store: store, fs: fs}
}

// GetSongs returns the song collection.
func (h *Handler) GetSongs(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"songs": h.store.Songs()})
}

// UploadSong imports an audio file from a multipart form.
func (h *Handler) UploadSong(c *fiber.Ctx) error {
	slog.Debug("UploadSong handler called")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "A file is required"})
	}
	f, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to read upload"})
	}
	defer f.Close()

	song, err := h.service.ImportSong(c.Context(), fileHeader.Filename, f)
	if err != nil {
		slog.Error("Failed to import song", "file", fileHeader.Filename, "error", err)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"song": song})
}

// AddRemoteSong registers a song referenced by URL.
func (h *Handler) AddRemoteSong(c *fiber.Ctx) error {
	var body struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	song, err := h.service.AddRemoteSong(c.Context(), body.Title, body.URL)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"song": song})
}

// DeleteSong removes one song.
func (h *Handler) DeleteSong(c *fiber.Ctx) error {
	id := c.Params("id")
	if h.store.Song(id) == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Song not found"})
	}
	h.service.RemoveSongs(c.Context(), []string{id})
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteSongs removes a batch of songs.
func (h *Handler) DeleteSongs(c *fiber.Ctx) error {
	var body struct {
		IDs []string `json:"ids"`
	}
	if err := c.BodyParser(&body); err != nil || len(body.IDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "A non-empty ids list is required"})
	}
	h.service.RemoveSongs(c.Context(), body.IDs)
	return c.SendStatus(fiber.StatusNoContent)
}

// GetPhotos returns the photo collection.
func (h *Handler) GetPhotos(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"photos": h.store.Photos()})
}

// UploadPhoto imports an image file from a multipart form.
func (h *Handler) UploadPhoto(c *fiber.Ctx) error {
	slog.Debug("UploadPhoto handler called")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "A file is required"})
	}
	f, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to read upload"})
	}
	defer f.Close()

	photo, err := h.service.ImportPhoto(c.Context(), fileHeader.Filename, f)
	if err != nil {
		slog.Error("Failed to import photo", "file", fileHeader.Filename, "error", err)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"photo": photo})
}

// AddRemotePhoto registers a photo referenced by URL.
func (h *Handler) AddRemotePhoto(c *fiber.Ctx) error {
	var body struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	photo, err := h.service.AddRemotePhoto(c.Context(), body.Title, body.URL)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"photo": photo})
}

// DeletePhoto removes one photo.
func (h *Handler) DeletePhoto(c *fiber.Ctx) error {
	id := c.Params("id")
	if h.store.Photo(id) == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Photo not found"})
	}
	h.service.RemovePhotos(c.Context(), []string{id})
	return c.SendStatus(fiber.StatusNoContent)
}

// DeletePhotos removes a batch of photos.
func (h *Handler) DeletePhotos(c *fiber.Ctx) error {
	var body struct {
		IDs []string `json:"ids"`
	}
	if err := c.BodyParser(&body); err != nil || len(body.IDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "A non-empty ids list is required"})
	}
	h.service.RemovePhotos(c.Context(), body.IDs)
	return c.SendStatus(fiber.StatusNoContent)
}

// GetThumbnail serves a photo's thumbnail.
func (h *Handler) GetThumbnail(c *fiber.Ctx) error {
	id := c.Params("id")
	if h.store.Photo(id) == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Photo not found"})
	}
	return c.SendFile(h.fs.ThumbnailPath(id))
}

// GetPhotoFile serves a photo's stored bytes.
func (h *Handler) GetPhotoFile(c *fiber.Ctx) error {
	photo := h.store.Photo(c.Params("id"))
	if photo == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Photo not found"})
	}
	if photo.SrcKind != media.SourceFile {
		return c.Redirect(photo.Src, fiber.StatusTemporaryRedirect)
	}
	return c.SendFile(photo.Src)
}

// GetSongFile serves a song's stored bytes.
func (h *Handler) GetSongFile(c *fiber.Ctx) error {
	song := h.store.Song(c.Params("id"))
	if song == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Song not found"})
	}
	if song.SrcKind != media.SourceFile {
		return c.Redirect(song.Src, fiber.StatusTemporaryRedirect)
	}
	return c.SendFile(song.Src)
}
