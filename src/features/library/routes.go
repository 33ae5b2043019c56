package library

import "github.com/gofiber/fiber/v2"

// RegisterRoutes registers the routes for the library feature.
func RegisterRoutes(app *fiber.App, handler *Handler) {
	lib := app.Group("/library")

	songs := lib.Group("/songs")
	songs.Get("/", handler.GetSongs)
	songs.Post("/", handler.UploadSong)
	songs.Post("/remote", handler.AddRemoteSong)
	songs.Post("/remove", handler.DeleteSongs)
	songs.Get("/:id/file", handler.GetSongFile)
	songs.Delete("/:id", handler.DeleteSong)

	photos := lib.Group("/photos")
	photos.Get("/", handler.GetPhotos)
	photos.Post("/", handler.UploadPhoto)
	photos.Post("/remote", handler.AddRemotePhoto)
	photos.Post("/remove", handler.DeletePhotos)
	photos.Get("/:id/file", handler.GetPhotoFile)
	photos.Get("/:id/thumbnail", handler.GetThumbnail)
	photos.Delete("/:id", handler.DeletePhoto)
}
