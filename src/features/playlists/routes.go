package playlists

import "github.com/gofiber/fiber/v2"

// RegisterRoutes registers the routes for the playlists feature.
func RegisterRoutes(app *fiber.App, handler *Handler) {
	music := app.Group("/playlists/music")
	music.Get("/", handler.GetMusicPlaylists)
	music.Post("/", handler.CreateMusicPlaylist)
	music.Get("/:id", handler.GetMusicPlaylist)
	music.Put("/:id", handler.UpdateMusicPlaylist)
	music.Delete("/:id", handler.DeleteMusicPlaylist)
	music.Post("/:id/select", handler.SelectMusicPlaylist)
	music.Post("/:id/songs", handler.AddSongToMusicPlaylist)
	music.Delete("/:id/songs/:songId", handler.RemoveSongFromMusicPlaylist)

	photos := app.Group("/playlists/photos")
	photos.Get("/", handler.GetPhotoPlaylists)
	photos.Post("/", handler.CreatePhotoPlaylist)
	photos.Get("/:id", handler.GetPhotoPlaylist)
	photos.Put("/:id", handler.UpdatePhotoPlaylist)
	photos.Delete("/:id", handler.DeletePhotoPlaylist)
	photos.Post("/:id/select", handler.SelectPhotoPlaylist)
	photos.Post("/:id/photos", handler.AddPhotoToPhotoPlaylist)
	photos.Delete("/:id/photos/:photoId", handler.RemovePhotoFromPhotoPlaylist)
}
