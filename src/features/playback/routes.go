package playback

import "github.com/gofiber/fiber/v2"

// RegisterRoutes registers the routes for the playback feature.
func RegisterRoutes(app *fiber.App, engine *Engine) {
	handler := NewHandler(engine)

	playback := app.Group("/playback")
	playback.Get("/status", handler.GetStatus)
	playback.Post("/play", handler.Play)
	playback.Post("/pause", handler.Pause)
	playback.Post("/next", handler.Next)
	playback.Post("/previous", handler.Previous)
	playback.Post("/seek", handler.Seek)
	playback.Post("/volume", handler.SetVolume)
	playback.Post("/repeat", handler.SetRepeat)
}
