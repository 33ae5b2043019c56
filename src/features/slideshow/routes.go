package slideshow

import "github.com/gofiber/fiber/v2"

// RegisterRoutes registers the routes for the slideshow feature.
func RegisterRoutes(app *fiber.App, handler *Handler) {
	show := app.Group("/slideshow")
	show.Get("/current", handler.GetCurrent)
	show.Post("/next", handler.Next)
	show.Post("/previous", handler.Previous)
}
