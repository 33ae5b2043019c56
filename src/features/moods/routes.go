package moods

import "github.com/gofiber/fiber/v2"

// RegisterRoutes registers the routes for the moods feature.
func RegisterRoutes(app *fiber.App, handler *Handler) {
	moods := app.Group("/moods")
	moods.Get("/", handler.GetPresets)
	moods.Post("/", handler.CreatePreset)
	moods.Put("/:id", handler.UpdatePreset)
	moods.Post("/:id/select", handler.SelectPreset)
	moods.Delete("/selection", handler.ClearSelection)
}
