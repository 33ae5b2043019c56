package state

import "github.com/gofiber/fiber/v2"

// RegisterRoutes registers the routes for the state feature.
func RegisterRoutes(app *fiber.App, store *Store) {
	handler := NewHandler(store)

	st := app.Group("/state")
	st.Get("/", handler.GetState)
	st.Post("/theme", handler.SetTheme)
	st.Post("/view", handler.SetView)
}
