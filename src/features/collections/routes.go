package collections

import "github.com/gofiber/fiber/v2"

// RegisterRoutes registers the routes for the collections feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)
	group := app.Group("/accounts/:username/collections/:kind")
	group.Post("/", handler.Create)
	group.Get("/", handler.List)
	group.Get("/:name/songs", handler.Songs)
	group.Post("/:name/songs", handler.AddSong)
}
