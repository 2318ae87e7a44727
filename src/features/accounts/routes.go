package accounts

import "github.com/gofiber/fiber/v2"

// RegisterRoutes registers the routes for the accounts feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)
	app.Post("/login", handler.Login)
}
