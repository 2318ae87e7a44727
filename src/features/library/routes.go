package library

import (
	"github.com/contre95/songvault/src/features/config"
	"github.com/contre95/songvault/src/features/jobs"
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the library feature.
func RegisterRoutes(app *fiber.App, service *Service, jobService *jobs.Service, cfgManager *config.Manager) {
	handler := NewHandler(service, jobService, cfgManager)
	group := app.Group("/accounts/:username/songs")
	group.Post("/", handler.UploadSong)
	group.Get("/", handler.ListSongs)
	group.Get("/:id", handler.GetSong)
	group.Get("/:id/lyrics", handler.GetLyrics)
	group.Put("/:id/lyrics", handler.UpdateLyrics)
	group.Put("/:id/credit", handler.UpdateCredit)
	group.Get("/:id/audio", handler.StreamAudio)
}
