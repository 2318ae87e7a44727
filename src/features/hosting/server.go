// Package hosting wires the HTTP surface and the Telegram bot.
package hosting

import (
	"fmt"
	"log/slog"

	"github.com/contre95/songvault/src/features/accounts"
	"github.com/contre95/songvault/src/features/collections"
	"github.com/contre95/songvault/src/features/config"
	"github.com/contre95/songvault/src/features/jobs"
	"github.com/contre95/songvault/src/features/library"
	"github.com/contre95/songvault/src/features/metrics"
	"github.com/contre95/songvault/src/features/ui"
	"github.com/contre95/songvault/src/music"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
)

// Server is the HTTP server for the application.
type Server struct {
	app  *fiber.App
	port uint32
}

// NewServer creates a new HTTP server.
func NewServer(cfg *config.Manager, store music.Store, accountsService *accounts.Service, libraryService *library.Service, collectionsService *collections.Service, jobService *jobs.Service) *Server {
	engine := html.New("./views", ".html")
	engine.Debug(cfg.Get().Logger.Level == "debug")

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error("Internal Server Error", "error", err)
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		},
		AppName:               "Songvault",
		DisableStartupMessage: true,
		EnablePrintRoutes:     cfg.Get().Server.PrintRoutes,
		BodyLimit:             500 * 1024 * 1024, // uploads are whole audio files
	})

	app.Use(LogAllRequestsMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	uiHandler := ui.NewHandler(cfg, store)

	accounts.RegisterRoutes(app, accountsService)
	library.RegisterRoutes(app, libraryService, jobService, cfg)
	collections.RegisterRoutes(app, collectionsService)
	jobs.RegisterRoutes(app, jobService)
	ui.RegisterRoutes(app, uiHandler)
	metrics.RegisterRoutes(app)

	return &Server{app: app, port: cfg.Get().Server.Port}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.app.Listen(":" + fmt.Sprint(s.port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
