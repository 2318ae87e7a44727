// Package ui renders the HTML dashboard.
package ui

import (
	"log/slog"

	"github.com/contre95/songvault/src/features/config"
	"github.com/contre95/songvault/src/music"
	"github.com/gofiber/fiber/v2"
)

// Handler is the handler for the UI feature.
type Handler struct {
	configManager *config.Manager
	store         music.Store
}

// NewHandler creates a new handler for the UI feature.
func NewHandler(configManager *config.Manager, store music.Store) *Handler {
	return &Handler{
		configManager: configManager,
		store:         store,
	}
}

// RenderDashboard renders the accounts overview page.
func (h *Handler) RenderDashboard(c *fiber.Ctx) error {
	slog.Debug("RenderDashboard handler called")
	accounts, err := h.store.Accounts(c.Context())
	if err != nil {
		return err
	}
	songs := 0
	for _, acc := range accounts {
		songs += len(acc.Songs)
	}
	return c.Render("main", fiber.Map{
		"Title":    "Songvault",
		"Accounts": accounts,
		"Songs":    songs,
	})
}
