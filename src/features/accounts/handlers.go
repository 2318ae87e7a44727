package accounts

import (
	"errors"
	"log/slog"

	"github.com/contre95/songvault/src/music"
	"github.com/gofiber/fiber/v2"
)

// Handler is the handler for the accounts feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the accounts feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Login signs an account in, creating it on first sight.
func (h *Handler) Login(c *fiber.Ctx) error {
	type loginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cannot parse request body"})
	}

	acc, err := h.service.Login(c.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, music.ErrWrongPassword) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "incorrect password"})
		}
		slog.Debug("Login failed", "username", req.Username, "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"username": acc.Username,
		"role":     acc.Role,
		"songs":    len(acc.Songs),
	})
}
