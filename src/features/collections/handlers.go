package collections

import (
	"errors"
	"net/url"

	"github.com/contre95/songvault/src/music"
	"github.com/gofiber/fiber/v2"
)

// Handler is the handler for the collections feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the collections feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func statusFromErr(err error) int {
	switch {
	case errors.Is(err, music.ErrAccountNotFound),
		errors.Is(err, music.ErrSongNotFound),
		errors.Is(err, music.ErrCollectionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, music.ErrDuplicateName):
		return fiber.StatusConflict
	default:
		return fiber.StatusBadRequest
	}
}

// paramName decodes the collection name path segment; names may contain
// spaces and other escaped characters.
func paramName(c *fiber.Ctx) string {
	raw := c.Params("name")
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}

// Create adds an empty collection.
func (h *Handler) Create(c *fiber.Ctx) error {
	type createRequest struct {
		Name string `json:"name"`
	}
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cannot parse request body"})
	}
	if err := h.service.Create(c.Context(), c.Params("username"), c.Params("kind"), req.Name); err != nil {
		return c.Status(statusFromErr(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "collection created"})
}

// List returns the account's collections of one kind.
func (h *Handler) List(c *fiber.Ctx) error {
	cols, err := h.service.List(c.Context(), c.Params("username"), c.Params("kind"))
	if err != nil {
		return c.Status(statusFromErr(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"collections": cols, "count": len(cols)})
}

// Songs returns a collection's songs in member order.
func (h *Handler) Songs(c *fiber.Ctx) error {
	songs, err := h.service.Songs(c.Context(), c.Params("username"), c.Params("kind"), paramName(c))
	if err != nil {
		return c.Status(statusFromErr(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"songs": songs, "count": len(songs)})
}

// AddSong places a song into a collection.
func (h *Handler) AddSong(c *fiber.Ctx) error {
	type addRequest struct {
		SongID string `json:"song_id"`
	}
	var req addRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cannot parse request body"})
	}
	if err := h.service.AddSong(c.Context(), c.Params("username"), c.Params("kind"), paramName(c), req.SongID); err != nil {
		return c.Status(statusFromErr(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "song added"})
}
