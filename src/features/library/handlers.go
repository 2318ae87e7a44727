package library

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/contre95/songvault/src/features/config"
	"github.com/contre95/songvault/src/features/jobs"
	"github.com/contre95/songvault/src/music"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handler is the handler for the library feature.
type Handler struct {
	service *Service
	jobs    *jobs.Service
	config  *config.Manager
}

// NewHandler creates a new handler for the library feature.
func NewHandler(service *Service, jobService *jobs.Service, cfgManager *config.Manager) *Handler {
	return &Handler{service: service, jobs: jobService, config: cfgManager}
}

// statusFromErr maps domain sentinels to HTTP status codes.
func statusFromErr(err error) int {
	switch {
	case errors.Is(err, music.ErrAccountNotFound),
		errors.Is(err, music.ErrSongNotFound),
		errors.Is(err, music.ErrCollectionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, music.ErrNotArtist):
		return fiber.StatusForbidden
	case errors.Is(err, music.ErrDuplicateName):
		return fiber.StatusConflict
	default:
		return fiber.StatusBadRequest
	}
}

// UploadSong stages the uploaded audio and starts a background upload job.
// The response carries the job id; clients poll /jobs/:id for the outcome.
func (h *Handler) UploadSong(c *fiber.Ctx) error {
	username := c.Params("username")
	title := strings.TrimSpace(c.FormValue("title"))
	if title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "song title cannot be empty"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing audio file"})
	}

	stagedPath := filepath.Join(h.config.Get().StagingPath, uuid.New().String()+filepath.Ext(fileHeader.Filename))
	if err := c.SaveFile(fileHeader, stagedPath); err != nil {
		slog.Error("Failed to stage upload", "username", username, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to stage upload"})
	}

	jobID, err := h.jobs.StartJob("song_upload", fmt.Sprintf("Upload %q", title), map[string]any{
		"username": username,
		"title":    title,
		"artist":   strings.TrimSpace(c.FormValue("artist")),
		"path":     stagedPath,
	})
	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"job_id": jobID})
}

// ListSongs returns the account's catalog, filtered when ?q= is present.
func (h *Handler) ListSongs(c *fiber.Ctx) error {
	songs, err := h.service.SearchSongs(c.Context(), c.Params("username"), c.Query("q"))
	if err != nil {
		return c.Status(statusFromErr(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"songs": songs, "count": len(songs)})
}

// GetSong returns the detailed view of one song.
func (h *Handler) GetSong(c *fiber.Ctx) error {
	details, err := h.service.SongDetails(c.Context(), c.Params("username"), c.Params("id"))
	if err != nil {
		return c.Status(statusFromErr(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(details)
}

// GetLyrics returns the stored lyric text as plain text.
func (h *Handler) GetLyrics(c *fiber.Ctx) error {
	lyrics, err := h.service.GetLyrics(c.Context(), c.Params("username"), c.Params("id"))
	if err != nil {
		return c.Status(statusFromErr(err)).JSON(fiber.Map{"error": err.Error()})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(lyrics)
}

// UpdateLyrics overwrites the stored lyric text.
func (h *Handler) UpdateLyrics(c *fiber.Ctx) error {
	type lyricsRequest struct {
		Text string `json:"text"`
	}
	var req lyricsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cannot parse request body"})
	}
	if err := h.service.UpdateLyrics(c.Context(), c.Params("username"), c.Params("id"), req.Text); err != nil {
		return c.Status(statusFromErr(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "lyrics updated"})
}

// UpdateCredit overwrites a song's credit entry.
func (h *Handler) UpdateCredit(c *fiber.Ctx) error {
	type creditRequest struct {
		Artist  string `json:"artist"`
		Credits string `json:"credits"`
	}
	var req creditRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cannot parse request body"})
	}
	if err := h.service.UpdateCredit(c.Context(), c.Params("username"), c.Params("id"), req.Artist, req.Credits); err != nil {
		return c.Status(statusFromErr(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "credit updated"})
}

// StreamAudio serves the stored audio file of a song.
func (h *Handler) StreamAudio(c *fiber.Ctx) error {
	path, err := h.service.AudioPath(c.Context(), c.Params("username"), c.Params("id"))
	if err != nil {
		return c.Status(statusFromErr(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendFile(path)
}
