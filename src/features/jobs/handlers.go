package jobs

import (
	"fmt"
	"os"
	"sort"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

// JobResponse is a wrapper for the Job struct to include API links.
type JobResponse struct {
	*Job
	Links map[string]string `json:"_links"`
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) HandleJobStatus(c *fiber.Ctx) error {
	jobID := c.Params("id")
	job, exists := h.service.GetJob(jobID)
	if !exists {
		return c.Status(fiber.StatusNotFound).SendString("Job not found")
	}

	baseURL := c.BaseURL()
	response := &JobResponse{
		Job: job,
		Links: map[string]string{
			"self": fmt.Sprintf("%s/jobs/%s", baseURL, job.ID),
			"logs": fmt.Sprintf("%s/jobs/%s/logs", baseURL, job.ID),
		},
	}
	return c.JSON(response)
}

func (h *Handler) HandleJobList(c *fiber.Ctx) error {
	jobs := h.service.GetJobs()
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return c.JSON(fiber.Map{"jobs": jobs})
}

func (h *Handler) HandleJobLogs(c *fiber.Ctx) error {
	jobID := c.Params("id")
	job, exists := h.service.GetJob(jobID)
	if !exists {
		return c.Status(fiber.StatusNotFound).SendString("Job not found")
	}
	if job.LogPath == "" {
		return c.Status(fiber.StatusNotFound).SendString("Job logging is disabled")
	}
	logs, err := os.ReadFile(job.LogPath)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to read job logs")
	}
	return c.SendString(string(logs))
}

func (h *Handler) HandleCancelJob(c *fiber.Ctx) error {
	jobID := c.Params("id")
	if err := h.service.CancelJob(jobID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "cancelled"})
}
