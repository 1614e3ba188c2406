package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/multiforge/clipforge/internal/jobstore"
)

// JobStatusHandler serves job status polls
type JobStatusHandler struct {
	store jobstore.Store
}

// NewJobStatusHandler creates a new status handler
func NewJobStatusHandler(store jobstore.Store) *JobStatusHandler {
	return &JobStatusHandler{store: store}
}

// Handle returns a snapshot of the job record.
func (h *JobStatusHandler) Handle(c *fiber.Ctx) error {
	job, err := h.store.Get(c.Params("id"))
	if err != nil {
		if errors.Is(err, jobstore.ErrNotFound) {
			return c.Status(404).JSON(fiber.Map{
				"error": "Job not found",
				"code":  "ERR_JOB_NOT_FOUND",
			})
		}
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to load job",
			"code":  "ERR_JOB_LOAD",
		})
	}
	return c.JSON(job)
}
