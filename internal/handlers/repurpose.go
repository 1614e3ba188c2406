package handlers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/multiforge/clipforge/internal/jobstore"
	"github.com/multiforge/clipforge/internal/queue"
	"github.com/multiforge/clipforge/internal/types"
)

// RepurposeHandler handles long-form repurposing submissions
type RepurposeHandler struct {
	store      jobstore.Store
	workerPool *queue.WorkerPool
}

// NewRepurposeHandler creates a new repurposing handler
func NewRepurposeHandler(store jobstore.Store, workerPool *queue.WorkerPool) *RepurposeHandler {
	return &RepurposeHandler{
		store:      store,
		workerPool: workerPool,
	}
}

// Handle validates the source URL, registers a PENDING job, and enqueues it.
func (h *RepurposeHandler) Handle(c *fiber.Ctx) error {
	var req types.RepurposeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
			"code":  "ERR_BAD_REQUEST",
		})
	}

	if !strings.HasPrefix(req.URL, "http://") && !strings.HasPrefix(req.URL, "https://") {
		return c.Status(400).JSON(fiber.Map{
			"error": "A valid source video URL is required",
			"code":  "ERR_INVALID_URL",
		})
	}

	switch req.Format {
	case "", types.FormatVertical, types.FormatSquare, types.FormatHorizontal:
	default:
		return c.Status(400).JSON(fiber.Map{
			"error": "Unknown format (expected vertical, square, or horizontal)",
			"code":  "ERR_INVALID_FORMAT",
		})
	}

	jobID := uuid.New().String()
	job := queue.NewRepurposeJob(jobID, req)

	if err := h.store.Create(types.Job{
		ID:        jobID,
		Kind:      types.KindRepurpose,
		Status:    types.StatusPending,
		CreatedAt: job.CreatedAt,
	}); err != nil {
		log.Printf("Failed to register job %s: %v", jobID, err)
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to register job",
			"code":  "ERR_JOB_CREATE",
		})
	}

	h.workerPool.Enqueue(job)

	return c.JSON(fiber.Map{
		"job_id":  jobID,
		"status":  types.StatusPending,
		"message": "Repurposing started",
	})
}
