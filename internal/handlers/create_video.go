package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/multiforge/clipforge/internal/jobstore"
	"github.com/multiforge/clipforge/internal/queue"
	"github.com/multiforge/clipforge/internal/types"
)

// CreateVideoHandler handles text-to-video job submissions
type CreateVideoHandler struct {
	store      jobstore.Store
	workerPool *queue.WorkerPool
}

// NewCreateVideoHandler creates a new submission handler
func NewCreateVideoHandler(store jobstore.Store, workerPool *queue.WorkerPool) *CreateVideoHandler {
	return &CreateVideoHandler{
		store:      store,
		workerPool: workerPool,
	}
}

// Handle validates the request, registers a PENDING job, and enqueues it.
func (h *CreateVideoHandler) Handle(c *fiber.Ctx) error {
	var req types.VideoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
			"code":  "ERR_BAD_REQUEST",
		})
	}

	if req.Topic == "" && req.Script == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "Either topic or script is required",
			"code":  "ERR_MISSING_TOPIC",
		})
	}

	jobID := uuid.New().String()
	job := queue.NewVideoJob(jobID, req)

	if err := h.store.Create(types.Job{
		ID:        jobID,
		Kind:      types.KindGenerate,
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
		"message": "Video generation started",
	})
}
