package handlers

import (
	"log"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/multiforge/clipforge/internal/jobstore"
	"github.com/multiforge/clipforge/internal/types"
)

// ProgressStreamHandler pushes job progress over WebSocket so clients do not
// have to poll the status endpoint.
type ProgressStreamHandler struct {
	store    jobstore.Store
	interval time.Duration
}

// NewProgressStreamHandler creates a new progress stream handler.
func NewProgressStreamHandler(store jobstore.Store) *ProgressStreamHandler {
	return &ProgressStreamHandler{
		store:    store,
		interval: time.Second,
	}
}

// Handle streams job snapshots until the job reaches a terminal status or the
// client disconnects. A final frame always carries the terminal record.
func (h *ProgressStreamHandler) Handle(c *websocket.Conn) {
	defer c.Close()

	jobID := c.Params("id")
	log.Printf("WebSocket progress stream opened: %s", jobID)

	var lastProgress = -1
	var lastStatus string

	for {
		job, err := h.store.Get(jobID)
		if err != nil {
			c.WriteJSON(map[string]string{
				"error": "Job not found",
				"code":  "ERR_JOB_NOT_FOUND",
			})
			return
		}

		// Only push when something moved; always push terminal frames.
		terminal := job.Status == types.StatusCompleted || job.Status == types.StatusFailed
		if terminal || job.Progress != lastProgress || job.Status != lastStatus {
			if err := c.WriteJSON(job); err != nil {
				log.Printf("WebSocket write error for %s: %v", jobID, err)
				return
			}
			lastProgress = job.Progress
			lastStatus = job.Status
		}

		if terminal {
			log.Printf("WebSocket progress stream closed: %s (%s)", jobID, job.Status)
			return
		}
		time.Sleep(h.interval)
	}
}
