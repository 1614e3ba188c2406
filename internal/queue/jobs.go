package queue

import (
	"time"

	"github.com/multiforge/clipforge/internal/types"
)

// Job is one queued unit of work: either a generation request or a
// repurposing request, by Kind.
type Job struct {
	ID        string
	Kind      string
	Video     types.VideoRequest
	Repurpose types.RepurposeRequest
	CreatedAt time.Time
}

// NewVideoJob creates a generation job.
func NewVideoJob(id string, req types.VideoRequest) *Job {
	return &Job{
		ID:        id,
		Kind:      types.KindGenerate,
		Video:     req,
		CreatedAt: time.Now(),
	}
}

// NewRepurposeJob creates a repurposing job.
func NewRepurposeJob(id string, req types.RepurposeRequest) *Job {
	return &Job{
		ID:        id,
		Kind:      types.KindRepurpose,
		Repurpose: req,
		CreatedAt: time.Now(),
	}
}
