package queue

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"

	"github.com/multiforge/clipforge/internal/jobstore"
	"github.com/multiforge/clipforge/internal/pipeline"
	"github.com/multiforge/clipforge/internal/repurpose"
	"github.com/multiforge/clipforge/internal/storage"
	"github.com/multiforge/clipforge/internal/types"
)

// WorkerPool runs a fixed set of workers draining the job queue. Each worker
// executes one job at a time and is the sole writer of that job's record.
type WorkerPool struct {
	jobQueue    chan *Job
	workerCount int
	store       jobstore.Store
	generation  *pipeline.Orchestrator
	repurposing *repurpose.Orchestrator
	artifacts   *storage.LocalStorage
}

// NewWorkerPool creates a worker pool over the given job store and pipelines.
func NewWorkerPool(
	workerCount int,
	store jobstore.Store,
	generation *pipeline.Orchestrator,
	repurposing *repurpose.Orchestrator,
	artifacts *storage.LocalStorage,
) *WorkerPool {
	return &WorkerPool{
		jobQueue:    make(chan *Job, 100), // Buffer of 100 jobs
		workerCount: workerCount,
		store:       store,
		generation:  generation,
		repurposing: repurposing,
		artifacts:   artifacts,
	}
}

// Start launches all workers.
func (wp *WorkerPool) Start() {
	log.Printf("Starting worker pool with %d workers", wp.workerCount)
	for i := 0; i < wp.workerCount; i++ {
		go wp.worker(i)
	}
}

// Enqueue adds a job to the queue.
func (wp *WorkerPool) Enqueue(job *Job) {
	wp.jobQueue <- job
	log.Printf("Job %s enqueued (kind: %s)", job.ID, job.Kind)
}

// worker processes jobs from the queue with panic recovery.
func (wp *WorkerPool) worker(id int) {
	log.Printf("Worker %d started", id)

	for job := range wp.jobQueue {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("Worker %d: PANIC processing job %s: %v\n%s",
						id, job.ID, r, string(debug.Stack()))
					wp.store.Update(job.ID, func(j *types.Job) {
						j.Status = types.StatusFailed
						j.Logs = append(j.Logs, fmt.Sprintf("Worker panic: %v", r))
					})
				}
			}()

			wp.processJob(id, job)
		}()
	}
}

// processJob dispatches one job to its pipeline and records the outcome.
func (wp *WorkerPool) processJob(workerID int, job *Job) {
	log.Printf("Worker %d: Processing job %s (%s)", workerID, job.ID, job.Kind)

	if err := wp.store.Update(job.ID, func(j *types.Job) {
		j.Status = types.StatusProcessing
		j.CurrentStep = "Starting"
	}); err != nil {
		log.Printf("Worker %d: Job %s not startable: %v", workerID, job.ID, err)
		return
	}

	progress := func(progress int, step string, logs []string) {
		wp.store.Update(job.ID, func(j *types.Job) {
			// Progress is monotonic; stale callbacks cannot move it back.
			if progress > j.Progress {
				j.Progress = progress
			}
			j.CurrentStep = step
			j.Logs = append([]string(nil), logs...)
		})
	}

	switch job.Kind {
	case types.KindRepurpose:
		wp.runRepurpose(workerID, job, progress)
	default:
		wp.runGeneration(workerID, job, progress)
	}
}

// runGeneration executes the text-to-video pipeline.
func (wp *WorkerPool) runGeneration(workerID int, job *Job, progress pipeline.ProgressFunc) {
	result := wp.generation.Run(context.Background(), job.ID, job.Video, progress)

	wp.store.Update(job.ID, func(j *types.Job) {
		j.Status = result.Status
		j.Logs = append([]string(nil), result.Logs...)
		j.ScriptText = result.Script
		if result.Status == types.StatusCompleted {
			j.Progress = 100
			j.CurrentStep = "Done"
			j.ResultVideoURL = result.VideoURL
		} else {
			j.CurrentStep = "Failed"
		}
	})
	log.Printf("Worker %d: Job %s finished with status %s", workerID, job.ID, result.Status)
}

// runRepurpose executes the long-form repurposing pipeline and publishes the
// extracted clips so their URLs resolve through the static mount.
func (wp *WorkerPool) runRepurpose(workerID int, job *Job, progress repurpose.ProgressFunc) {
	result := wp.repurposing.Run(context.Background(), job.Repurpose, progress)

	clips := result.Clips
	for i := range clips {
		name := fmt.Sprintf("%s_%s", job.ID, clips[i].Filename)
		url, err := wp.artifacts.PublishAs(clips[i].Path, name)
		if err != nil {
			log.Printf("Worker %d: publishing clip %s failed: %v", workerID, clips[i].Filename, err)
			continue
		}
		clips[i].Path = url
		clips[i].Filename = name
	}

	wp.store.Update(job.ID, func(j *types.Job) {
		j.Logs = append([]string(nil), result.Logs...)
		if result.Success {
			j.Status = types.StatusCompleted
			j.Progress = 100
			j.CurrentStep = "Done"
			j.Clips = clips
			j.SourceTitle = result.Title
			j.SourceDuration = result.Duration
		} else {
			j.Status = types.StatusFailed
			j.CurrentStep = "Failed"
		}
	})
	log.Printf("Worker %d: Job %s finished (success=%v, clips=%d)",
		workerID, job.ID, result.Success, len(result.Clips))
}
