package queue

import (
	"testing"
	"time"

	"github.com/multiforge/clipforge/internal/jobstore"
	"github.com/multiforge/clipforge/internal/pipeline"
	"github.com/multiforge/clipforge/internal/repurpose"
	"github.com/multiforge/clipforge/internal/storage"
	"github.com/multiforge/clipforge/internal/types"
)

func waitTerminal(t *testing.T, store jobstore.Store, id string) types.Job {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.Get(id)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if job.Status == types.StatusCompleted || job.Status == types.StatusFailed {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s never reached a terminal status", id)
	return types.Job{}
}

// TestWorkerCompletesGenerationJob runs a mock-mode generation job through
// the pool and checks the terminal record.
func TestWorkerCompletesGenerationJob(t *testing.T) {
	store := jobstore.NewMemoryStore()
	generation := pipeline.NewOrchestrator(nil, nil, nil, nil, nil, nil, nil, true)
	pool := NewWorkerPool(1, store, generation, nil,
		storage.NewLocalStorage(t.TempDir(), "http://localhost/static"))
	pool.Start()

	job := NewVideoJob("job-1", types.VideoRequest{Topic: "testing"})
	store.Create(types.Job{ID: job.ID, Kind: job.Kind, Status: types.StatusPending})
	pool.Enqueue(job)

	final := waitTerminal(t, store, "job-1")
	if final.Status != types.StatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", final.Status)
	}
	if final.Progress != 100 {
		t.Fatalf("progress = %d, want 100", final.Progress)
	}
	if final.ResultVideoURL != pipeline.PlaceholderVideoURL {
		t.Fatalf("url = %q", final.ResultVideoURL)
	}
	if final.ScriptText == "" {
		t.Fatal("script text not recorded")
	}
}

// TestWorkerSurvivesPanickingJob verifies a panicking job is marked FAILED
// and the worker keeps serving the queue.
func TestWorkerSurvivesPanickingJob(t *testing.T) {
	store := jobstore.NewMemoryStore()
	generation := pipeline.NewOrchestrator(nil, nil, nil, nil, nil, nil, nil, true)
	// A repurposing orchestrator with no collaborators panics on use.
	broken := repurpose.NewOrchestrator(nil, nil, nil, nil)
	pool := NewWorkerPool(1, store, generation, broken,
		storage.NewLocalStorage(t.TempDir(), "http://localhost/static"))
	pool.Start()

	bad := NewRepurposeJob("job-bad", types.RepurposeRequest{URL: "https://example.com/v"})
	store.Create(types.Job{ID: bad.ID, Kind: bad.Kind, Status: types.StatusPending})
	pool.Enqueue(bad)

	final := waitTerminal(t, store, "job-bad")
	if final.Status != types.StatusFailed {
		t.Fatalf("status = %s, want FAILED", final.Status)
	}

	// Same worker must still process the next job.
	good := NewVideoJob("job-good", types.VideoRequest{Topic: "next"})
	store.Create(types.Job{ID: good.ID, Kind: good.Kind, Status: types.StatusPending})
	pool.Enqueue(good)

	if final := waitTerminal(t, store, "job-good"); final.Status != types.StatusCompleted {
		t.Fatalf("follow-up status = %s, want COMPLETED", final.Status)
	}
}
