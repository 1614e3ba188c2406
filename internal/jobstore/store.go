package jobstore

import (
	"errors"
	"sync"

	"github.com/multiforge/clipforge/internal/types"
)

// ErrNotFound is returned when a job ID is unknown.
var ErrNotFound = errors.New("job not found")

// Store tracks job records by ID. The worker executing a job is the sole
// writer of that job's record; status readers get copies.
type Store interface {
	Create(job types.Job) error
	Get(id string) (types.Job, error)
	Update(id string, fn func(job *types.Job)) error
}

// MemoryStore is the in-process Store backing a single server instance.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*types.Job
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs: make(map[string]*types.Job),
	}
}

// Create registers a new job record.
func (s *MemoryStore) Create(job types.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return errors.New("job already exists: " + job.ID)
	}
	j := job
	s.jobs[job.ID] = &j
	return nil
}

// Get returns a snapshot of a job record.
func (s *MemoryStore) Get(id string) (types.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return types.Job{}, ErrNotFound
	}
	return snapshot(j), nil
}

// Update applies fn to the stored job under the write lock. Terminal jobs
// are immutable.
func (s *MemoryStore) Update(id string, fn func(job *types.Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if j.Status == types.StatusCompleted || j.Status == types.StatusFailed {
		return errors.New("job is terminal: " + id)
	}
	fn(j)
	return nil
}

// snapshot copies the record so readers never alias worker-owned slices.
func snapshot(j *types.Job) types.Job {
	out := *j
	out.Logs = append([]string(nil), j.Logs...)
	out.Clips = append([]types.Clip(nil), j.Clips...)
	return out
}
