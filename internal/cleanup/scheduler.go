package cleanup

import (
	"log"
	"os"
	"path/filepath"
	"time"
)

// Scheduler periodically reaps stale working files. The pipelines leave
// downloaded sources, extracted audio, and render intermediates behind when
// they fail mid-flight; the scheduler keeps those directories bounded.
type Scheduler struct {
	dirs            []string
	intervalMinutes int
	maxAgeHours     int
	stopChan        chan struct{}
}

// NewScheduler creates a scheduler reaping every listed directory.
func NewScheduler(intervalMinutes, maxAgeHours int, dirs ...string) *Scheduler {
	return &Scheduler{
		dirs:            dirs,
		intervalMinutes: intervalMinutes,
		maxAgeHours:     maxAgeHours,
		stopChan:        make(chan struct{}),
	}
}

// Start runs one immediate sweep, then sweeps on the configured interval.
func (s *Scheduler) Start() {
	log.Println("Running initial working-file cleanup...")
	s.sweep()

	ticker := time.NewTicker(time.Duration(s.intervalMinutes) * time.Minute)

	go func() {
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stopChan:
				ticker.Stop()
				return
			}
		}
	}()

	log.Printf("Cleanup scheduler started (interval: %dm, max age: %dh, dirs: %d)",
		s.intervalMinutes, s.maxAgeHours, len(s.dirs))
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	log.Println("Cleanup scheduler stopped")
}

// sweep removes files older than maxAgeHours from every watched directory.
func (s *Scheduler) sweep() {
	now := time.Now()
	maxAge := time.Duration(s.maxAgeHours) * time.Hour

	var deletedCount int
	var deletedSize int64

	for _, dir := range s.dirs {
		filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil // Skip files we can't access
			}
			if info.IsDir() {
				return nil
			}

			age := now.Sub(info.ModTime())
			if age > maxAge {
				size := info.Size()
				if err := os.Remove(path); err != nil {
					log.Printf("Failed to delete old file %s: %v", path, err)
				} else {
					deletedCount++
					deletedSize += size
					log.Printf("Deleted old working file: %s (age: %s, size: %dKB)",
						filepath.Base(path), age.Round(time.Hour), size/1024)
				}
			}
			return nil
		})
	}

	if deletedCount > 0 {
		log.Printf("Cleanup complete: %d files deleted, %.2fMB freed",
			deletedCount, float64(deletedSize)/(1024*1024))
	}
}

// EnsureDirs creates every working directory up front.
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
