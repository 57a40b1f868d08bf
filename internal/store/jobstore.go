// Package store holds the process-wide job registry. Any front end can
// look up any job's current state by id; each job record is mutated by a
// single worker goroutine while polls read concurrently.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lexsightllc/video-transcriber-app/internal/model"
)

// ErrNotFound is returned when a job id is unknown or already evicted.
var ErrNotFound = errors.New("job not found")

// JobStore is a concurrency-safe in-memory registry of jobs. Terminal
// jobs are retained for a configured window so late polls still see the
// outcome, then evicted by the janitor.
type JobStore struct {
	mu        sync.RWMutex
	jobs      map[string]*model.Job
	retention time.Duration
}

// NewJobStore creates an empty registry with the given retention window
// for terminal jobs.
func NewJobStore(retention time.Duration) *JobStore {
	return &JobStore{
		jobs:      make(map[string]*model.Job),
		retention: retention,
	}
}

// Create registers a new job. The id must be unused.
func (s *JobStore) Create(job *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return fmt.Errorf("job %s already exists", job.ID)
	}
	s.jobs[job.ID] = job.Clone()
	return nil
}

// Get returns a snapshot of a job.
func (s *JobStore) Get(id string) (*model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return job.Clone(), nil
}

// Update applies fn to the stored record under the write lock and
// returns the resulting snapshot. fn must not block.
func (s *JobStore) Update(id string, fn func(*model.Job)) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	fn(job)
	return job.Clone(), nil
}

// Delete removes a job from the registry.
func (s *JobStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
}

// Len reports the number of registered jobs.
func (s *JobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Sweep evicts terminal jobs whose completion is older than the
// retention window and returns snapshots of the evicted jobs so the
// caller can remove their result files.
func (s *JobStore) Sweep(now time.Time) []*model.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted []*model.Job
	for id, job := range s.jobs {
		if !job.Status.IsTerminal() || job.CompletedAt == nil {
			continue
		}
		if now.Sub(*job.CompletedAt) >= s.retention {
			evicted = append(evicted, job.Clone())
			delete(s.jobs, id)
		}
	}
	return evicted
}

// RunJanitor sweeps on the given interval until ctx is cancelled,
// invoking onEvict for every removed job.
func (s *JobStore) RunJanitor(ctx context.Context, interval time.Duration, onEvict func(*model.Job)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for _, job := range s.Sweep(now) {
				if onEvict != nil {
					onEvict(job)
				}
			}
		}
	}
}
