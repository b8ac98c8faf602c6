package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/smartspend/smartspend/internal/jobs"
)

// Store keeps job state in memory, safe for concurrent use. State is lost on
// restart, which is acceptable for recurring fan-out: the scheduler derives
// due work from the database, not from this store.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*jobs.RecurringJob
}

// NewStore creates an empty in-memory job store.
func NewStore() *Store {
	return &Store{jobs: make(map[string]*jobs.RecurringJob)}
}

// SaveJob stores a copy of the job keyed by its id.
func (s *Store) SaveJob(_ context.Context, job *jobs.RecurringJob) error {
	if job.JobID == "" {
		return fmt.Errorf("job id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	jobCopy := *job
	s.jobs[job.JobID] = &jobCopy
	return nil
}

// GetJob returns a copy of the stored job.
func (s *Store) GetJob(_ context.Context, jobID string) (*jobs.RecurringJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}
	jobCopy := *job
	return &jobCopy, nil
}

// ListJobs returns matching jobs, newest first.
func (s *Store) ListJobs(_ context.Context, filter jobs.JobFilter) ([]*jobs.RecurringJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*jobs.RecurringJob
	for _, job := range s.jobs {
		if filter.TransactionID != "" && job.TransactionID != filter.TransactionID {
			continue
		}
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		jobCopy := *job
		out = append(out, &jobCopy)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

var _ jobs.JobStore = (*Store)(nil)
