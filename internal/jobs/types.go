// Package jobs defines the queue abstraction the scheduler fans recurring
// work out on. The interfaces keep the scheduler independent of the queue
// implementation; the in-memory queue under inmemory/ covers single-instance
// deployments and tests.
package jobs

import (
	"context"
	"time"
)

// JobType identifies the kind of work a job carries.
type JobType string

const (
	// JobTypeProcessRecurring materializes one due recurring transaction.
	JobTypeProcessRecurring JobType = "process_recurring"
)

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// RecurringJob asks a worker to materialize one occurrence of a recurring
// transaction template.
type RecurringJob struct {
	JobID string `json:"job_id"`

	// TransactionID is the recurring template row to process.
	TransactionID string `json:"transaction_id"`
	UserID        string `json:"user_id"`
	AccountID     string `json:"account_id"`

	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
	RetryCount  int        `json:"retry_count"`
	MaxRetries  int        `json:"max_retries"`
}

// Job is the generic view the queue machinery needs.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

func (j *RecurringJob) GetID() string        { return j.JobID }
func (j *RecurringJob) GetType() JobType     { return JobTypeProcessRecurring }
func (j *RecurringJob) GetStatus() JobStatus { return j.Status }

// Publisher enqueues jobs.
type Publisher interface {
	PublishRecurring(ctx context.Context, job *RecurringJob) error
	Close() error
}

// Consumer pulls jobs off the queue and hands them to a handler.
type Consumer interface {
	// Start begins consuming; the handler runs concurrently per job.
	Start(ctx context.Context, handler JobHandler) error
	// Stop drains in-flight jobs before returning.
	Stop(ctx context.Context) error
}

// JobHandler processes one job. A returned error triggers a retry until the
// job's retry budget is exhausted.
type JobHandler func(ctx context.Context, job Job) error

// JobStore tracks job state so runs can be inspected after the fact.
type JobStore interface {
	SaveJob(ctx context.Context, job *RecurringJob) error
	GetJob(ctx context.Context, jobID string) (*RecurringJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*RecurringJob, error)
}

// JobFilter narrows ListJobs results.
type JobFilter struct {
	TransactionID string
	Status        JobStatus
	Limit         int
}
