package driven

import (
	"context"

	"github.com/researchbot/researchbot/internal/core/domain"
)

// JobQueue persists index jobs and hands them out in arrival order.
// Backed by the same SQLite database as the catalog so job state and
// document state commit together.
type JobQueue interface {
	// EnqueueJob inserts a queued job.
	EnqueueJob(ctx context.Context, job *domain.IndexJob) error

	// DequeueJobs returns up to limit queued jobs, oldest first.
	// Jobs are not locked or mutated; callers mark them running.
	DequeueJobs(ctx context.Context, limit int) ([]domain.IndexJob, error)

	// MarkJobRunning transitions a job to running and commits immediately,
	// so an interrupted run is visible as running rather than queued.
	MarkJobRunning(ctx context.Context, jobID string) error

	// CompleteJob writes a job's terminal state and the document row it
	// affected in one transaction. doc may be nil when the job failed
	// before resolving its document.
	CompleteJob(ctx context.Context, job *domain.IndexJob, doc *domain.Document) error

	// CountQueuedJobs returns the number of jobs still waiting.
	CountQueuedJobs(ctx context.Context) (int, error)

	// ListJobs returns the most recent jobs, newest first.
	ListJobs(ctx context.Context, limit int) ([]domain.IndexJob, error)
}
