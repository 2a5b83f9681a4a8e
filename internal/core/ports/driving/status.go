package driving

import (
	"context"

	"github.com/researchbot/researchbot/internal/core/domain"
)

// StatusReporter surfaces catalog and queue state for operators.
type StatusReporter interface {
	// Status returns current document and job counts.
	Status(ctx context.Context) (*SystemStatus, error)
}

// SystemStatus is a snapshot of catalog and queue state.
type SystemStatus struct {
	// Documents holds row counts per lifecycle state.
	Documents map[domain.DocumentStatus]int

	// QueuedJobs is the number of jobs waiting for a worker.
	QueuedJobs int

	// RecentJobs are the most recently created jobs, newest first.
	RecentJobs []domain.IndexJob
}
