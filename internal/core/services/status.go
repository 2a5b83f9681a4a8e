package services

import (
	"context"
	"fmt"

	"github.com/researchbot/researchbot/internal/core/ports/driven"
	"github.com/researchbot/researchbot/internal/core/ports/driving"
)

// recentJobLimit bounds the job history shown in status output.
const recentJobLimit = 10

// Ensure StatusService implements the interface.
var _ driving.StatusReporter = (*StatusService)(nil)

// StatusService reports catalog and queue state.
type StatusService struct {
	catalog driven.DocumentCatalog
	queue   driven.JobQueue
}

// NewStatusService creates a new status reporter.
func NewStatusService(catalog driven.DocumentCatalog, queue driven.JobQueue) *StatusService {
	return &StatusService{catalog: catalog, queue: queue}
}

// Status returns current document and job counts.
func (s *StatusService) Status(ctx context.Context) (*driving.SystemStatus, error) {
	counts, err := s.catalog.CountDocumentsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}

	queued, err := s.queue.CountQueuedJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting queued jobs: %w", err)
	}

	recent, err := s.queue.ListJobs(ctx, recentJobLimit)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}

	return &driving.SystemStatus{
		Documents:  counts,
		QueuedJobs: queued,
		RecentJobs: recent,
	}, nil
}
