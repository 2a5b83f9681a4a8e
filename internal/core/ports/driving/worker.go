package driving

import (
	"context"

	"github.com/researchbot/researchbot/internal/core/domain"
)

// IndexWorker executes queued index jobs.
type IndexWorker interface {
	// ProcessJobs executes up to limit queued jobs, oldest first, and
	// reports the outcome. Zero means the default batch size; any other
	// limit outside [1, 100] returns domain.ErrInvalidInput.
	ProcessJobs(ctx context.Context, limit int) (*domain.WorkerReport, error)
}
