package driving

import (
	"context"

	"github.com/researchbot/researchbot/internal/core/domain"
)

// Reconciler aligns the document catalog with the upload directory and
// the live vector collections.
type Reconciler interface {
	// Reconcile runs one full diff pass and returns its summary.
	// Running it twice in a row without external changes enqueues
	// nothing the second time.
	Reconcile(ctx context.Context) (*domain.ReconcileSummary, error)
}
