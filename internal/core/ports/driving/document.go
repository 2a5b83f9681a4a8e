package driving

import (
	"context"

	"github.com/researchbot/researchbot/internal/core/domain"
)

// DocumentManager handles explicit document operations, as opposed to
// changes discovered by reconciliation.
type DocumentManager interface {
	// Upload copies a file into the upload directory, registers it in
	// the catalog, and enqueues an index job.
	Upload(ctx context.Context, sourcePath string) (*domain.Document, error)

	// List returns all non-deleted documents.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// Remove deletes a document's file, marks the record deleted, and
	// enqueues a cleanup job for its collection.
	Remove(ctx context.Context, id string) error
}
