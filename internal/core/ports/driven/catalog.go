package driven

import (
	"context"

	"github.com/researchbot/researchbot/internal/core/domain"
)

// DocumentCatalog persists document metadata rows.
// Backed by SQLite for metadata storage.
type DocumentCatalog interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetDocumentByPath retrieves the document registered under a source
	// path, regardless of lifecycle state.
	GetDocumentByPath(ctx context.Context, path string) (*domain.Document, error)

	// ListDocuments returns every catalog row, including deleted ones.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// CountDocumentsByStatus returns row counts grouped by lifecycle state.
	CountDocumentsByStatus(ctx context.Context) (map[domain.DocumentStatus]int, error)
}

// ReconcileWriter applies the outcome of one reconcile pass.
// All rows are written in a single transaction so a failed pass leaves
// the catalog untouched and the next pass recomputes the same diff.
type ReconcileWriter interface {
	// ApplyReconcile inserts created documents, updates changed ones, and
	// enqueues the jobs produced by a diff, atomically.
	ApplyReconcile(ctx context.Context, created, updated []domain.Document, jobs []domain.IndexJob) error
}
