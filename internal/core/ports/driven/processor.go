package driven

import (
	"context"

	"github.com/researchbot/researchbot/internal/core/domain"
)

// DocumentProcessor turns a source file into a live vector collection.
// The real implementation extracts, chunks, embeds, and stores; a mock
// implementation produces deterministic chunks for offline operation.
type DocumentProcessor interface {
	// Process indexes the file at path into the named collection,
	// replacing any previous content. Returns the number of chunks
	// written.
	Process(ctx context.Context, path, collection string) (int, error)

	// Cleanup removes the named collection. Idempotent.
	Cleanup(ctx context.Context, collection string) error

	// Search retrieves the k chunks most relevant to query from a
	// collection.
	Search(ctx context.Context, collection, query string, k int) ([]domain.ChunkHit, error)
}
