package driven

import (
	"context"

	"github.com/researchbot/researchbot/internal/core/domain"
)

// CollectionLister reports which vector collections are live. The
// reconciler uses it to detect index drift without needing the full
// vector store surface.
type CollectionLister interface {
	// ListCollections returns the names of all live collections.
	ListCollections(ctx context.Context) ([]string, error)
}

// VectorStore manages per-document vector collections.
// Backed by Chroma; each indexed document owns exactly one collection.
type VectorStore interface {
	CollectionLister

	// EnsureCollection creates a collection if it does not exist.
	EnsureCollection(ctx context.Context, name string) error

	// DeleteCollection removes a collection and its vectors.
	// Deleting an absent collection is not an error.
	DeleteCollection(ctx context.Context, name string) error

	// AddChunks inserts chunks with their embeddings into a collection.
	AddChunks(ctx context.Context, collection string, chunks []domain.Chunk) error

	// Query finds the k most similar chunks to the query embedding.
	Query(ctx context.Context, collection string, embedding []float32, k int) ([]domain.ChunkHit, error)
}
