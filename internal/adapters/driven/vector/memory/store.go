// Package memory provides an in-memory vector store for tests and
// offline operation.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/researchbot/researchbot/internal/core/domain"
	"github.com/researchbot/researchbot/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store keeps collections of chunks in memory and ranks queries by
// cosine similarity.
type Store struct {
	mu          sync.RWMutex
	collections map[string][]domain.Chunk
}

// NewStore creates a new in-memory vector store.
func NewStore() *Store {
	return &Store{collections: make(map[string][]domain.Chunk)}
}

// ListCollections returns the names of all live collections.
func (s *Store) ListCollections(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// EnsureCollection creates a collection if it does not exist.
func (s *Store) EnsureCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; !ok {
		s.collections[name] = nil
	}
	return nil
}

// DeleteCollection removes a collection. Idempotent.
func (s *Store) DeleteCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, name)
	return nil
}

// AddChunks inserts chunks into a collection, creating it if needed.
func (s *Store) AddChunks(_ context.Context, collection string, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection] = append(s.collections[collection], chunks...)
	return nil
}

// Query returns the k chunks closest to the embedding by cosine
// similarity.
func (s *Store) Query(_ context.Context, collection string, embedding []float32, k int) ([]domain.ChunkHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks, ok := s.collections[collection]
	if !ok {
		return nil, domain.ErrNotFound
	}

	hits := make([]domain.ChunkHit, 0, len(chunks))
	for _, chunk := range chunks {
		hits = append(hits, domain.ChunkHit{
			Chunk:     chunk,
			Relevance: cosineSimilarity(embedding, chunk.Embedding),
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Relevance > hits[j].Relevance })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// cosineSimilarity returns the cosine of the angle between two vectors,
// mapped into [0, 1]. Mismatched or zero vectors score zero.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return (dot/(math.Sqrt(normA)*math.Sqrt(normB)) + 1) / 2
}
