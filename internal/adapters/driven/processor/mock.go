package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/researchbot/researchbot/internal/core/domain"
	"github.com/researchbot/researchbot/internal/core/ports/driven"
	"github.com/researchbot/researchbot/internal/postprocessors/chunker"
)

// Ensure Mock implements the interfaces.
var (
	_ driven.DocumentProcessor = (*Mock)(nil)
	_ driven.CollectionLister  = (*Mock)(nil)
)

// Mock is a deterministic processor for offline operation and testing.
// It chunks real text files directly and synthesises content for
// binary formats, keeping everything in memory with no external
// services.
type Mock struct {
	chunker *chunker.Processor

	mu          sync.RWMutex
	collections map[string][]domain.Chunk
}

// NewMock creates a new mock processor.
func NewMock() *Mock {
	return &Mock{
		chunker:     chunker.New(),
		collections: make(map[string][]domain.Chunk),
	}
}

// Process chunks the file into an in-memory collection.
func (m *Mock) Process(_ context.Context, path, collection string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading file: %w", err)
	}

	text := string(data)
	if !utf8.ValidString(text) {
		// Binary formats get placeholder content so the indexing flow
		// still exercises chunking and retrieval.
		name := filepath.Base(path)
		text = strings.Repeat(fmt.Sprintf("Mock extracted content from %s. ", name), 20)
	}

	chunks := m.chunker.Split(documentIDFromCollection(collection), text, 1, 0)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("no extractable text in %s", path)
	}

	m.mu.Lock()
	m.collections[collection] = chunks
	m.mu.Unlock()
	return len(chunks), nil
}

// ListCollections returns the names of live in-memory collections,
// sorted. Lets the reconciler detect drift in mock deployments.
func (m *Mock) ListCollections(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.collections))
	for name := range m.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Cleanup removes the named collection. Idempotent.
func (m *Mock) Cleanup(_ context.Context, collection string) error {
	m.mu.Lock()
	delete(m.collections, collection)
	m.mu.Unlock()
	return nil
}

// Search returns the leading chunks of the collection with descending
// placeholder relevance.
func (m *Mock) Search(_ context.Context, collection, _ string, k int) ([]domain.ChunkHit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	chunks, ok := m.collections[collection]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if len(chunks) > k {
		chunks = chunks[:k]
	}

	hits := make([]domain.ChunkHit, len(chunks))
	for i, chunk := range chunks {
		hits[i] = domain.ChunkHit{
			Chunk:     chunk,
			Relevance: 1.0 - float64(i)*0.1,
		}
	}
	return hits, nil
}
