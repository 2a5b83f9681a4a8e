// Package processor implements the document processing pipeline that
// turns source files into vector collections, plus a mock variant for
// offline operation.
package processor

import (
	"context"
	"fmt"
	"strings"

	"github.com/researchbot/researchbot/internal/core/domain"
	"github.com/researchbot/researchbot/internal/core/ports/driven"
	"github.com/researchbot/researchbot/internal/logger"
	"github.com/researchbot/researchbot/internal/postprocessors/chunker"
)

// embedBatchSize bounds how many chunks go into one embedding request.
const embedBatchSize = 32

// Ensure Pipeline implements the interface.
var _ driven.DocumentProcessor = (*Pipeline)(nil)

// Pipeline extracts, chunks, embeds, and stores a document. Processing
// replaces the collection wholesale, so reindexing never leaves stale
// chunks behind.
type Pipeline struct {
	extractor driven.TextExtractor
	chunker   *chunker.Processor
	embedder  driven.EmbeddingService
	vectors   driven.VectorStore
}

// NewPipeline creates the real processing pipeline. All stages are
// required; offline deployments use the mock processor instead.
func NewPipeline(
	extractor driven.TextExtractor,
	chunks *chunker.Processor,
	embedder driven.EmbeddingService,
	vectors driven.VectorStore,
) (*Pipeline, error) {
	if extractor == nil {
		return nil, fmt.Errorf("pipeline: text extractor is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("pipeline: embedding service is required")
	}
	if chunks == nil {
		chunks = chunker.New()
	}
	return &Pipeline{
		extractor: extractor,
		chunker:   chunks,
		embedder:  embedder,
		vectors:   vectors,
	}, nil
}

// Process indexes the file at path into the named collection.
func (p *Pipeline) Process(ctx context.Context, path, collection string) (int, error) {
	pages, err := p.extractor.Extract(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("extracting text: %w", err)
	}

	documentID := documentIDFromCollection(collection)
	var chunks []domain.Chunk
	for _, page := range pages {
		chunks = append(chunks, p.chunker.Split(documentID, page.Text, page.Number, len(chunks))...)
	}
	if len(chunks) == 0 {
		return 0, fmt.Errorf("no extractable text in %s", path)
	}
	logger.Debug("Chunked %s into %d chunks across %d pages", path, len(chunks), len(pages))

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		texts := make([]string, 0, end-start)
		for _, chunk := range chunks[start:end] {
			texts = append(texts, chunk.Content)
		}
		embeddings, err := p.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("embedding chunks: %w", err)
		}
		if len(embeddings) != end-start {
			return 0, fmt.Errorf("embedding chunks: got %d embeddings for %d texts", len(embeddings), end-start)
		}
		for i, embedding := range embeddings {
			chunks[start+i].Embedding = embedding
		}
	}

	// Rebuild the collection from scratch.
	if err := p.vectors.DeleteCollection(ctx, collection); err != nil {
		return 0, fmt.Errorf("clearing collection: %w", err)
	}
	if err := p.vectors.EnsureCollection(ctx, collection); err != nil {
		return 0, fmt.Errorf("creating collection: %w", err)
	}
	if err := p.vectors.AddChunks(ctx, collection, chunks); err != nil {
		return 0, fmt.Errorf("storing chunks: %w", err)
	}

	return len(chunks), nil
}

// Cleanup removes the named collection. Idempotent.
func (p *Pipeline) Cleanup(ctx context.Context, collection string) error {
	if err := p.vectors.DeleteCollection(ctx, collection); err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	return nil
}

// Search embeds the query and retrieves the k most similar chunks.
func (p *Pipeline) Search(ctx context.Context, collection, query string, k int) ([]domain.ChunkHit, error) {
	embedding, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	hits, err := p.vectors.Query(ctx, collection, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}
	return hits, nil
}

// documentIDFromCollection recovers the owning document ID from a
// collection name.
func documentIDFromCollection(collection string) string {
	return strings.TrimPrefix(collection, "document_")
}
