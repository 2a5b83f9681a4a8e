// Package chunker provides a fixed-size text chunking processor.
package chunker

import (
	"github.com/google/uuid"

	"github.com/researchbot/researchbot/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// MinChunkLength drops trailing fragments too short to embed usefully.
const MinChunkLength = 50

// Processor splits extracted text into fixed-size overlapping chunks.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Split chunks one page of text for a document. Positions continue
// from startPosition so chunks stay ordered across pages. Fragments
// shorter than MinChunkLength are dropped, except when the page fits
// in a single short chunk.
func (p *Processor) Split(documentID, text string, page, startPosition int) []domain.Chunk {
	if text == "" {
		return nil
	}

	textLen := len(text)
	estimatedChunks := (textLen / (p.chunkSize - p.overlap)) + 1
	chunks := make([]domain.Chunk, 0, estimatedChunks)

	position := startPosition
	start := 0

	for start < textLen {
		end := start + p.chunkSize
		if end > textLen {
			end = textLen
		}

		content := text[start:end]
		if len(content) >= MinChunkLength || start == 0 {
			chunks = append(chunks, domain.Chunk{
				ID:         uuid.New().String(),
				DocumentID: documentID,
				Content:    content,
				Position:   position,
				Page:       page,
			})
			position++
		}

		// Move start forward by (chunkSize - overlap)
		start += p.chunkSize - p.overlap

		// Avoid infinite loop for edge cases
		if p.chunkSize <= p.overlap {
			break
		}
	}

	return chunks
}
