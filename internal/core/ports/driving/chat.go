package driving

import (
	"context"

	"github.com/researchbot/researchbot/internal/core/domain"
)

// QuestionAnswerer answers questions against an indexed document.
type QuestionAnswerer interface {
	// Ask retrieves relevant chunks from the document's collection and
	// generates an answer grounded in them.
	Ask(ctx context.Context, documentID, question string) (*Answer, error)
}

// Answer is a generated response with its supporting context.
type Answer struct {
	// Text is the generated answer.
	Text string

	// Sources are the chunks the answer was grounded in, most relevant
	// first.
	Sources []domain.ChunkHit
}
