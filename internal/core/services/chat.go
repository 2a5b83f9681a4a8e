package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/researchbot/researchbot/internal/core/domain"
	"github.com/researchbot/researchbot/internal/core/ports/driven"
	"github.com/researchbot/researchbot/internal/core/ports/driving"
	"github.com/researchbot/researchbot/internal/logger"
)

// defaultTopK is how many chunks are retrieved as answer context.
const defaultTopK = 5

// answerSystemPrompt instructs the model to stay grounded in the
// retrieved chunks.
const answerSystemPrompt = "You are a research assistant. Answer the question using only the " +
	"provided document excerpts. If the excerpts do not contain the answer, say you do not know. " +
	"Be concise and cite the excerpt numbers you used."

// Ensure ChatService implements the interface.
var _ driving.QuestionAnswerer = (*ChatService)(nil)

// ChatService answers questions against a single indexed document by
// retrieving relevant chunks and prompting the LLM with them.
type ChatService struct {
	catalog   driven.DocumentCatalog
	processor driven.DocumentProcessor
	llm       driven.LLMService
	topK      int
}

// NewChatService creates a new question answering service.
// llm is optional - when nil, Ask returns domain.ErrLLMUnavailable.
func NewChatService(
	catalog driven.DocumentCatalog,
	processor driven.DocumentProcessor,
	llm driven.LLMService,
) *ChatService {
	return &ChatService{
		catalog:   catalog,
		processor: processor,
		llm:       llm,
		topK:      defaultTopK,
	}
}

// Ask retrieves context from the document's collection and generates a
// grounded answer.
func (s *ChatService) Ask(ctx context.Context, documentID, question string) (*driving.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	doc, err := s.catalog.GetDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}
	if doc.Status != domain.DocumentIndexed || doc.Collection == "" {
		return nil, fmt.Errorf("%w: document %s is %s", domain.ErrNotIndexed, documentID, doc.Status)
	}

	hits, err := s.processor.Search(ctx, doc.Collection, question, s.topK)
	if err != nil {
		return nil, fmt.Errorf("searching collection: %w", err)
	}
	logger.Debug("Retrieved %d chunks from %s for question", len(hits), doc.Collection)

	messages := []driven.ChatMessage{
		{Role: "system", Content: answerSystemPrompt},
		{Role: "user", Content: buildQuestionPrompt(question, hits)},
	}
	text, err := s.llm.Chat(ctx, messages, driven.ChatOptions{Temperature: 0.2})
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	return &driving.Answer{Text: text, Sources: hits}, nil
}

// buildQuestionPrompt numbers the retrieved excerpts and appends the
// question.
func buildQuestionPrompt(question string, hits []domain.ChunkHit) string {
	var b strings.Builder
	b.WriteString("Document excerpts:\n\n")
	for i, hit := range hits {
		fmt.Fprintf(&b, "[%d] %s\n\n", i+1, hit.Chunk.Content)
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}
