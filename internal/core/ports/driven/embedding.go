package driven

import "context"

// EmbeddingService generates vector embeddings from text.
// Required by the real processing pipeline; offline deployments use the
// mock processor instead.
//
// Implementations may include:
//   - OpenAI-compatible APIs (Upstage, OpenAI, local inference servers)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request.
	Ping(ctx context.Context) error
}
