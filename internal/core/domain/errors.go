package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrFileMissing indicates a job's source file vanished between
	// enqueue and execution. The job fails; the document does not.
	ErrFileMissing = errors.New("file not found")

	// ErrNotIndexed indicates a question was asked against a document
	// that has no live vector collection yet.
	ErrNotIndexed = errors.New("document not indexed")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service could not
	// be configured. Indexing requires embeddings unless mock mode is on.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
