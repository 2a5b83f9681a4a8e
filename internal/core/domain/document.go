package domain

import "time"

// DocumentStatus is the lifecycle state of a tracked document.
// The catalog enforces the same set with a check constraint.
type DocumentStatus string

// Document lifecycle states.
const (
	// DocumentPending means the document is known but not yet indexed.
	DocumentPending DocumentStatus = "pending"

	// DocumentIndexing means an index job is executing for the document.
	DocumentIndexing DocumentStatus = "indexing"

	// DocumentIndexed means the document has a live vector collection.
	DocumentIndexed DocumentStatus = "indexed"

	// DocumentReindexing means the content changed and a reindex is queued
	// or executing.
	DocumentReindexing DocumentStatus = "reindexing"

	// DocumentFailed means the last job for the document failed.
	// A later reconciliation pass re-queues failed documents whose
	// source file still exists.
	DocumentFailed DocumentStatus = "failed"

	// DocumentDeleted means the source file is gone or the document was
	// removed explicitly.
	DocumentDeleted DocumentStatus = "deleted"
)

// Valid reports whether s is one of the defined lifecycle states.
func (s DocumentStatus) Valid() bool {
	switch s {
	case DocumentPending, DocumentIndexing, DocumentIndexed,
		DocumentReindexing, DocumentFailed, DocumentDeleted:
		return true
	}
	return false
}

// Document represents one logical source file tracked by the catalog.
// The catalog holds at most one non-deleted document per source path.
type Document struct {
	// ID is the stable document identity, derived deterministically
	// from the source path (UUIDv5 in the URL namespace).
	ID string

	// SourcePath is the absolute path of the backing file. It is the
	// natural key for reconciliation.
	SourcePath string

	// FileSize is the size of the backing file in bytes.
	FileSize int64

	// ModTime is the backing file's modification time. Informational
	// only: content change is decided by size and checksum.
	ModTime time.Time

	// Checksum is the SHA-256 hex digest of the file content.
	Checksum string

	// Status is the lifecycle state.
	Status DocumentStatus

	// Collection is the vector collection holding the document's
	// embedded chunks. Empty until the first successful index.
	Collection string

	// Version starts at 1 when the document is cataloged and increments
	// on every successful (re)index.
	Version int

	// CreatedAt is when the catalog first recorded the document.
	CreatedAt time.Time

	// UpdatedAt is when the catalog row last changed.
	UpdatedAt time.Time
}

// Chunk is a searchable unit produced by splitting an extracted document.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the owning document's stable identity.
	DocumentID string

	// Content is the chunk text.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Page is the source page number, when known.
	Page int

	// Embedding is the vector representation for similarity search.
	Embedding []float32
}

// ChunkHit is a retrieved chunk with its relevance to a query.
type ChunkHit struct {
	Chunk Chunk

	// Relevance is a similarity score in [0, 1], higher is closer.
	Relevance float64
}
