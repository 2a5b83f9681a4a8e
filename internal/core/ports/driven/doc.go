// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentCatalog: Document metadata persistence
//   - ReconcileWriter: Atomic application of a reconcile pass
//   - JobQueue: Index job persistence and FIFO dispatch
//   - Scanner: Upload directory enumeration and fingerprinting
//   - VectorStore: Per-document vector collections (Chroma)
//   - DocumentProcessor: File-to-collection indexing pipeline
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, similarity
//     retrieval falls back to returning leading chunks.
//   - LLMService: Language model operations. Without it, question answering
//     is disabled while indexing keeps working.
//   - TextExtractor: Only needed by the real processing pipeline; the mock
//     pipeline runs without it.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or postprocessor package
package driven
