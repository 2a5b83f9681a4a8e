// Package domain defines the core business entities for ResearchBot.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A tracked source file and its lifecycle status
//   - IndexJob: One queued unit of indexing work against a document
//   - Fingerprint: The on-disk identity of a file (size, mtime, checksum)
//   - Chunk: A searchable unit produced by the processing pipeline
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
