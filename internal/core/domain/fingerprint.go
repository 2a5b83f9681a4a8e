package domain

import "time"

// Fingerprint identifies the on-disk state of a file at a point in time.
// Two byte-identical files yield the same checksum regardless of path
// or timestamps.
type Fingerprint struct {
	// SourcePath is the absolute path the fingerprint was taken from.
	SourcePath string

	// FileSize is the file size in bytes.
	FileSize int64

	// ModTime is the file's modification time.
	ModTime time.Time

	// Checksum is the SHA-256 hex digest of the file content.
	Checksum string
}

// ContentEquals reports whether the fingerprint matches the content
// identity stored on a document. Modification time is deliberately
// ignored: a touched but unchanged file is not a content change.
func (f Fingerprint) ContentEquals(doc *Document) bool {
	return f.FileSize == doc.FileSize && f.Checksum == doc.Checksum
}
