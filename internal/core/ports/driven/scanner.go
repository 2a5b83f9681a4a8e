package driven

import (
	"context"

	"github.com/researchbot/researchbot/internal/core/domain"
)

// Scanner enumerates ingestable files in the upload directory.
type Scanner interface {
	// Scan fingerprints every matching file and returns them keyed by
	// absolute source path. A missing upload directory is created, not
	// treated as an error.
	Scan(ctx context.Context) (map[string]domain.Fingerprint, error)

	// Fingerprint reads a single file's identity from disk.
	// Returns domain.ErrFileMissing when the file does not exist.
	Fingerprint(ctx context.Context, path string) (domain.Fingerprint, error)
}
