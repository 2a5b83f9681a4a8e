package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/researchbot/researchbot/internal/core/domain"
	"github.com/researchbot/researchbot/internal/core/ports/driven"
	"github.com/researchbot/researchbot/internal/core/ports/driving"
	"github.com/researchbot/researchbot/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentManager = (*DocumentService)(nil)

// DocumentService handles explicit uploads and removals. Both paths
// produce the same catalog rows and jobs a reconcile pass would, so an
// upload followed by a reconcile enqueues nothing extra.
type DocumentService struct {
	uploadDir string
	scanner   driven.Scanner
	catalog   driven.DocumentCatalog
	writer    driven.ReconcileWriter
}

// NewDocumentService creates a new document manager writing into
// uploadDir.
func NewDocumentService(
	uploadDir string,
	scanner driven.Scanner,
	catalog driven.DocumentCatalog,
	writer driven.ReconcileWriter,
) *DocumentService {
	return &DocumentService{
		uploadDir: uploadDir,
		scanner:   scanner,
		catalog:   catalog,
		writer:    writer,
	}
}

// Upload copies a file into the upload directory and registers it.
// Content already cataloged under any non-deleted document, same name
// or not, returns domain.ErrAlreadyExists; re-uploading changed content
// queues a reindex.
func (s *DocumentService) Upload(ctx context.Context, sourcePath string) (*domain.Document, error) {
	if filepath.Ext(sourcePath) == "" {
		return nil, fmt.Errorf("%w: file has no extension", domain.ErrInvalidInput)
	}

	dest, copied, err := s.copyIntoUploads(sourcePath)
	if err != nil {
		return nil, err
	}

	fp, err := s.scanner.Fingerprint(ctx, dest)
	if err != nil {
		return nil, fmt.Errorf("fingerprinting upload: %w", err)
	}

	dup, err := s.findContentDuplicate(ctx, fp, dest)
	if err != nil {
		return nil, err
	}
	if dup != nil {
		if copied {
			// A rejected copy must not linger, or the next reconcile
			// pass would catalog it anyway.
			_ = os.Remove(dest)
		}
		return dup, fmt.Errorf("%w: content matches document %s (%s)",
			domain.ErrAlreadyExists, dup.ID, dup.SourcePath)
	}

	now := time.Now().UTC()
	existing, err := s.catalog.GetDocumentByPath(ctx, dest)
	switch {
	case err == nil && existing.Status != domain.DocumentDeleted && fp.ContentEquals(existing):
		return existing, fmt.Errorf("%w: %s", domain.ErrAlreadyExists, dest)

	case err == nil:
		// Same path, new content (or a revived deleted record).
		updated := *existing
		updated.FileSize = fp.FileSize
		updated.ModTime = fp.ModTime
		updated.Checksum = fp.Checksum
		updated.UpdatedAt = now
		jobType := domain.JobReindex
		updated.Status = domain.DocumentReindexing
		if existing.Status == domain.DocumentDeleted {
			jobType = domain.JobIndex
			updated.Status = domain.DocumentPending
			updated.Collection = ""
		}
		job := newQueuedJob(updated.ID, jobType, now)
		if err := s.writer.ApplyReconcile(ctx, nil, []domain.Document{updated}, []domain.IndexJob{job}); err != nil {
			return nil, fmt.Errorf("registering upload: %w", err)
		}
		logger.Info("Upload replaced %s, queued %s", dest, jobType)
		return &updated, nil

	case errors.Is(err, domain.ErrNotFound):
		doc := newDocumentFromFingerprint(fp, now)
		job := newQueuedJob(doc.ID, domain.JobIndex, now)
		if err := s.writer.ApplyReconcile(ctx, []domain.Document{doc}, nil, []domain.IndexJob{job}); err != nil {
			return nil, fmt.Errorf("registering upload: %w", err)
		}
		logger.Info("Uploaded %s as document %s", dest, doc.ID)
		return &doc, nil

	default:
		return nil, fmt.Errorf("looking up document: %w", err)
	}
}

// List returns all non-deleted documents.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	all, err := s.catalog.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	docs := make([]domain.Document, 0, len(all))
	for _, doc := range all {
		if doc.Status == domain.DocumentDeleted {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := s.catalog.GetDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}
	return doc, nil
}

// Remove deletes the backing file, marks the record deleted, and queues
// collection cleanup. Removing an already-deleted document is a no-op.
func (s *DocumentService) Remove(ctx context.Context, id string) error {
	doc, err := s.catalog.GetDocument(ctx, id)
	if err != nil {
		return fmt.Errorf("getting document: %w", err)
	}
	if doc.Status == domain.DocumentDeleted {
		return nil
	}

	if err := os.Remove(doc.SourcePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing file: %w", err)
	}

	now := time.Now().UTC()
	removed := *doc
	removed.Status = domain.DocumentDeleted
	removed.UpdatedAt = now
	job := newQueuedJob(removed.ID, domain.JobDelete, now)
	if err := s.writer.ApplyReconcile(ctx, nil, []domain.Document{removed}, []domain.IndexJob{job}); err != nil {
		return fmt.Errorf("registering removal: %w", err)
	}
	logger.Info("Removed document %s (%s)", id, doc.SourcePath)
	return nil
}

// findContentDuplicate returns a non-deleted document under a different
// path whose content matches the fingerprint, or nil.
func (s *DocumentService) findContentDuplicate(ctx context.Context, fp domain.Fingerprint, dest string) (*domain.Document, error) {
	all, err := s.catalog.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	for i := range all {
		doc := &all[i]
		if doc.Status == domain.DocumentDeleted || doc.SourcePath == dest {
			continue
		}
		if fp.ContentEquals(doc) {
			return doc, nil
		}
	}
	return nil, nil
}

// copyIntoUploads copies the source file into the upload directory and
// returns the absolute destination path. Copying a file already inside
// the upload directory is a no-op, reported via copied.
func (s *DocumentService) copyIntoUploads(sourcePath string) (dest string, copied bool, err error) {
	absSource, err := filepath.Abs(sourcePath)
	if err != nil {
		return "", false, fmt.Errorf("resolving source path: %w", err)
	}

	absDest, err := filepath.Abs(filepath.Join(s.uploadDir, filepath.Base(absSource)))
	if err != nil {
		return "", false, fmt.Errorf("resolving destination path: %w", err)
	}
	if absSource == absDest {
		return absDest, false, nil
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", false, fmt.Errorf("creating upload directory: %w", err)
	}

	src, err := os.Open(absSource)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, fmt.Errorf("%w: %s", domain.ErrFileMissing, absSource)
		}
		return "", false, fmt.Errorf("opening source file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(absDest)
	if err != nil {
		return "", false, fmt.Errorf("creating destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", false, fmt.Errorf("copying file: %w", err)
	}
	return absDest, true, nil
}

// newQueuedJob builds a queued job for a document.
func newQueuedJob(documentID string, jobType domain.JobType, now time.Time) domain.IndexJob {
	return domain.IndexJob{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		Type:       jobType,
		Status:     domain.JobQueued,
		CreatedAt:  now,
	}
}
