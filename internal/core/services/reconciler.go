package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/researchbot/researchbot/internal/core/domain"
	"github.com/researchbot/researchbot/internal/core/ports/driven"
	"github.com/researchbot/researchbot/internal/core/ports/driving"
	"github.com/researchbot/researchbot/internal/logger"
)

// Ensure ReconcilerService implements the interface.
var _ driving.Reconciler = (*ReconcilerService)(nil)

// ReconcilerService computes the three-way diff between the upload
// directory, the document catalog, and the live vector collections, and
// turns the differences into catalog updates plus queued jobs.
type ReconcilerService struct {
	scanner driven.Scanner
	catalog driven.DocumentCatalog
	writer  driven.ReconcileWriter
	vectors driven.CollectionLister
}

// NewReconcilerService creates a new reconciler.
func NewReconcilerService(
	scanner driven.Scanner,
	catalog driven.DocumentCatalog,
	writer driven.ReconcileWriter,
	vectors driven.CollectionLister,
) *ReconcilerService {
	return &ReconcilerService{
		scanner: scanner,
		catalog: catalog,
		writer:  writer,
		vectors: vectors,
	}
}

// Reconcile runs one full diff pass.
//
// Files with no catalog record become pending documents with an index
// job. Records whose size or checksum no longer match the file become
// reindexing with a reindex job. Records whose file vanished become
// deleted with a delete job. Indexed records whose collection is absent
// from the vector store get a reindex job without touching file
// metadata. All writes commit in a single transaction, so a failed pass
// changes nothing and the next pass recomputes the same diff.
func (r *ReconcilerService) Reconcile(ctx context.Context) (*domain.ReconcileSummary, error) {
	files, err := r.scanner.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanning upload directory: %w", err)
	}

	records, err := r.catalog.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing catalog: %w", err)
	}

	summary := &domain.ReconcileSummary{
		LocalFiles:     len(files),
		CatalogRecords: len(records),
	}

	// A vector store outage must not block catalog reconciliation.
	// Fall open to an empty live set: drift detection then enqueues
	// reindex work for every indexed document, which is safe because
	// reindexing is idempotent.
	live := make(map[string]bool)
	collections, err := r.vectors.ListCollections(ctx)
	if err != nil {
		logger.Warn("Listing vector collections failed, treating all as missing: %v", err)
		summary.Degraded = true
	} else {
		for _, name := range collections {
			live[name] = true
		}
	}

	byPath := make(map[string]*domain.Document, len(records))
	for i := range records {
		byPath[records[i].SourcePath] = &records[i]
	}

	// Deterministic pass order keeps summaries and samples stable.
	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	now := time.Now().UTC()
	var created, updated []domain.Document
	var jobs []domain.IndexJob

	enqueue := func(documentID string, jobType domain.JobType) {
		jobs = append(jobs, domain.IndexJob{
			ID:         uuid.NewString(),
			DocumentID: documentID,
			Type:       jobType,
			Status:     domain.JobQueued,
			CreatedAt:  now,
		})
	}

	for _, path := range paths {
		fp := files[path]
		doc, known := byPath[path]

		switch {
		case !known:
			// New file.
			created = append(created, newDocumentFromFingerprint(fp, now))
			enqueue(StableDocumentID(path), domain.JobIndex)
			summary.ToIndex++
			summary.Created++
			summary.SampleIndex(path)

		case doc.Status == domain.DocumentDeleted:
			// A previously deleted path reappeared. The path-derived ID
			// matches the old row, so the record is revived in place.
			revived := *doc
			revived.FileSize = fp.FileSize
			revived.ModTime = fp.ModTime
			revived.Checksum = fp.Checksum
			revived.Status = domain.DocumentPending
			revived.Collection = ""
			revived.UpdatedAt = now
			updated = append(updated, revived)
			enqueue(revived.ID, domain.JobIndex)
			summary.ToIndex++
			summary.Updated++
			summary.SampleIndex(path)

		case !fp.ContentEquals(doc):
			// Content changed on disk.
			changed := *doc
			changed.FileSize = fp.FileSize
			changed.ModTime = fp.ModTime
			changed.Checksum = fp.Checksum
			changed.Status = domain.DocumentReindexing
			changed.UpdatedAt = now
			updated = append(updated, changed)
			enqueue(changed.ID, domain.JobReindex)
			summary.ToReindex++
			summary.Updated++
			summary.SampleReindex(path)

		case doc.Status == domain.DocumentFailed:
			// The file still exists, so the earlier failure gets another
			// attempt.
			retried := *doc
			retried.Status = domain.DocumentReindexing
			retried.UpdatedAt = now
			updated = append(updated, retried)
			enqueue(retried.ID, domain.JobReindex)
			summary.ToReindex++
			summary.Updated++
			summary.SampleReindex(path)

		case doc.Status == domain.DocumentIndexed && !live[expectedCollection(doc)]:
			// Index drift: the catalog believes the document is indexed
			// but the vector store has no collection for it. File
			// metadata stays untouched; only the index is rebuilt.
			drifted := *doc
			drifted.Status = domain.DocumentReindexing
			drifted.UpdatedAt = now
			updated = append(updated, drifted)
			enqueue(drifted.ID, domain.JobReindex)
			summary.ToReindex++
			summary.CollectionsMissing++
			summary.Updated++
			summary.SampleCollectionMissing(path)
		}
	}

	// Catalog records whose backing file vanished.
	for i := range records {
		doc := &records[i]
		if doc.Status == domain.DocumentDeleted {
			continue
		}
		if _, onDisk := files[doc.SourcePath]; onDisk {
			continue
		}
		orphan := *doc
		orphan.Status = domain.DocumentDeleted
		orphan.UpdatedAt = now
		updated = append(updated, orphan)
		enqueue(orphan.ID, domain.JobDelete)
		summary.ToDelete++
		summary.Updated++
		summary.SampleDelete(doc.SourcePath)
	}

	summary.Enqueued = len(jobs)

	if len(created) > 0 || len(updated) > 0 || len(jobs) > 0 {
		if err := r.writer.ApplyReconcile(ctx, created, updated, jobs); err != nil {
			return nil, fmt.Errorf("applying reconcile pass: %w", err)
		}
	}

	logger.Info("Reconcile pass: %d files, %d records, %d to index, %d to reindex, %d to delete",
		summary.LocalFiles, summary.CatalogRecords, summary.ToIndex, summary.ToReindex, summary.ToDelete)

	return summary, nil
}

// newDocumentFromFingerprint builds a pending document for a newly
// discovered file.
func newDocumentFromFingerprint(fp domain.Fingerprint, now time.Time) domain.Document {
	return domain.Document{
		ID:         StableDocumentID(fp.SourcePath),
		SourcePath: fp.SourcePath,
		FileSize:   fp.FileSize,
		ModTime:    fp.ModTime,
		Checksum:   fp.Checksum,
		Status:     domain.DocumentPending,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// expectedCollection returns the collection an indexed document should
// own, falling back to the path-derived name for rows indexed before a
// pointer was recorded.
func expectedCollection(doc *domain.Document) string {
	if doc.Collection != "" {
		return doc.Collection
	}
	return CollectionName(doc.ID)
}
