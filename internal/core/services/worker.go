package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/researchbot/researchbot/internal/core/domain"
	"github.com/researchbot/researchbot/internal/core/ports/driven"
	"github.com/researchbot/researchbot/internal/core/ports/driving"
	"github.com/researchbot/researchbot/internal/logger"
)

// Worker batch size bounds.
const (
	DefaultBatchSize = 10
	MaxBatchSize     = 100
)

// Ensure WorkerService implements the interface.
var _ driving.IndexWorker = (*WorkerService)(nil)

// WorkerService executes queued index jobs against the processing
// pipeline. Each job runs in its own transaction scope: the running
// mark commits before execution, and the terminal state commits
// together with the document row it affected. A crash mid-job loses at
// most that one job's progress.
type WorkerService struct {
	catalog   driven.DocumentCatalog
	queue     driven.JobQueue
	scanner   driven.Scanner
	processor driven.DocumentProcessor
}

// NewWorkerService creates a new index worker.
func NewWorkerService(
	catalog driven.DocumentCatalog,
	queue driven.JobQueue,
	scanner driven.Scanner,
	processor driven.DocumentProcessor,
) *WorkerService {
	return &WorkerService{
		catalog:   catalog,
		queue:     queue,
		scanner:   scanner,
		processor: processor,
	}
}

// ProcessJobs executes up to limit queued jobs, oldest first. A zero
// limit selects DefaultBatchSize; any other limit outside
// [1, MaxBatchSize] is rejected with domain.ErrInvalidInput.
func (w *WorkerService) ProcessJobs(ctx context.Context, limit int) (*domain.WorkerReport, error) {
	if limit == 0 {
		limit = DefaultBatchSize
	}
	if limit < 1 || limit > MaxBatchSize {
		return nil, fmt.Errorf("%w: batch limit %d is outside 1..%d",
			domain.ErrInvalidInput, limit, MaxBatchSize)
	}

	jobs, err := w.queue.DequeueJobs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("dequeuing jobs: %w", err)
	}

	report := &domain.WorkerReport{}
	for i := range jobs {
		job := jobs[i]

		if err := w.queue.MarkJobRunning(ctx, job.ID); err != nil {
			return nil, fmt.Errorf("marking job %s running: %w", job.ID, err)
		}
		job.Status = domain.JobRunning

		if err := w.executeJob(ctx, &job); err != nil {
			return nil, fmt.Errorf("executing job %s: %w", job.ID, err)
		}

		report.Processed++
		if job.Status == domain.JobSucceeded {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}

	remaining, err := w.queue.CountQueuedJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting queued jobs: %w", err)
	}
	report.Remaining = remaining

	logger.Info("Worker pass: %d processed, %d succeeded, %d failed, %d remaining",
		report.Processed, report.Succeeded, report.Failed, report.Remaining)

	return report, nil
}

// executeJob runs one job to a terminal state. A business failure
// (missing document, vanished file, pipeline error) fails the job and
// returns nil; only infrastructure errors propagate.
func (w *WorkerService) executeJob(ctx context.Context, job *domain.IndexJob) error {
	doc, err := w.catalog.GetDocument(ctx, job.DocumentID)
	if errors.Is(err, domain.ErrNotFound) {
		return w.finishJob(ctx, job, nil, errors.New("document not found"))
	}
	if err != nil {
		return fmt.Errorf("loading document %s: %w", job.DocumentID, err)
	}

	switch job.Type {
	case domain.JobDelete:
		return w.executeDelete(ctx, job, doc)
	case domain.JobIndex, domain.JobReindex:
		return w.executeIndex(ctx, job, doc)
	default:
		return w.finishJob(ctx, job, nil, fmt.Errorf("unknown job type %q", job.Type))
	}
}

// executeDelete removes the document's collection. Idempotent: a second
// delete against an already-cleaned document still succeeds.
func (w *WorkerService) executeDelete(ctx context.Context, job *domain.IndexJob, doc *domain.Document) error {
	if err := w.processor.Cleanup(ctx, expectedCollection(doc)); err != nil {
		return w.finishJob(ctx, job, w.failDocument(doc), err)
	}

	doc.Status = domain.DocumentDeleted
	doc.Collection = ""
	doc.UpdatedAt = time.Now().UTC()
	return w.finishJob(ctx, job, doc, nil)
}

// executeIndex builds or rebuilds the document's collection from its
// source file.
func (w *WorkerService) executeIndex(ctx context.Context, job *domain.IndexJob, doc *domain.Document) error {
	fp, err := w.scanner.Fingerprint(ctx, doc.SourcePath)
	if err != nil {
		// The file vanished between enqueue and execution. The next
		// reconcile pass turns the record into a delete.
		return w.finishJob(ctx, job, w.failDocument(doc), err)
	}

	collection := CollectionName(doc.ID)
	chunks, err := w.processor.Process(ctx, doc.SourcePath, collection)
	if err != nil {
		return w.finishJob(ctx, job, w.failDocument(doc), err)
	}
	logger.Debug("Indexed %s into %s (%d chunks)", doc.SourcePath, collection, chunks)

	// Record the fingerprint that was actually indexed, not the one
	// observed at enqueue time.
	doc.FileSize = fp.FileSize
	doc.ModTime = fp.ModTime
	doc.Checksum = fp.Checksum
	doc.Status = domain.DocumentIndexed
	doc.Collection = collection
	doc.Version++
	doc.UpdatedAt = time.Now().UTC()
	return w.finishJob(ctx, job, doc, nil)
}

// failDocument marks a document failed for a terminal job write.
func (w *WorkerService) failDocument(doc *domain.Document) *domain.Document {
	doc.Status = domain.DocumentFailed
	doc.UpdatedAt = time.Now().UTC()
	return doc
}

// finishJob writes the job's terminal state and the affected document
// in one transaction.
func (w *WorkerService) finishJob(ctx context.Context, job *domain.IndexJob, doc *domain.Document, jobErr error) error {
	job.FinishedAt = time.Now().UTC()
	if jobErr != nil {
		job.Status = domain.JobFailed
		job.Error = jobErr.Error()
		logger.Warn("Job %s (%s) failed: %v", job.ID, job.Type, jobErr)
	} else {
		job.Status = domain.JobSucceeded
	}

	if err := w.queue.CompleteJob(ctx, job, doc); err != nil {
		return fmt.Errorf("completing job: %w", err)
	}
	return nil
}
