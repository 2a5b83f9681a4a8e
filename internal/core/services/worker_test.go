package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/researchbot/researchbot/internal/adapters/driven/storage/memory"
	"github.com/researchbot/researchbot/internal/core/domain"
)

// --- Mock implementations for worker testing ---

// workerMockScanner implements driven.Scanner over a fixed file set.
type workerMockScanner struct {
	files map[string]domain.Fingerprint
}

func (m *workerMockScanner) Scan(_ context.Context) (map[string]domain.Fingerprint, error) {
	return m.files, nil
}

func (m *workerMockScanner) Fingerprint(_ context.Context, path string) (domain.Fingerprint, error) {
	fp, ok := m.files[path]
	if !ok {
		return domain.Fingerprint{}, fmt.Errorf("%w: %s", domain.ErrFileMissing, path)
	}
	return fp, nil
}

// workerMockProcessor implements driven.DocumentProcessor and records
// calls.
type workerMockProcessor struct {
	chunks     int
	processErr error
	cleanupErr error
	processed  []string
	cleaned    []string
}

func (m *workerMockProcessor) Process(_ context.Context, path, collection string) (int, error) {
	if m.processErr != nil {
		return 0, m.processErr
	}
	m.processed = append(m.processed, collection)
	return m.chunks, nil
}

func (m *workerMockProcessor) Cleanup(_ context.Context, collection string) error {
	if m.cleanupErr != nil {
		return m.cleanupErr
	}
	m.cleaned = append(m.cleaned, collection)
	return nil
}

func (m *workerMockProcessor) Search(_ context.Context, _, _ string, _ int) ([]domain.ChunkHit, error) {
	return nil, nil
}

// workerSeed registers a document and a queued job for it.
func workerSeed(t *testing.T, store *memory.Store, path string, docStatus domain.DocumentStatus, jobType domain.JobType, createdAt time.Time) (string, string) {
	t.Helper()
	docID := StableDocumentID(path)
	require.NoError(t, store.SaveDocument(context.Background(), &domain.Document{
		ID:         docID,
		SourcePath: path,
		FileSize:   10,
		Checksum:   "aaa",
		Status:     docStatus,
		Version:    1,
	}))
	job := domain.IndexJob{
		ID:         "job-" + docID,
		DocumentID: docID,
		Type:       jobType,
		Status:     domain.JobQueued,
		CreatedAt:  createdAt,
	}
	require.NoError(t, store.EnqueueJob(context.Background(), &job))
	return docID, job.ID
}

func TestProcessJobs_IndexSuccess(t *testing.T) {
	store := memory.NewStore()
	now := time.Now().UTC()
	docID, _ := workerSeed(t, store, "/uploads/a.pdf", domain.DocumentPending, domain.JobIndex, now)

	scanner := &workerMockScanner{files: map[string]domain.Fingerprint{
		"/uploads/a.pdf": {SourcePath: "/uploads/a.pdf", FileSize: 10, Checksum: "aaa"},
	}}
	processor := &workerMockProcessor{chunks: 4}
	worker := NewWorkerService(store, store, scanner, processor)

	report, err := worker.ProcessJobs(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 0, report.Remaining)

	doc, err := store.GetDocument(context.Background(), docID)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentIndexed, doc.Status)
	assert.Equal(t, CollectionName(docID), doc.Collection)
	// Cataloged at version 1, bumped to 2 by the first successful index.
	assert.Equal(t, 2, doc.Version)
	assert.Equal(t, []string{CollectionName(docID)}, processor.processed)
}

func TestProcessJobs_FIFOOrder(t *testing.T) {
	store := memory.NewStore()
	base := time.Now().UTC()
	workerSeed(t, store, "/uploads/first.pdf", domain.DocumentPending, domain.JobIndex, base)
	workerSeed(t, store, "/uploads/second.pdf", domain.DocumentPending, domain.JobIndex, base.Add(time.Second))
	workerSeed(t, store, "/uploads/third.pdf", domain.DocumentPending, domain.JobIndex, base.Add(2*time.Second))

	scanner := &workerMockScanner{files: map[string]domain.Fingerprint{
		"/uploads/first.pdf":  {SourcePath: "/uploads/first.pdf", FileSize: 10, Checksum: "a"},
		"/uploads/second.pdf": {SourcePath: "/uploads/second.pdf", FileSize: 10, Checksum: "b"},
		"/uploads/third.pdf":  {SourcePath: "/uploads/third.pdf", FileSize: 10, Checksum: "c"},
	}}
	processor := &workerMockProcessor{chunks: 1}
	worker := NewWorkerService(store, store, scanner, processor)

	report, err := worker.ProcessJobs(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 1, report.Remaining)
	require.Len(t, processor.processed, 2)
	assert.Equal(t, CollectionName(StableDocumentID("/uploads/first.pdf")), processor.processed[0])
	assert.Equal(t, CollectionName(StableDocumentID("/uploads/second.pdf")), processor.processed[1])
}

func TestProcessJobs_ZeroLimitUsesDefault(t *testing.T) {
	store := memory.NewStore()
	base := time.Now().UTC()
	files := make(map[string]domain.Fingerprint)
	for i := 0; i < DefaultBatchSize+2; i++ {
		path := fmt.Sprintf("/uploads/doc-%02d.pdf", i)
		workerSeed(t, store, path, domain.DocumentPending, domain.JobIndex, base.Add(time.Duration(i)*time.Second))
		files[path] = domain.Fingerprint{SourcePath: path, FileSize: 10, Checksum: "x"}
	}

	scanner := &workerMockScanner{files: files}
	worker := NewWorkerService(store, store, scanner, &workerMockProcessor{chunks: 1})

	// Zero means the default batch size.
	report, err := worker.ProcessJobs(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultBatchSize, report.Processed)
	assert.Equal(t, 2, report.Remaining)
}

func TestProcessJobs_LimitOutOfRange(t *testing.T) {
	store := memory.NewStore()
	worker := NewWorkerService(store, store, &workerMockScanner{}, &workerMockProcessor{})

	_, err := worker.ProcessJobs(context.Background(), MaxBatchSize+1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = worker.ProcessJobs(context.Background(), -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProcessJobs_DocumentNotFound(t *testing.T) {
	store := memory.NewStore()
	job := domain.IndexJob{
		ID:         "job-ghost",
		DocumentID: "no-such-document",
		Type:       domain.JobIndex,
		Status:     domain.JobQueued,
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, store.EnqueueJob(context.Background(), &job))

	worker := NewWorkerService(store, store, &workerMockScanner{}, &workerMockProcessor{})

	report, err := worker.ProcessJobs(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)

	jobs, err := store.ListJobs(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, domain.JobFailed, jobs[0].Status)
	assert.Equal(t, "document not found", jobs[0].Error)
	assert.False(t, jobs[0].FinishedAt.IsZero())
}

func TestProcessJobs_FileVanished(t *testing.T) {
	store := memory.NewStore()
	docID, _ := workerSeed(t, store, "/uploads/gone.pdf", domain.DocumentPending, domain.JobIndex, time.Now().UTC())

	// Scanner has no files: the source vanished after enqueue.
	worker := NewWorkerService(store, store, &workerMockScanner{}, &workerMockProcessor{})

	report, err := worker.ProcessJobs(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)

	doc, err := store.GetDocument(context.Background(), docID)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentFailed, doc.Status)

	jobs, err := store.ListJobs(context.Background(), 1)
	require.NoError(t, err)
	assert.Contains(t, jobs[0].Error, "file not found")
}

func TestProcessJobs_PartialFailure(t *testing.T) {
	store := memory.NewStore()
	base := time.Now().UTC()
	failID, _ := workerSeed(t, store, "/uploads/bad.pdf", domain.DocumentPending, domain.JobIndex, base)
	okID, _ := workerSeed(t, store, "/uploads/good.pdf", domain.DocumentPending, domain.JobIndex, base.Add(time.Second))

	// Only the second document's file exists, so the first job fails and
	// the pass continues.
	scanner := &workerMockScanner{files: map[string]domain.Fingerprint{
		"/uploads/good.pdf": {SourcePath: "/uploads/good.pdf", FileSize: 10, Checksum: "g"},
	}}
	worker := NewWorkerService(store, store, scanner, &workerMockProcessor{chunks: 2})

	report, err := worker.ProcessJobs(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)

	failed, err := store.GetDocument(context.Background(), failID)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentFailed, failed.Status)

	ok, err := store.GetDocument(context.Background(), okID)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentIndexed, ok.Status)
}

func TestProcessJobs_ProcessError(t *testing.T) {
	store := memory.NewStore()
	docID, _ := workerSeed(t, store, "/uploads/a.pdf", domain.DocumentPending, domain.JobIndex, time.Now().UTC())

	scanner := &workerMockScanner{files: map[string]domain.Fingerprint{
		"/uploads/a.pdf": {SourcePath: "/uploads/a.pdf", FileSize: 10, Checksum: "aaa"},
	}}
	processor := &workerMockProcessor{processErr: errors.New("extraction failed")}
	worker := NewWorkerService(store, store, scanner, processor)

	report, err := worker.ProcessJobs(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)

	doc, err := store.GetDocument(context.Background(), docID)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentFailed, doc.Status)
	// A failed index leaves the version untouched.
	assert.Equal(t, 1, doc.Version)

	jobs, err := store.ListJobs(context.Background(), 1)
	require.NoError(t, err)
	assert.Contains(t, jobs[0].Error, "extraction failed")
}

func TestProcessJobs_Delete(t *testing.T) {
	store := memory.NewStore()
	docID := StableDocumentID("/uploads/a.pdf")
	require.NoError(t, store.SaveDocument(context.Background(), &domain.Document{
		ID:         docID,
		SourcePath: "/uploads/a.pdf",
		Status:     domain.DocumentDeleted,
		Collection: CollectionName(docID),
		Version:    2,
	}))
	job := domain.IndexJob{
		ID:         "job-delete",
		DocumentID: docID,
		Type:       domain.JobDelete,
		Status:     domain.JobQueued,
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, store.EnqueueJob(context.Background(), &job))

	processor := &workerMockProcessor{}
	worker := NewWorkerService(store, store, &workerMockScanner{}, processor)

	report, err := worker.ProcessJobs(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)

	assert.Equal(t, []string{CollectionName(docID)}, processor.cleaned)

	doc, err := store.GetDocument(context.Background(), docID)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentDeleted, doc.Status)
	assert.Empty(t, doc.Collection)
}

func TestProcessJobs_Reindex_IncrementsVersion(t *testing.T) {
	store := memory.NewStore()
	docID := StableDocumentID("/uploads/a.pdf")
	require.NoError(t, store.SaveDocument(context.Background(), &domain.Document{
		ID:         docID,
		SourcePath: "/uploads/a.pdf",
		FileSize:   10,
		Checksum:   "old",
		Status:     domain.DocumentReindexing,
		Collection: CollectionName(docID),
		Version:    2,
	}))
	job := domain.IndexJob{
		ID:         "job-reindex",
		DocumentID: docID,
		Type:       domain.JobReindex,
		Status:     domain.JobQueued,
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, store.EnqueueJob(context.Background(), &job))

	scanner := &workerMockScanner{files: map[string]domain.Fingerprint{
		"/uploads/a.pdf": {SourcePath: "/uploads/a.pdf", FileSize: 12, Checksum: "new"},
	}}
	worker := NewWorkerService(store, store, scanner, &workerMockProcessor{chunks: 3})

	_, err := worker.ProcessJobs(context.Background(), 10)
	require.NoError(t, err)

	doc, err := store.GetDocument(context.Background(), docID)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentIndexed, doc.Status)
	assert.Equal(t, 3, doc.Version)
	// The fingerprint actually indexed wins over the enqueue-time one.
	assert.Equal(t, "new", doc.Checksum)
	assert.Equal(t, int64(12), doc.FileSize)
}

func TestProcessJobs_EmptyQueue(t *testing.T) {
	store := memory.NewStore()
	worker := NewWorkerService(store, store, &workerMockScanner{}, &workerMockProcessor{})

	report, err := worker.ProcessJobs(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Processed)
	assert.Equal(t, 0, report.Remaining)
}
