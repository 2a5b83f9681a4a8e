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

// --- Mock implementations for reconciler testing ---

// reconMockScanner implements driven.Scanner over a fixed file set.
type reconMockScanner struct {
	files   map[string]domain.Fingerprint
	scanErr error
}

func (m *reconMockScanner) Scan(_ context.Context) (map[string]domain.Fingerprint, error) {
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	out := make(map[string]domain.Fingerprint, len(m.files))
	for k, v := range m.files {
		out[k] = v
	}
	return out, nil
}

func (m *reconMockScanner) Fingerprint(_ context.Context, path string) (domain.Fingerprint, error) {
	fp, ok := m.files[path]
	if !ok {
		return domain.Fingerprint{}, fmt.Errorf("%w: %s", domain.ErrFileMissing, path)
	}
	return fp, nil
}

// reconMockVectors implements driven.CollectionLister with a static
// collection list.
type reconMockVectors struct {
	collections []string
	listErr     error
}

func (m *reconMockVectors) ListCollections(_ context.Context) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.collections, nil
}

func reconFingerprint(path string, size int64, checksum string) domain.Fingerprint {
	return domain.Fingerprint{
		SourcePath: path,
		FileSize:   size,
		ModTime:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Checksum:   checksum,
	}
}

func TestReconcile_NewFile(t *testing.T) {
	store := memory.NewStore()
	scanner := &reconMockScanner{files: map[string]domain.Fingerprint{
		"/uploads/a.pdf": reconFingerprint("/uploads/a.pdf", 10, "aaa"),
	}}
	svc := NewReconcilerService(scanner, store, store, &reconMockVectors{})

	summary, err := svc.Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.LocalFiles)
	assert.Equal(t, 1, summary.ToIndex)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Enqueued)
	assert.Equal(t, []string{"/uploads/a.pdf"}, summary.Samples.Index)

	doc, err := store.GetDocumentByPath(context.Background(), "/uploads/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentPending, doc.Status)
	assert.Equal(t, StableDocumentID("/uploads/a.pdf"), doc.ID)
	assert.Equal(t, "aaa", doc.Checksum)
	assert.Equal(t, 1, doc.Version)

	jobs, err := store.DequeueJobs(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, domain.JobIndex, jobs[0].Type)
	assert.Equal(t, doc.ID, jobs[0].DocumentID)
}

func TestReconcile_Idempotent(t *testing.T) {
	store := memory.NewStore()
	scanner := &reconMockScanner{files: map[string]domain.Fingerprint{
		"/uploads/a.pdf": reconFingerprint("/uploads/a.pdf", 10, "aaa"),
	}}
	svc := NewReconcilerService(scanner, store, store, &reconMockVectors{})

	_, err := svc.Reconcile(context.Background())
	require.NoError(t, err)

	// Second pass with no external changes finds nothing to do.
	summary, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.ToIndex)
	assert.Equal(t, 0, summary.ToReindex)
	assert.Equal(t, 0, summary.ToDelete)
	assert.Equal(t, 0, summary.Enqueued)

	queued, err := store.CountQueuedJobs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, queued)
}

func TestReconcile_ContentChange(t *testing.T) {
	store := memory.NewStore()
	docID := StableDocumentID("/uploads/a.pdf")
	require.NoError(t, store.SaveDocument(context.Background(), &domain.Document{
		ID:         docID,
		SourcePath: "/uploads/a.pdf",
		FileSize:   10,
		Checksum:   "aaa",
		Status:     domain.DocumentIndexed,
		Collection: CollectionName(docID),
		Version:    2,
	}))

	scanner := &reconMockScanner{files: map[string]domain.Fingerprint{
		"/uploads/a.pdf": reconFingerprint("/uploads/a.pdf", 12, "bbb"),
	}}
	vectors := &reconMockVectors{collections: []string{CollectionName(docID)}}
	svc := NewReconcilerService(scanner, store, store, vectors)

	summary, err := svc.Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ToReindex)
	assert.Equal(t, 0, summary.ToIndex)
	assert.Equal(t, []string{"/uploads/a.pdf"}, summary.Samples.Reindex)

	doc, err := store.GetDocument(context.Background(), docID)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentReindexing, doc.Status)
	assert.Equal(t, "bbb", doc.Checksum)
	assert.Equal(t, int64(12), doc.FileSize)

	jobs, err := store.DequeueJobs(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, domain.JobReindex, jobs[0].Type)
}

func TestReconcile_ModTimeOnlyChangeIsNoOp(t *testing.T) {
	store := memory.NewStore()
	docID := StableDocumentID("/uploads/a.pdf")
	require.NoError(t, store.SaveDocument(context.Background(), &domain.Document{
		ID:         docID,
		SourcePath: "/uploads/a.pdf",
		FileSize:   10,
		ModTime:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Checksum:   "aaa",
		Status:     domain.DocumentIndexed,
		Collection: CollectionName(docID),
		Version:    2,
	}))

	// Same size and checksum, newer mtime.
	scanner := &reconMockScanner{files: map[string]domain.Fingerprint{
		"/uploads/a.pdf": reconFingerprint("/uploads/a.pdf", 10, "aaa"),
	}}
	vectors := &reconMockVectors{collections: []string{CollectionName(docID)}}
	svc := NewReconcilerService(scanner, store, store, vectors)

	summary, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.ToReindex)
	assert.Equal(t, 0, summary.Enqueued)
}

func TestReconcile_OrphanedRecord(t *testing.T) {
	store := memory.NewStore()
	docID := StableDocumentID("/uploads/gone.pdf")
	require.NoError(t, store.SaveDocument(context.Background(), &domain.Document{
		ID:         docID,
		SourcePath: "/uploads/gone.pdf",
		FileSize:   10,
		Checksum:   "aaa",
		Status:     domain.DocumentIndexed,
		Collection: CollectionName(docID),
		Version:    2,
	}))

	scanner := &reconMockScanner{files: map[string]domain.Fingerprint{}}
	svc := NewReconcilerService(scanner, store, store, &reconMockVectors{})

	summary, err := svc.Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ToDelete)
	assert.Equal(t, []string{"/uploads/gone.pdf"}, summary.Samples.Delete)

	doc, err := store.GetDocument(context.Background(), docID)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentDeleted, doc.Status)

	jobs, err := store.DequeueJobs(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, domain.JobDelete, jobs[0].Type)
}

func TestReconcile_IndexDrift(t *testing.T) {
	store := memory.NewStore()
	docID := StableDocumentID("/uploads/a.pdf")
	require.NoError(t, store.SaveDocument(context.Background(), &domain.Document{
		ID:         docID,
		SourcePath: "/uploads/a.pdf",
		FileSize:   10,
		Checksum:   "aaa",
		Status:     domain.DocumentIndexed,
		Collection: CollectionName(docID),
		Version:    2,
	}))

	scanner := &reconMockScanner{files: map[string]domain.Fingerprint{
		"/uploads/a.pdf": reconFingerprint("/uploads/a.pdf", 10, "aaa"),
	}}
	// No collections live.
	svc := NewReconcilerService(scanner, store, store, &reconMockVectors{})

	summary, err := svc.Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.CollectionsMissing)
	assert.Equal(t, 1, summary.ToReindex)
	assert.False(t, summary.Degraded)
	assert.Equal(t, []string{"/uploads/a.pdf"}, summary.Samples.CollectionsMissing)

	// File metadata stays untouched on drift.
	doc, err := store.GetDocument(context.Background(), docID)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentReindexing, doc.Status)
	assert.Equal(t, "aaa", doc.Checksum)
	assert.Equal(t, int64(10), doc.FileSize)
	assert.Equal(t, 2, doc.Version)
}

func TestReconcile_VectorOutageDegrades(t *testing.T) {
	store := memory.NewStore()
	docID := StableDocumentID("/uploads/a.pdf")
	require.NoError(t, store.SaveDocument(context.Background(), &domain.Document{
		ID:         docID,
		SourcePath: "/uploads/a.pdf",
		FileSize:   10,
		Checksum:   "aaa",
		Status:     domain.DocumentIndexed,
		Collection: CollectionName(docID),
		Version:    2,
	}))

	scanner := &reconMockScanner{files: map[string]domain.Fingerprint{
		"/uploads/a.pdf": reconFingerprint("/uploads/a.pdf", 10, "aaa"),
	}}
	vectors := &reconMockVectors{listErr: errors.New("connection refused")}
	svc := NewReconcilerService(scanner, store, store, vectors)

	summary, err := svc.Reconcile(context.Background())
	require.NoError(t, err)

	// The pass completes, flags itself, and over-enqueues reindex work.
	assert.True(t, summary.Degraded)
	assert.Equal(t, 1, summary.CollectionsMissing)
	assert.Equal(t, 1, summary.Enqueued)
}

func TestReconcile_FailedDocumentRetried(t *testing.T) {
	store := memory.NewStore()
	docID := StableDocumentID("/uploads/a.pdf")
	require.NoError(t, store.SaveDocument(context.Background(), &domain.Document{
		ID:         docID,
		SourcePath: "/uploads/a.pdf",
		FileSize:   10,
		Checksum:   "aaa",
		Status:     domain.DocumentFailed,
	}))

	scanner := &reconMockScanner{files: map[string]domain.Fingerprint{
		"/uploads/a.pdf": reconFingerprint("/uploads/a.pdf", 10, "aaa"),
	}}
	svc := NewReconcilerService(scanner, store, store, &reconMockVectors{})

	summary, err := svc.Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ToReindex)

	doc, err := store.GetDocument(context.Background(), docID)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentReindexing, doc.Status)

	jobs, err := store.DequeueJobs(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, domain.JobReindex, jobs[0].Type)
}

func TestReconcile_DeletedPathReappears(t *testing.T) {
	store := memory.NewStore()
	docID := StableDocumentID("/uploads/a.pdf")
	require.NoError(t, store.SaveDocument(context.Background(), &domain.Document{
		ID:         docID,
		SourcePath: "/uploads/a.pdf",
		FileSize:   10,
		Checksum:   "old",
		Status:     domain.DocumentDeleted,
		Version:    3,
	}))

	scanner := &reconMockScanner{files: map[string]domain.Fingerprint{
		"/uploads/a.pdf": reconFingerprint("/uploads/a.pdf", 20, "new"),
	}}
	svc := NewReconcilerService(scanner, store, store, &reconMockVectors{})

	summary, err := svc.Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ToIndex)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 0, summary.Created)

	// The path-derived ID revives the existing row.
	doc, err := store.GetDocument(context.Background(), docID)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentPending, doc.Status)
	assert.Equal(t, "new", doc.Checksum)
	assert.Equal(t, 3, doc.Version)

	jobs, err := store.DequeueJobs(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, domain.JobIndex, jobs[0].Type)
}

func TestReconcile_SamplesBounded(t *testing.T) {
	store := memory.NewStore()
	files := make(map[string]domain.Fingerprint)
	for i := 0; i < domain.SampleLimit+3; i++ {
		path := fmt.Sprintf("/uploads/doc-%02d.pdf", i)
		files[path] = reconFingerprint(path, int64(i+1), fmt.Sprintf("sum-%d", i))
	}
	scanner := &reconMockScanner{files: files}
	svc := NewReconcilerService(scanner, store, store, &reconMockVectors{})

	summary, err := svc.Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.SampleLimit+3, summary.ToIndex)
	assert.Len(t, summary.Samples.Index, domain.SampleLimit)
}

func TestReconcile_ScanError(t *testing.T) {
	store := memory.NewStore()
	scanner := &reconMockScanner{scanErr: errors.New("permission denied")}
	svc := NewReconcilerService(scanner, store, store, &reconMockVectors{})

	_, err := svc.Reconcile(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scanning upload directory")
}
