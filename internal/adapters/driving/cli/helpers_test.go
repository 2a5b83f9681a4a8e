package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/researchbot/researchbot/internal/core/domain"
	"github.com/researchbot/researchbot/internal/core/ports/driving"
)

// --- Mock services for command testing ---

type cliMockReconciler struct {
	summary *domain.ReconcileSummary
	err     error
}

func (m *cliMockReconciler) Reconcile(_ context.Context) (*domain.ReconcileSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.summary, nil
}

type cliMockWorker struct {
	report *domain.WorkerReport
	err    error
}

func (m *cliMockWorker) ProcessJobs(_ context.Context, _ int) (*domain.WorkerReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

type cliMockDocuments struct {
	docs      []domain.Document
	uploadErr error
	getErr    error
	removeErr error
	removed   []string
}

func (m *cliMockDocuments) Upload(_ context.Context, sourcePath string) (*domain.Document, error) {
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	return &domain.Document{
		ID:         "doc-1",
		SourcePath: sourcePath,
		Status:     domain.DocumentPending,
	}, nil
}

func (m *cliMockDocuments) List(_ context.Context) ([]domain.Document, error) {
	return m.docs, nil
}

func (m *cliMockDocuments) Get(_ context.Context, id string) (*domain.Document, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for i := range m.docs {
		if m.docs[i].ID == id {
			return &m.docs[i], nil
		}
	}
	return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
}

func (m *cliMockDocuments) Remove(_ context.Context, id string) error {
	if m.removeErr != nil {
		return m.removeErr
	}
	m.removed = append(m.removed, id)
	return nil
}

type cliMockAnswerer struct {
	answer *driving.Answer
	err    error
}

func (m *cliMockAnswerer) Ask(_ context.Context, _, _ string) (*driving.Answer, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

type cliMockStatus struct {
	status *driving.SystemStatus
	err    error
}

func (m *cliMockStatus) Status(_ context.Context) (*driving.SystemStatus, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.status, nil
}

// setupTestServices wires mock services with fixture data and returns a
// cleanup restoring the previous wiring.
func setupTestServices() func() {
	oldReconciler := reconcilerService
	oldWorker := indexWorker
	oldDocuments := documentManager
	oldAnswerer := questionAnswerer
	oldStatus := statusReporter

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	reconcilerService = &cliMockReconciler{summary: &domain.ReconcileSummary{
		LocalFiles:     3,
		CatalogRecords: 2,
		ToIndex:        1,
		Created:        1,
		Enqueued:       1,
		Samples:        domain.ReconcileSamples{Index: []string{"/uploads/new.pdf"}},
	}}
	indexWorker = &cliMockWorker{report: &domain.WorkerReport{
		Processed: 2,
		Succeeded: 2,
	}}
	documentManager = &cliMockDocuments{docs: []domain.Document{
		{
			ID:         "doc-1",
			SourcePath: "/uploads/report.pdf",
			FileSize:   2048,
			Checksum:   "abc123",
			Status:     domain.DocumentIndexed,
			Collection: "document_doc-1",
			Version:    2,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
	}}
	questionAnswerer = &cliMockAnswerer{answer: &driving.Answer{
		Text: "The report covers quarterly results.",
		Sources: []domain.ChunkHit{
			{Chunk: domain.Chunk{Page: 1}, Relevance: 0.9},
		},
	}}
	statusReporter = &cliMockStatus{status: &driving.SystemStatus{
		Documents:  map[domain.DocumentStatus]int{domain.DocumentIndexed: 1},
		QueuedJobs: 1,
		RecentJobs: []domain.IndexJob{
			{ID: "job-1", DocumentID: "doc-1", Type: domain.JobIndex, Status: domain.JobQueued, CreatedAt: now},
		},
	}}

	return func() {
		reconcilerService = oldReconciler
		indexWorker = oldWorker
		documentManager = oldDocuments
		questionAnswerer = oldAnswerer
		statusReporter = oldStatus
	}
}
