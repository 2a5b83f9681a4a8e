// Package memory provides in-memory storage adapters, used by service
// tests and available as an ephemeral backend.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/researchbot/researchbot/internal/core/domain"
	"github.com/researchbot/researchbot/internal/core/ports/driven"
)

// Ensure Store implements the storage interfaces.
var (
	_ driven.DocumentCatalog = (*Store)(nil)
	_ driven.ReconcileWriter = (*Store)(nil)
	_ driven.JobQueue        = (*Store)(nil)
)

// Store is an in-memory implementation of the catalog and job queue.
// A single mutex guards both maps so ApplyReconcile and CompleteJob
// keep their all-or-nothing behaviour.
type Store struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	jobs      map[string]domain.IndexJob
	arrival   []string
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		documents: make(map[string]domain.Document),
		jobs:      make(map[string]domain.IndexJob),
	}
}

// SaveDocument stores or updates a document.
func (s *Store) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetDocumentByPath retrieves the document registered under a path.
func (s *Store) GetDocumentByPath(_ context.Context, path string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id := range s.documents {
		if s.documents[id].SourcePath == path {
			doc := s.documents[id]
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ListDocuments returns every catalog row, ordered by source path.
func (s *Store) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.documents))
	for id := range s.documents {
		docs = append(docs, s.documents[id])
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].SourcePath < docs[j].SourcePath })
	return docs, nil
}

// CountDocumentsByStatus returns row counts grouped by lifecycle state.
func (s *Store) CountDocumentsByStatus(_ context.Context) (map[domain.DocumentStatus]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[domain.DocumentStatus]int)
	for id := range s.documents {
		counts[s.documents[id].Status]++
	}
	return counts, nil
}

// ApplyReconcile inserts, updates, and enqueues in one locked step.
func (s *Store) ApplyReconcile(_ context.Context, created, updated []domain.Document, jobs []domain.IndexJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range created {
		s.documents[doc.ID] = doc
	}
	for _, doc := range updated {
		s.documents[doc.ID] = doc
	}
	for _, job := range jobs {
		s.insertJobLocked(job)
	}
	return nil
}

// EnqueueJob inserts a queued job.
func (s *Store) EnqueueJob(_ context.Context, job *domain.IndexJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertJobLocked(*job)
	return nil
}

// insertJobLocked records arrival order so FIFO dispatch is stable
// even when CreatedAt timestamps collide.
func (s *Store) insertJobLocked(job domain.IndexJob) {
	s.jobs[job.ID] = job
	s.arrival = append(s.arrival, job.ID)
}

// DequeueJobs returns up to limit queued jobs, oldest first.
func (s *Store) DequeueJobs(_ context.Context, limit int) ([]domain.IndexJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var queued []domain.IndexJob
	for _, id := range s.arrival {
		job := s.jobs[id]
		if job.Status != domain.JobQueued {
			continue
		}
		queued = append(queued, job)
		if len(queued) == limit {
			break
		}
	}
	return queued, nil
}

// MarkJobRunning transitions a queued job to running.
func (s *Store) MarkJobRunning(_ context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok || job.Status != domain.JobQueued {
		return domain.ErrNotFound
	}
	job.Status = domain.JobRunning
	s.jobs[jobID] = job
	return nil
}

// CompleteJob writes a job's terminal state and the affected document.
func (s *Store) CompleteJob(_ context.Context, job *domain.IndexJob, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok {
		return domain.ErrNotFound
	}
	s.jobs[job.ID] = *job
	if doc != nil {
		s.documents[doc.ID] = *doc
	}
	return nil
}

// CountQueuedJobs returns the number of jobs still waiting.
func (s *Store) CountQueuedJobs(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for id := range s.jobs {
		if s.jobs[id].Status == domain.JobQueued {
			count++
		}
	}
	return count, nil
}

// ListJobs returns the most recent jobs, newest first.
func (s *Store) ListJobs(_ context.Context, limit int) ([]domain.IndexJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var jobs []domain.IndexJob
	for i := len(s.arrival) - 1; i >= 0 && len(jobs) < limit; i-- {
		jobs = append(jobs, s.jobs[s.arrival[i]])
	}
	return jobs, nil
}
