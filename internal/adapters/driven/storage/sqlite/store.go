// Package sqlite provides the persistent catalog and job queue backed
// by a single SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/researchbot/researchbot/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/researchbot/researchbot/internal/core/domain"
	"github.com/researchbot/researchbot/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to the
// catalog and job queue interfaces through wrapper types. Keeping both
// in one database lets reconcile passes and job completions commit
// document and job rows in a single transaction.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.researchbot/data/catalog.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".researchbot", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "catalog.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DocumentCatalog returns a DocumentCatalog interface backed by this store.
func (s *Store) DocumentCatalog() driven.DocumentCatalog {
	return &documentCatalog{store: s}
}

// JobQueue returns a JobQueue interface backed by this store.
func (s *Store) JobQueue() driven.JobQueue {
	return &jobQueue{store: s}
}

// ReconcileWriter returns a ReconcileWriter interface backed by this store.
func (s *Store) ReconcileWriter() driven.ReconcileWriter {
	return &reconcileWriter{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx, so the row writers
// work inside and outside transactions.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// upsertDocument writes a document row, inserting or replacing by ID.
func upsertDocument(ctx context.Context, e execer, doc *domain.Document) error {
	_, err := e.ExecContext(ctx, `
		INSERT INTO documents (id, source_path, file_size, mod_time, checksum, status, collection, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_path = excluded.source_path,
			file_size = excluded.file_size,
			mod_time = excluded.mod_time,
			checksum = excluded.checksum,
			status = excluded.status,
			collection = excluded.collection,
			version = excluded.version,
			updated_at = excluded.updated_at
	`, doc.ID, doc.SourcePath, doc.FileSize, nullableTime(doc.ModTime), doc.Checksum,
		string(doc.Status), doc.Collection, doc.Version, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// insertJob writes a new job row.
func insertJob(ctx context.Context, e execer, job *domain.IndexJob) error {
	_, err := e.ExecContext(ctx, `
		INSERT INTO index_jobs (id, document_id, type, status, error, created_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, job.ID, job.DocumentID, string(job.Type), string(job.Status), job.Error,
		job.CreatedAt, nullableTime(job.FinishedAt))
	if err != nil {
		return fmt.Errorf("inserting job: %w", err)
	}
	return nil
}

// nullableTime maps the zero time to SQL NULL.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanDocument reads one document row.
func scanDocument(row scanner) (*domain.Document, error) {
	var doc domain.Document
	var status string
	var modTime sql.NullTime
	if err := row.Scan(&doc.ID, &doc.SourcePath, &doc.FileSize, &modTime, &doc.Checksum,
		&status, &doc.Collection, &doc.Version, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	doc.Status = domain.DocumentStatus(status)
	if modTime.Valid {
		doc.ModTime = modTime.Time
	}
	return &doc, nil
}

// scanJob reads one job row.
func scanJob(row scanner) (*domain.IndexJob, error) {
	var job domain.IndexJob
	var jobType, status string
	var finishedAt sql.NullTime
	if err := row.Scan(&job.ID, &job.DocumentID, &jobType, &status, &job.Error,
		&job.CreatedAt, &finishedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning job: %w", err)
	}
	job.Type = domain.JobType(jobType)
	job.Status = domain.JobStatus(status)
	if finishedAt.Valid {
		job.FinishedAt = finishedAt.Time
	}
	return &job, nil
}

const documentColumns = "id, source_path, file_size, mod_time, checksum, status, collection, version, created_at, updated_at"

const jobColumns = "id, document_id, type, status, error, created_at, finished_at"

// ==================== Document Catalog ====================

// documentCatalog implements driven.DocumentCatalog.
type documentCatalog struct {
	store *Store
}

var _ driven.DocumentCatalog = (*documentCatalog)(nil)

// SaveDocument stores or updates a document.
func (c *documentCatalog) SaveDocument(ctx context.Context, doc *domain.Document) error {
	return upsertDocument(ctx, c.store.db, doc)
}

// GetDocument retrieves a document by ID.
func (c *documentCatalog) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := c.store.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE id = ?", id)
	return scanDocument(row)
}

// GetDocumentByPath retrieves the document registered under a path.
func (c *documentCatalog) GetDocumentByPath(ctx context.Context, path string) (*domain.Document, error) {
	row := c.store.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE source_path = ?", path)
	return scanDocument(row)
}

// ListDocuments returns every catalog row, ordered by source path.
func (c *documentCatalog) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := c.store.db.QueryContext(ctx,
		"SELECT "+documentColumns+" FROM documents ORDER BY source_path")
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// CountDocumentsByStatus returns row counts grouped by lifecycle state.
func (c *documentCatalog) CountDocumentsByStatus(ctx context.Context) (map[domain.DocumentStatus]int, error) {
	rows, err := c.store.db.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM documents GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.DocumentStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[domain.DocumentStatus(status)] = count
	}
	return counts, rows.Err()
}

// ==================== Reconcile Writer ====================

// reconcileWriter implements driven.ReconcileWriter.
type reconcileWriter struct {
	store *Store
}

var _ driven.ReconcileWriter = (*reconcileWriter)(nil)

// ApplyReconcile writes a whole reconcile pass in one transaction.
func (w *reconcileWriter) ApplyReconcile(ctx context.Context, created, updated []domain.Document, jobs []domain.IndexJob) error {
	tx, err := w.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for i := range created {
		if err := upsertDocument(ctx, tx, &created[i]); err != nil {
			return err
		}
	}
	for i := range updated {
		if err := upsertDocument(ctx, tx, &updated[i]); err != nil {
			return err
		}
	}
	for i := range jobs {
		if err := insertJob(ctx, tx, &jobs[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing reconcile: %w", err)
	}
	return nil
}

// ==================== Job Queue ====================

// jobQueue implements driven.JobQueue.
type jobQueue struct {
	store *Store
}

var _ driven.JobQueue = (*jobQueue)(nil)

// EnqueueJob inserts a queued job.
func (q *jobQueue) EnqueueJob(ctx context.Context, job *domain.IndexJob) error {
	return insertJob(ctx, q.store.db, job)
}

// DequeueJobs returns up to limit queued jobs, oldest first.
func (q *jobQueue) DequeueJobs(ctx context.Context, limit int) ([]domain.IndexJob, error) {
	rows, err := q.store.db.QueryContext(ctx,
		"SELECT "+jobColumns+" FROM index_jobs WHERE status = ? ORDER BY created_at ASC, id ASC LIMIT ?",
		string(domain.JobQueued), limit)
	if err != nil {
		return nil, fmt.Errorf("dequeuing jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.IndexJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// MarkJobRunning transitions a queued job to running.
func (q *jobQueue) MarkJobRunning(ctx context.Context, jobID string) error {
	result, err := q.store.db.ExecContext(ctx,
		"UPDATE index_jobs SET status = ? WHERE id = ? AND status = ?",
		string(domain.JobRunning), jobID, string(domain.JobQueued))
	if err != nil {
		return fmt.Errorf("marking job running: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CompleteJob writes a job's terminal state and the affected document
// row in one transaction.
func (q *jobQueue) CompleteJob(ctx context.Context, job *domain.IndexJob, doc *domain.Document) error {
	tx, err := q.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"UPDATE index_jobs SET status = ?, error = ?, finished_at = ? WHERE id = ?",
		string(job.Status), job.Error, nullableTime(job.FinishedAt), job.ID)
	if err != nil {
		return fmt.Errorf("updating job: %w", err)
	}

	if doc != nil {
		if err := upsertDocument(ctx, tx, doc); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing job completion: %w", err)
	}
	return nil
}

// CountQueuedJobs returns the number of jobs still waiting.
func (q *jobQueue) CountQueuedJobs(ctx context.Context) (int, error) {
	var count int
	row := q.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM index_jobs WHERE status = ?", string(domain.JobQueued))
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting queued jobs: %w", err)
	}
	return count, nil
}

// ListJobs returns the most recent jobs, newest first.
func (q *jobQueue) ListJobs(ctx context.Context, limit int) ([]domain.IndexJob, error) {
	rows, err := q.store.db.QueryContext(ctx,
		"SELECT "+jobColumns+" FROM index_jobs ORDER BY created_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.IndexJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}
