package domain

import "time"

// JobType selects the effect an index job has on its document.
type JobType string

// Index job types.
const (
	// JobIndex builds the vector collection for a new document.
	JobIndex JobType = "index"

	// JobReindex rebuilds the collection after a content change or
	// detected index drift.
	JobReindex JobType = "reindex"

	// JobDelete removes the collection for a vanished or removed document.
	JobDelete JobType = "delete"
)

// Valid reports whether t is one of the defined job types.
func (t JobType) Valid() bool {
	switch t {
	case JobIndex, JobReindex, JobDelete:
		return true
	}
	return false
}

// JobStatus is the execution state of an index job.
// Transitions: queued → running → succeeded | failed. Terminal states
// are never left; a failed job is replaced by a fresh one on the next
// reconciliation, not revived.
type JobStatus string

// Index job states.
const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Valid reports whether s is one of the defined job states.
func (s JobStatus) Valid() bool {
	switch s {
	case JobQueued, JobRunning, JobSucceeded, JobFailed:
		return true
	}
	return false
}

// Terminal reports whether s is a final state.
func (s JobStatus) Terminal() bool {
	return s == JobSucceeded || s == JobFailed
}

// IndexJob is one unit of indexing work against exactly one document.
// Jobs accumulate as an audit trail; only queued jobs are eligible for
// execution.
type IndexJob struct {
	// ID is the unique job identifier.
	ID string

	// DocumentID is the owning document's stable identity. The catalog
	// cascades job deletion when the document row is removed.
	DocumentID string

	// Type is the effect to apply.
	Type JobType

	// Status is the execution state.
	Status JobStatus

	// Error holds the failure message for failed jobs.
	Error string

	// CreatedAt orders the queue: oldest queued job runs first.
	CreatedAt time.Time

	// FinishedAt is stamped on the transition to a terminal state.
	FinishedAt time.Time
}

// WorkerReport summarises one worker pass over the job queue.
type WorkerReport struct {
	// Processed is the number of jobs picked up this pass.
	Processed int

	// Succeeded is the number of jobs that reached succeeded.
	Succeeded int

	// Failed is the number of jobs that reached failed.
	Failed int

	// Remaining is the queue depth left after the pass.
	Remaining int
}
