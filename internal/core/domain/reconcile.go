package domain

// SampleLimit bounds the number of affected paths reported per diff
// category. Reconciling a large corpus must not produce an unbounded
// summary.
const SampleLimit = 5

// ReconcileSummary is the outcome of one reconciliation pass.
type ReconcileSummary struct {
	// LocalFiles is the number of matching files found on disk.
	LocalFiles int

	// CatalogRecords is the number of documents loaded from the catalog.
	CatalogRecords int

	// ToIndex counts new files (no non-deleted catalog record).
	ToIndex int

	// ToReindex counts content changes, failed-document retries, and
	// index drift together.
	ToReindex int

	// ToDelete counts catalog records whose backing file vanished.
	ToDelete int

	// CollectionsMissing counts indexed documents whose expected vector
	// collection was absent from the live set.
	CollectionsMissing int

	// Created is the number of document rows inserted.
	Created int

	// Updated is the number of document rows mutated.
	Updated int

	// Enqueued is the number of jobs inserted.
	Enqueued int

	// Degraded is set when listing live vector collections failed and
	// the pass fell open to an empty set. Drift detection then
	// over-enqueues reindex work instead of silently skipping it.
	Degraded bool

	// Samples holds up to SampleLimit affected paths per category.
	Samples ReconcileSamples
}

// ReconcileSamples carries a bounded sample of affected paths for
// observability.
type ReconcileSamples struct {
	Index              []string
	Reindex            []string
	Delete             []string
	CollectionsMissing []string
}

// addSample appends path if the slice is still below SampleLimit.
func addSample(samples []string, path string) []string {
	if len(samples) >= SampleLimit {
		return samples
	}
	return append(samples, path)
}

// SampleIndex records a new-file path, bounded by SampleLimit.
func (s *ReconcileSummary) SampleIndex(path string) {
	s.Samples.Index = addSample(s.Samples.Index, path)
}

// SampleReindex records a changed-file path, bounded by SampleLimit.
func (s *ReconcileSummary) SampleReindex(path string) {
	s.Samples.Reindex = addSample(s.Samples.Reindex, path)
}

// SampleDelete records an orphaned-record path, bounded by SampleLimit.
func (s *ReconcileSummary) SampleDelete(path string) {
	s.Samples.Delete = addSample(s.Samples.Delete, path)
}

// SampleCollectionMissing records an index-drift path, bounded by
// SampleLimit.
func (s *ReconcileSummary) SampleCollectionMissing(path string) {
	s.Samples.CollectionsMissing = addSample(s.Samples.CollectionsMissing, path)
}
