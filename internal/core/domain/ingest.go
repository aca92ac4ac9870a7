package domain

// IngestStage names a step of the per-document ingestion state
// machine: Received -> Chunked -> Embedded -> Indexed -> Done, or
// Failed(stage) on the first stage error.
type IngestStage string

// Ingestion stages.
const (
	StageReceived IngestStage = "received"
	StageChunked  IngestStage = "chunked"
	StageEmbedded IngestStage = "embedded"
	StageIndexed  IngestStage = "indexed"
	StageDone     IngestStage = "done"
)

// DocumentFailure records a per-document ingestion failure and the
// stage it occurred at. One failed document never aborts the batch.
type DocumentFailure struct {
	// DocumentID identifies the failed document.
	DocumentID string

	// Stage is the pipeline stage that failed.
	Stage IngestStage

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (f DocumentFailure) Error() string {
	return "ingest " + f.DocumentID + " at " + string(f.Stage) + ": " + f.Err.Error()
}

// Unwrap exposes the underlying error.
func (f DocumentFailure) Unwrap() error {
	return f.Err
}

// IngestReport aggregates the outcome of ingesting a batch of
// documents. The sync operation succeeds partially: it reports which
// documents failed instead of aborting on the first error.
type IngestReport struct {
	// Processed counts documents fully indexed.
	Processed int

	// Skipped counts documents with empty text (logged no-ops).
	Skipped int

	// Failures holds the per-document errors.
	Failures []DocumentFailure
}

// Merge folds another report into this one.
func (r *IngestReport) Merge(other IngestReport) {
	r.Processed += other.Processed
	r.Skipped += other.Skipped
	r.Failures = append(r.Failures, other.Failures...)
}

// FailureCount returns the number of failed documents.
func (r *IngestReport) FailureCount() int {
	return len(r.Failures)
}
