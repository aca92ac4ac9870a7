package driving

import (
	"context"

	"github.com/quarry-labs/quarry/internal/core/domain"
)

// SyncOrchestrator coordinates document ingestion from sources.
type SyncOrchestrator interface {
	// Sync ingests all documents from one source and returns the
	// aggregate report. Per-document failures are collected in the
	// report, not returned as an error.
	Sync(ctx context.Context, sourceID string) (*domain.IngestReport, error)

	// SyncAll ingests every configured source. A failing source is
	// recorded in the report and does not abort the remaining ones.
	SyncAll(ctx context.Context) (*domain.IngestReport, error)

	// Status returns the sync status for a source.
	Status(ctx context.Context, sourceID string) (*SyncStatus, error)

	// Watch streams changed documents from a source straight into the
	// ingestion pipeline until the context is cancelled. Connectors
	// without watch support fail with domain.ErrNotImplemented.
	Watch(ctx context.Context, sourceID string) error
}

// SyncStatus represents the current state of a sync operation.
type SyncStatus struct {
	// SourceID identifies the source.
	SourceID string

	// Running indicates if sync is currently in progress.
	Running bool

	// DocumentsProcessed is the count of documents ingested so far.
	DocumentsProcessed int

	// ErrorCount is the number of per-document failures so far.
	ErrorCount int
}
