package driven

import (
	"context"

	"github.com/quarry-labs/quarry/internal/core/domain"
)

// VectorIndex stores vector records and answers k-nearest-neighbour
// similarity queries. It is the system's only persisted state.
//
// The similarity metric (cosine) and the embedding dimension are fixed
// when the index is created and must match the Embedder's output
// space. A metric/embedding mismatch silently degrades relevance; it
// is an operational invariant, not detected at runtime.
//
// Implementations must support concurrent upserts to distinct IDs
// (last-writer-wins per ID). Concurrent writes to the same ID are
// serialized by the caller.
type VectorIndex interface {
	// Upsert writes or replaces records by ID. A partial failure is
	// reported as *domain.UpsertError listing the failed IDs; records
	// before and after a failed one are still written.
	Upsert(ctx context.Context, records []domain.VectorRecord) error

	// Query returns up to topK matches ordered by descending score,
	// ties broken by lower chunk index then lexicographic document
	// ID. topK <= 0 is a domain.ErrValidation; an empty index returns
	// an empty slice, not an error.
	Query(ctx context.Context, vector []float32, topK int) ([]domain.Match, error)

	// Delete removes records by ID. Unknown IDs are ignored.
	Delete(ctx context.Context, ids []string) error

	// Close releases resources.
	Close() error
}

// ChunkLedger tracks how many chunks each document produced on its
// last ingestion. The pipeline uses it to prune stale higher-index
// records when a document shrinks.
type ChunkLedger interface {
	// ChunkCount returns the chunk count recorded for the document,
	// or domain.ErrNotFound if it was never ingested.
	ChunkCount(ctx context.Context, documentID string) (int, error)

	// SetChunkCount records the document's current chunk count.
	SetChunkCount(ctx context.Context, documentID string, count int) error

	// Forget removes the ledger entry for a document.
	Forget(ctx context.Context, documentID string) error
}
