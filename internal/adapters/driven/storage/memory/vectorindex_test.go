package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarry-labs/quarry/internal/core/domain"
)

func record(documentID string, chunkIndex int, embedding []float32) domain.VectorRecord {
	return domain.VectorRecord{
		ID:        domain.RecordID(documentID, chunkIndex),
		Embedding: embedding,
		Metadata: domain.RecordMetadata{
			Text:       "text of " + documentID,
			DocumentID: documentID,
			ChunkIndex: chunkIndex,
		},
	}
}

func TestVectorIndex_UpsertAndQuery(t *testing.T) {
	index := NewVectorIndex()
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, []domain.VectorRecord{
		record("doc-1", 0, []float32{1, 0}),
		record("doc-2", 0, []float32{0, 1}),
	}))
	assert.Equal(t, 2, index.Len())

	matches, err := index.Query(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "doc-1#0", matches[0].RecordID)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-6)
}

func TestVectorIndex_Upsert_Replaces(t *testing.T) {
	index := NewVectorIndex()
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, []domain.VectorRecord{record("doc-1", 0, []float32{1, 0})}))
	require.NoError(t, index.Upsert(ctx, []domain.VectorRecord{record("doc-1", 0, []float32{0, 1})}))

	assert.Equal(t, 1, index.Len())
}

func TestVectorIndex_Query_Ordering(t *testing.T) {
	index := NewVectorIndex()
	ctx := context.Background()

	same := []float32{1, 0}
	require.NoError(t, index.Upsert(ctx, []domain.VectorRecord{
		record("doc-b", 1, same),
		record("doc-a", 1, same),
		record("doc-a", 0, []float32{0.5, 0.5}),
	}))

	matches, err := index.Query(ctx, same, 3)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	// Equal scores order by chunk index, then document ID; the
	// lower-scoring record comes last.
	assert.Equal(t, "doc-a#1", matches[0].RecordID)
	assert.Equal(t, "doc-b#1", matches[1].RecordID)
	assert.Equal(t, "doc-a#0", matches[2].RecordID)
}

func TestVectorIndex_Query_InvalidTopK(t *testing.T) {
	index := NewVectorIndex()

	_, err := index.Query(context.Background(), []float32{1}, -1)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestVectorIndex_Query_EmptyIndex(t *testing.T) {
	index := NewVectorIndex()

	matches, err := index.Query(context.Background(), []float32{1}, 5)

	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestVectorIndex_Delete_IgnoresUnknown(t *testing.T) {
	index := NewVectorIndex()
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, []domain.VectorRecord{record("doc-1", 0, []float32{1, 0})}))
	require.NoError(t, index.Delete(ctx, []string{"doc-1#0", "ghost#7"}))

	assert.Zero(t, index.Len())
}

func TestChunkLedger_RoundTrip(t *testing.T) {
	ledger := NewChunkLedger()
	ctx := context.Background()

	_, err := ledger.ChunkCount(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, ledger.SetChunkCount(ctx, "doc-1", 3))
	count, err := ledger.ChunkCount(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, ledger.Forget(ctx, "doc-1"))
	_, err = ledger.ChunkCount(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSourceStore_RoundTrip(t *testing.T) {
	store := NewSourceStore()
	ctx := context.Background()

	source := domain.Source{ID: "src-1", Type: domain.SourceTypeWeb, Name: "docs"}
	require.NoError(t, store.Save(ctx, source))

	got, err := store.Get(ctx, "src-1")
	require.NoError(t, err)
	assert.Equal(t, "docs", got.Name)

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, store.Delete(ctx, "src-1"))
	_, err = store.Get(ctx, "src-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
