package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarry-labs/quarry/internal/adapters/driven/storage/memory"
	"github.com/quarry-labs/quarry/internal/chunker"
	"github.com/quarry-labs/quarry/internal/core/domain"
)

// termEmbedder embeds text as per-term occurrence counts so similarity
// between a query and a chunk is driven by shared vocabulary. Unlike
// mockEmbedder it produces distinct vectors for distinct texts, which
// lets retrieval tests assert ranking against a real index.
type termEmbedder struct {
	terms []string
}

func newTermEmbedder(terms ...string) *termEmbedder {
	return &termEmbedder{terms: terms}
}

func (e *termEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vector := make([]float32, len(e.terms))
	lower := strings.ToLower(text)
	for i, term := range e.terms {
		vector[i] = float32(strings.Count(lower, term))
	}
	return vector, nil
}

func (e *termEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vector, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vector
	}
	return vectors, nil
}

func (e *termEmbedder) Dimensions() int { return len(e.terms) }

func (e *termEmbedder) ModelName() string { return "term-count" }

func (e *termEmbedder) Ping(_ context.Context) error { return nil }

func (e *termEmbedder) Close() error { return nil }

func newMemoryPipeline(t *testing.T, embedder *termEmbedder) (*IngestPipeline, *memory.VectorIndex, *memory.ChunkLedger) {
	t.Helper()
	splitter, err := chunker.New(40, 0)
	require.NoError(t, err)
	index := memory.NewVectorIndex()
	ledger := memory.NewChunkLedger()
	return NewIngestPipeline(splitter, embedder, index, ledger), index, ledger
}

func TestIngestPipeline_MemoryIndex_ReingestIsIdempotent(t *testing.T) {
	pipeline, index, ledger := newMemoryPipeline(t, newTermEmbedder("granite", "tide"))
	doc := domain.Document{
		ID:    "file:///notes/rocks.md",
		Title: "rocks.md",
		Text:  "Granite forms deep underground.\n\nQuarried granite is cut into blocks.",
	}

	first, err := pipeline.Ingest(context.Background(), doc)
	require.NoError(t, err)
	second, err := pipeline.Ingest(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, first.Chunks, second.Chunks)
	assert.Equal(t, first.Chunks, index.Len(), "re-ingestion must overwrite, not duplicate")
	count, err := ledger.ChunkCount(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Chunks, count)
}

func TestIngestPipeline_MemoryIndex_PrunesShrunkDocument(t *testing.T) {
	pipeline, index, _ := newMemoryPipeline(t, newTermEmbedder("granite", "tide"))
	doc := domain.Document{
		ID:    "file:///notes/rocks.md",
		Title: "rocks.md",
		Text:  "Granite forms deep underground.\n\nQuarried granite is cut into blocks.",
	}

	first, err := pipeline.Ingest(context.Background(), doc)
	require.NoError(t, err)
	require.Greater(t, first.Chunks, 1)

	doc.Text = "Granite forms deep underground."
	second, err := pipeline.Ingest(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, 1, second.Chunks)
	assert.Equal(t, first.Chunks-1, second.Pruned)
	assert.Equal(t, 1, index.Len(), "stale chunks must be removed from the index")
}

func TestRetriever_MemoryIndex_RanksRelevantChunkFirst(t *testing.T) {
	embedder := newTermEmbedder("granite", "tide")
	pipeline, index, _ := newMemoryPipeline(t, embedder)

	docs := []domain.Document{
		{ID: "file:///notes/rocks.md", Title: "rocks.md", Text: "Granite comes from bedrock."},
		{ID: "file:///notes/sea.md", Title: "sea.md", Text: "The tide rises twice daily."},
	}
	for _, doc := range docs {
		_, err := pipeline.Ingest(context.Background(), doc)
		require.NoError(t, err)
	}

	retriever := NewRetriever(embedder, index, nil, 0)
	bundle, err := retriever.Retrieve(context.Background(), "when is the tide high", 2)

	require.NoError(t, err)
	require.NotEmpty(t, bundle.Matches)
	assert.Equal(t, "file:///notes/sea.md", bundle.Matches[0].Metadata.DocumentID)
	assert.Equal(t, "sea.md", bundle.Matches[0].Metadata.Source)
}

func TestSyncOrchestrator_MemorySourceStore_SyncsSource(t *testing.T) {
	pipeline, index, _ := newMemoryPipeline(t, newTermEmbedder("granite", "tide"))
	sources := memory.NewSourceStore()
	source := domain.Source{ID: "src-1", Name: "notes", Type: domain.SourceTypeWeb}
	require.NoError(t, sources.Save(context.Background(), source))

	factory := &mockFactory{connector: &mockConnector{docs: []domain.Document{
		{ID: "https://example.com/a", Title: "A", Text: "Granite bedrock."},
		{ID: "https://example.com/b", Title: "B", Text: "Tide tables."},
	}}}
	orchestrator := NewSyncOrchestrator(sources, factory, pipeline)

	report, err := orchestrator.Sync(context.Background(), "src-1")

	require.NoError(t, err)
	assert.Equal(t, 2, report.Processed)
	assert.Zero(t, report.FailureCount())
	assert.Equal(t, 2, index.Len())

	listed, err := sources.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "notes", listed[0].Name)
}
