package services

import (
	"context"

	"github.com/quarry-labs/quarry/internal/core/domain"
	"github.com/quarry-labs/quarry/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbedder implements driven.Embedder for testing.
type mockEmbedder struct {
	embedding  []float32
	embedErr   error
	dims       int
	batchCalls int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector(), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batchCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.vector()
	}
	return result, nil
}

func (m *mockEmbedder) vector() []float32 {
	if m.embedding != nil {
		return m.embedding
	}
	return make([]float32, m.Dimensions())
}

func (m *mockEmbedder) Dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return 4
}

func (m *mockEmbedder) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbedder) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbedder) Close() error {
	return nil
}

// mockIndex implements driven.VectorIndex for testing. It records
// upserted and deleted IDs so tests can assert pruning behaviour.
type mockIndex struct {
	matches   []domain.Match
	queryErr  error
	upsertErr error
	deleteErr error

	upserted []domain.VectorRecord
	deleted  []string
}

func (m *mockIndex) Upsert(_ context.Context, records []domain.VectorRecord) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserted = append(m.upserted, records...)
	return nil
}

func (m *mockIndex) Query(_ context.Context, _ []float32, topK int) ([]domain.Match, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	if topK > len(m.matches) {
		return m.matches, nil
	}
	return m.matches[:topK], nil
}

func (m *mockIndex) Delete(_ context.Context, ids []string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, ids...)
	return nil
}

func (m *mockIndex) Close() error {
	return nil
}

// mockLedger implements driven.ChunkLedger for testing.
type mockLedger struct {
	counts map[string]int
	getErr error
	setErr error
}

func newMockLedger() *mockLedger {
	return &mockLedger{counts: make(map[string]int)}
}

func (m *mockLedger) ChunkCount(_ context.Context, documentID string) (int, error) {
	if m.getErr != nil {
		return 0, m.getErr
	}
	count, ok := m.counts[documentID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return count, nil
}

func (m *mockLedger) SetChunkCount(_ context.Context, documentID string, count int) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.counts[documentID] = count
	return nil
}

func (m *mockLedger) Forget(_ context.Context, documentID string) error {
	delete(m.counts, documentID)
	return nil
}

// mockComposer implements driven.AnswerComposer for testing.
type mockComposer struct {
	answer      string
	generateErr error
	lastPrompt  string
}

func (m *mockComposer) Generate(_ context.Context, prompt string) (string, error) {
	m.lastPrompt = prompt
	if m.generateErr != nil {
		return "", m.generateErr
	}
	if m.answer != "" {
		return m.answer, nil
	}
	return "mock answer", nil
}

func (m *mockComposer) InputBudget() int {
	return 4096
}

func (m *mockComposer) ModelName() string {
	return "mock-llm"
}

func (m *mockComposer) Close() error {
	return nil
}

// mockCounter implements driven.TokenCounter with a fixed chars-per-token
// ratio so budget tests are deterministic.
type mockCounter struct{}

func (mockCounter) Count(text string) int {
	return len(text)
}

// mockRetriever implements driving.Retriever for testing.
type mockRetriever struct {
	bundle      *domain.ContextBundle
	retrieveErr error
	lastTopK    int
}

func (m *mockRetriever) Retrieve(_ context.Context, _ string, topK int) (*domain.ContextBundle, error) {
	m.lastTopK = topK
	if m.retrieveErr != nil {
		return nil, m.retrieveErr
	}
	if m.bundle != nil {
		return m.bundle, nil
	}
	return &domain.ContextBundle{}, nil
}

// mockSourceStore implements driven.SourceStore for testing.
type mockSourceStore struct {
	sources map[string]domain.Source
	listErr error
}

func newMockSourceStore(sources ...domain.Source) *mockSourceStore {
	store := &mockSourceStore{sources: make(map[string]domain.Source)}
	for _, s := range sources {
		store.sources[s.ID] = s
	}
	return store
}

func (m *mockSourceStore) Save(_ context.Context, source domain.Source) error {
	m.sources[source.ID] = source
	return nil
}

func (m *mockSourceStore) Get(_ context.Context, id string) (*domain.Source, error) {
	source, ok := m.sources[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &source, nil
}

func (m *mockSourceStore) Delete(_ context.Context, id string) error {
	delete(m.sources, id)
	return nil
}

func (m *mockSourceStore) List(_ context.Context) ([]domain.Source, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	result := make([]domain.Source, 0, len(m.sources))
	for _, s := range m.sources {
		result = append(result, s)
	}
	return result, nil
}

// mockConnector implements driven.Connector for testing. Fetch streams
// the configured documents then closes both channels.
type mockConnector struct {
	docs        []domain.Document
	watchDocs   chan domain.Document
	streamErr   error
	validateErr error
	caps        driven.ConnectorCapabilities
	sourceID    string
}

func (m *mockConnector) Type() domain.SourceType {
	return domain.SourceTypeWeb
}

func (m *mockConnector) SourceID() string {
	return m.sourceID
}

func (m *mockConnector) Capabilities() driven.ConnectorCapabilities {
	return m.caps
}

func (m *mockConnector) Validate(_ context.Context) error {
	return m.validateErr
}

func (m *mockConnector) Fetch(_ context.Context) (<-chan domain.Document, <-chan error) {
	docs := make(chan domain.Document)
	errs := make(chan error, 1)
	go func() {
		defer close(docs)
		defer close(errs)
		for _, d := range m.docs {
			docs <- d
		}
		if m.streamErr != nil {
			errs <- m.streamErr
		}
	}()
	return docs, errs
}

func (m *mockConnector) Watch(_ context.Context) (<-chan domain.Document, error) {
	if m.watchDocs == nil {
		return nil, domain.ErrNotImplemented
	}
	return m.watchDocs, nil
}

func (m *mockConnector) Close() error {
	return nil
}

// mockFactory implements driven.ConnectorFactory for testing.
type mockFactory struct {
	connector *mockConnector
	createErr error
}

func (m *mockFactory) Create(_ context.Context, source domain.Source) (driven.Connector, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.connector.sourceID = source.ID
	return m.connector, nil
}
