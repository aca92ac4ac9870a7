package cli

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/quarry-labs/quarry/internal/core/domain"
	"github.com/quarry-labs/quarry/internal/core/ports/driving"
)

// executeCommand runs the root command with the given args and
// captures its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

// setupTestServices swaps in mock services and returns them; the old
// services are restored when the test ends.
func setupTestServices(t *testing.T) (*mockAskService, *mockRetriever, *mockSyncOrchestrator, *mockSourceStore) {
	t.Helper()
	oldAsk, oldRetriever := askService, retriever
	oldSync, oldSources := syncOrchestrator, sourceStore

	ask := &mockAskService{answer: &domain.Answer{Text: "the answer"}}
	ret := &mockRetriever{bundle: &domain.ContextBundle{}}
	sync := &mockSyncOrchestrator{report: &domain.IngestReport{}}
	sources := &mockSourceStore{sources: make(map[string]domain.Source)}

	askService, retriever = ask, ret
	syncOrchestrator, sourceStore = sync, sources

	t.Cleanup(func() {
		askService, retriever = oldAsk, oldRetriever
		syncOrchestrator, sourceStore = oldSync, oldSources
	})
	return ask, ret, sync, sources
}

type mockAskService struct {
	answer       *domain.Answer
	askErr       error
	lastQuestion string
}

func (m *mockAskService) Ask(_ context.Context, question string) (*domain.Answer, error) {
	m.lastQuestion = question
	if m.askErr != nil {
		return nil, m.askErr
	}
	return m.answer, nil
}

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
	return m.bundle, nil
}

type mockSyncOrchestrator struct {
	report     *domain.IngestReport
	syncErr    error
	lastSource string
	syncedAll  bool
}

func (m *mockSyncOrchestrator) Sync(_ context.Context, sourceID string) (*domain.IngestReport, error) {
	m.lastSource = sourceID
	if m.syncErr != nil {
		return nil, m.syncErr
	}
	return m.report, nil
}

func (m *mockSyncOrchestrator) SyncAll(_ context.Context) (*domain.IngestReport, error) {
	m.syncedAll = true
	if m.syncErr != nil {
		return nil, m.syncErr
	}
	return m.report, nil
}

func (m *mockSyncOrchestrator) Status(_ context.Context, sourceID string) (*driving.SyncStatus, error) {
	return &driving.SyncStatus{SourceID: sourceID}, nil
}

func (m *mockSyncOrchestrator) Watch(_ context.Context, sourceID string) error {
	m.lastSource = sourceID
	return m.syncErr
}

type mockSourceStore struct {
	sources map[string]domain.Source
	saveErr error
}

func (m *mockSourceStore) Save(_ context.Context, source domain.Source) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.sources[source.ID] = source
	return nil
}

func (m *mockSourceStore) Get(_ context.Context, id string) (*domain.Source, error) {
	source, ok := m.sources[id]
	if !ok {
		return nil, fmt.Errorf("%w: source %s", domain.ErrNotFound, id)
	}
	return &source, nil
}

func (m *mockSourceStore) Delete(_ context.Context, id string) error {
	delete(m.sources, id)
	return nil
}

func (m *mockSourceStore) List(_ context.Context) ([]domain.Source, error) {
	out := make([]domain.Source, 0, len(m.sources))
	for _, source := range m.sources {
		out = append(out, source)
	}
	return out, nil
}
