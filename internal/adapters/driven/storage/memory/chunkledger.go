package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/quarry-labs/quarry/internal/core/domain"
	"github.com/quarry-labs/quarry/internal/core/ports/driven"
)

// Ensure ChunkLedger implements the interface.
var _ driven.ChunkLedger = (*ChunkLedger)(nil)

// ChunkLedger is an in-memory implementation of driven.ChunkLedger.
type ChunkLedger struct {
	mu     sync.RWMutex
	counts map[string]int
}

// NewChunkLedger creates a new in-memory chunk ledger.
func NewChunkLedger() *ChunkLedger {
	return &ChunkLedger{
		counts: make(map[string]int),
	}
}

// ChunkCount returns the recorded chunk count for a document.
func (l *ChunkLedger) ChunkCount(_ context.Context, documentID string) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	count, ok := l.counts[documentID]
	if !ok {
		return 0, fmt.Errorf("%w: document %s never ingested", domain.ErrNotFound, documentID)
	}
	return count, nil
}

// SetChunkCount records the document's current chunk count.
func (l *ChunkLedger) SetChunkCount(_ context.Context, documentID string, count int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts[documentID] = count
	return nil
}

// Forget removes the ledger entry for a document.
func (l *ChunkLedger) Forget(_ context.Context, documentID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.counts, documentID)
	return nil
}
