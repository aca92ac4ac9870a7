package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/quarry-labs/quarry/internal/core/domain"
	"github.com/quarry-labs/quarry/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an in-memory implementation of driven.VectorIndex
// using brute-force cosine similarity. Useful for tests and for small,
// throwaway corpora where persistence is not wanted.
type VectorIndex struct {
	mu      sync.RWMutex
	records map[string]domain.VectorRecord
}

// NewVectorIndex creates a new in-memory vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{
		records: make(map[string]domain.VectorRecord),
	}
}

// Upsert writes or replaces records by ID.
func (v *VectorIndex) Upsert(_ context.Context, records []domain.VectorRecord) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, record := range records {
		if record.ID == "" {
			return fmt.Errorf("%w: record has no ID", domain.ErrValidation)
		}
		v.records[record.ID] = record
	}
	return nil
}

// Query returns up to topK matches ordered by descending cosine score,
// ties broken by lower chunk index then lexicographic document ID.
func (v *VectorIndex) Query(_ context.Context, vector []float32, topK int) ([]domain.Match, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive, got %d", domain.ErrValidation, topK)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: query vector must not be empty", domain.ErrValidation)
	}

	v.mu.RLock()
	matches := make([]domain.Match, 0, len(v.records))
	for _, record := range v.records {
		matches = append(matches, domain.Match{
			RecordID: record.ID,
			Score:    cosine(vector, record.Embedding),
			Metadata: record.Metadata,
		})
	}
	v.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if matches[i].Metadata.ChunkIndex != matches[j].Metadata.ChunkIndex {
			return matches[i].Metadata.ChunkIndex < matches[j].Metadata.ChunkIndex
		}
		return matches[i].Metadata.DocumentID < matches[j].Metadata.DocumentID
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Delete removes records by ID. Unknown IDs are ignored.
func (v *VectorIndex) Delete(_ context.Context, ids []string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, id := range ids {
		delete(v.records, id)
	}
	return nil
}

// Len returns the number of stored records.
func (v *VectorIndex) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.records)
}

// Close releases resources.
func (v *VectorIndex) Close() error {
	return nil
}

// cosine computes cosine similarity; mismatched or zero vectors score 0.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
