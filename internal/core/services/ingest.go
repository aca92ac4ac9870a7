package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/quarry-labs/quarry/internal/chunker"
	"github.com/quarry-labs/quarry/internal/core/domain"
	"github.com/quarry-labs/quarry/internal/core/ports/driven"
	"github.com/quarry-labs/quarry/internal/logger"
)

// IngestPipeline turns documents into vector records and keeps the
// index consistent across re-ingestions of the same document.
//
// Re-running the pipeline on an unchanged document produces the same
// record IDs and overwrites in place. When a document shrinks, records
// beyond the new chunk count are pruned so no stale chunks linger.
type IngestPipeline struct {
	splitter    *chunker.Splitter
	embedder    driven.Embedder
	index       driven.VectorIndex
	ledger      driven.ChunkLedger
	maxAttempts int
}

// NewIngestPipeline assembles the chunk → embed → upsert → prune pipeline.
func NewIngestPipeline(splitter *chunker.Splitter, embedder driven.Embedder, index driven.VectorIndex, ledger driven.ChunkLedger) *IngestPipeline {
	return &IngestPipeline{
		splitter:    splitter,
		embedder:    embedder,
		index:       index,
		ledger:      ledger,
		maxAttempts: DefaultMaxAttempts,
	}
}

// IngestResult describes what a single document ingestion did.
type IngestResult struct {
	// Skipped is true when the document had no text to index.
	Skipped bool
	// Chunks is the number of records written for the document.
	Chunks int
	// Pruned is the number of stale records removed after shrinkage.
	Pruned int
}

// Ingest processes one document end to end. Failures are returned as
// *domain.DocumentFailure so callers can report which stage broke
// without aborting a whole sync run.
func (p *IngestPipeline) Ingest(ctx context.Context, doc domain.Document) (IngestResult, error) {
	if doc.ID == "" {
		return IngestResult{}, &domain.DocumentFailure{
			DocumentID: doc.ID,
			Stage:      domain.StageReceived,
			Err:        fmt.Errorf("%w: document has no ID", domain.ErrValidation),
		}
	}

	chunks := p.splitter.Chunks(doc)
	if len(chunks) == 0 {
		logger.Debug("document %s has no indexable text, skipping", doc.ID)
		return IngestResult{Skipped: true}, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	var embeddings [][]float32
	err := retry(ctx, p.maxAttempts, "embed batch", func() error {
		var embErr error
		embeddings, embErr = p.embedder.EmbedBatch(ctx, texts)
		return embErr
	})
	if err != nil {
		return IngestResult{}, &domain.DocumentFailure{DocumentID: doc.ID, Stage: domain.StageEmbedded, Err: err}
	}
	if len(embeddings) != len(chunks) {
		return IngestResult{}, &domain.DocumentFailure{
			DocumentID: doc.ID,
			Stage:      domain.StageEmbedded,
			Err:        fmt.Errorf("%w: embedder returned %d vectors for %d chunks", domain.ErrEmbeddingService, len(embeddings), len(chunks)),
		}
	}
	if dims := p.embedder.Dimensions(); dims > 0 {
		for i, emb := range embeddings {
			if len(emb) != dims {
				return IngestResult{}, &domain.DocumentFailure{
					DocumentID: doc.ID,
					Stage:      domain.StageEmbedded,
					Err:        fmt.Errorf("%w: chunk %d embedding has %d dimensions, model %s expects %d", domain.ErrConfiguration, i, len(emb), p.embedder.ModelName(), dims),
				}
			}
		}
	}

	records := make([]domain.VectorRecord, len(chunks))
	for i, c := range chunks {
		records[i] = domain.NewRecord(c, embeddings[i])
	}

	err = retry(ctx, p.maxAttempts, "index upsert", func() error {
		return p.index.Upsert(ctx, records)
	})
	if err != nil {
		return IngestResult{}, &domain.DocumentFailure{DocumentID: doc.ID, Stage: domain.StageIndexed, Err: err}
	}

	pruned, err := p.prune(ctx, doc.ID, len(chunks))
	if err != nil {
		return IngestResult{}, &domain.DocumentFailure{DocumentID: doc.ID, Stage: domain.StageIndexed, Err: err}
	}

	if err := p.ledger.SetChunkCount(ctx, doc.ID, len(chunks)); err != nil {
		return IngestResult{}, &domain.DocumentFailure{DocumentID: doc.ID, Stage: domain.StageIndexed, Err: err}
	}

	logger.Debug("ingested document %s: %d chunks, %d pruned", doc.ID, len(chunks), pruned)
	return IngestResult{Chunks: len(chunks), Pruned: pruned}, nil
}

// Remove deletes every record a document previously contributed.
func (p *IngestPipeline) Remove(ctx context.Context, documentID string) error {
	prior, err := p.priorChunkCount(ctx, documentID)
	if err != nil {
		return err
	}
	if prior > 0 {
		ids := make([]string, prior)
		for i := range ids {
			ids[i] = domain.RecordID(documentID, i)
		}
		err = retry(ctx, p.maxAttempts, "index delete", func() error {
			return p.index.Delete(ctx, ids)
		})
		if err != nil {
			return err
		}
	}
	return p.ledger.Forget(ctx, documentID)
}

// prune removes records beyond newCount left over from a previous,
// longer version of the document.
func (p *IngestPipeline) prune(ctx context.Context, documentID string, newCount int) (int, error) {
	prior, err := p.priorChunkCount(ctx, documentID)
	if err != nil {
		return 0, err
	}
	if prior <= newCount {
		return 0, nil
	}

	stale := make([]string, 0, prior-newCount)
	for i := newCount; i < prior; i++ {
		stale = append(stale, domain.RecordID(documentID, i))
	}
	err = retry(ctx, p.maxAttempts, "index prune", func() error {
		return p.index.Delete(ctx, stale)
	})
	if err != nil {
		return 0, err
	}
	return len(stale), nil
}

// priorChunkCount looks up the last recorded chunk count, treating a
// never-ingested document as zero.
func (p *IngestPipeline) priorChunkCount(ctx context.Context, documentID string) (int, error) {
	prior, err := p.ledger.ChunkCount(ctx, documentID)
	if errors.Is(err, domain.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return prior, nil
}
