package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/quarry-labs/quarry/internal/core/domain"
	"github.com/quarry-labs/quarry/internal/core/ports/driven"
	"github.com/quarry-labs/quarry/internal/core/ports/driving"
	"github.com/quarry-labs/quarry/internal/logger"
)

// SyncEvent reports progress of a running sync to an observer.
type SyncEvent struct {
	SourceID   string
	DocumentID string
	Chunks     int
	Skipped    bool
	Err        error
}

// SyncOrchestrator drives full synchronisation runs: it streams
// documents from a source's connector through the ingestion pipeline,
// isolating per-document failures so one bad document never aborts
// the run.
type SyncOrchestrator struct {
	sources  driven.SourceStore
	factory  driven.ConnectorFactory
	pipeline *IngestPipeline

	mu       sync.Mutex
	active   map[string]*driving.SyncStatus
	progress func(SyncEvent)
}

var _ driving.SyncOrchestrator = (*SyncOrchestrator)(nil)

// NewSyncOrchestrator wires the orchestrator to its source store,
// connector factory and ingestion pipeline.
func NewSyncOrchestrator(sources driven.SourceStore, factory driven.ConnectorFactory, pipeline *IngestPipeline) *SyncOrchestrator {
	return &SyncOrchestrator{
		sources:  sources,
		factory:  factory,
		pipeline: pipeline,
		active:   make(map[string]*driving.SyncStatus),
	}
}

// SetProgressFunc registers an observer invoked after every document
// the orchestrator processes. Must be called before Sync.
func (o *SyncOrchestrator) SetProgressFunc(fn func(SyncEvent)) {
	o.progress = fn
}

// Sync synchronises a single source. Only one sync per source may run
// at a time; a second attempt returns ErrSyncInProgress.
func (o *SyncOrchestrator) Sync(ctx context.Context, sourceID string) (*domain.IngestReport, error) {
	source, err := o.sources.Get(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("loading source %s: %w", sourceID, err)
	}

	if err := o.begin(sourceID); err != nil {
		return nil, err
	}
	defer o.finish(sourceID)

	connector, err := o.factory.Create(ctx, *source)
	if err != nil {
		return nil, fmt.Errorf("creating %s connector: %w", source.Type, err)
	}
	defer connector.Close()

	if connector.Capabilities().SupportsValidation {
		if err := connector.Validate(ctx); err != nil {
			return nil, fmt.Errorf("validating source %s: %w", source.Name, err)
		}
	}

	logger.Info("syncing source %s (%s)", source.Name, source.Type)
	docs, errs := connector.Fetch(ctx)

	report := &domain.IngestReport{}
	var sourceErrs []error

	for docs != nil || errs != nil {
		select {
		case <-ctx.Done():
			return report, ctx.Err()

		case doc, ok := <-docs:
			if !ok {
				docs = nil
				continue
			}
			o.ingestOne(ctx, sourceID, doc, report)

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil {
				logger.Warn("source %s stream error: %v", source.Name, err)
				sourceErrs = append(sourceErrs, err)
			}
		}
	}

	logger.Info("sync of %s finished: %d processed, %d skipped, %d failed",
		source.Name, report.Processed, report.Skipped, report.FailureCount())
	return report, errors.Join(sourceErrs...)
}

// SyncAll synchronises every registered source in turn, merging the
// per-source reports. Source-level errors are joined and returned
// after all sources have been attempted.
func (o *SyncOrchestrator) SyncAll(ctx context.Context) (*domain.IngestReport, error) {
	sources, err := o.sources.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}

	merged := &domain.IngestReport{}
	var allErrs []error
	for _, source := range sources {
		report, err := o.Sync(ctx, source.ID)
		if report != nil {
			merged.Merge(*report)
		}
		if err != nil {
			if ctx.Err() != nil {
				return merged, err
			}
			allErrs = append(allErrs, fmt.Errorf("source %s: %w", source.Name, err))
		}
	}
	return merged, errors.Join(allErrs...)
}

// Watch subscribes to a source's change stream and re-ingests every
// changed document as it arrives, keeping the index fresh without
// manual syncs. Blocks until the context is cancelled or the stream
// ends.
func (o *SyncOrchestrator) Watch(ctx context.Context, sourceID string) error {
	source, err := o.sources.Get(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("loading source %s: %w", sourceID, err)
	}

	connector, err := o.factory.Create(ctx, *source)
	if err != nil {
		return fmt.Errorf("creating %s connector: %w", source.Type, err)
	}
	defer connector.Close()

	if !connector.Capabilities().SupportsWatch {
		return fmt.Errorf("%w: source %s (%s) cannot be watched", domain.ErrNotImplemented, source.Name, source.Type)
	}

	docs, err := connector.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watching source %s: %w", source.Name, err)
	}

	if err := o.begin(sourceID); err != nil {
		return err
	}
	defer o.finish(sourceID)

	logger.Info("watching source %s (%s)", source.Name, source.Type)
	report := &domain.IngestReport{}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case doc, ok := <-docs:
			if !ok {
				return nil
			}
			o.ingestOne(ctx, sourceID, doc, report)
		}
	}
}

// Status reports the progress of the current or most recent sync of a
// source. Sources that have never been synced return ErrNotFound.
func (o *SyncOrchestrator) Status(_ context.Context, sourceID string) (*driving.SyncStatus, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	status, ok := o.active[sourceID]
	if !ok {
		return nil, fmt.Errorf("%w: no sync recorded for source %s", domain.ErrNotFound, sourceID)
	}
	copied := *status
	return &copied, nil
}

func (o *SyncOrchestrator) ingestOne(ctx context.Context, sourceID string, doc domain.Document, report *domain.IngestReport) {
	result, err := o.pipeline.Ingest(ctx, doc)

	o.mu.Lock()
	status := o.active[sourceID]
	switch {
	case err != nil:
		status.ErrorCount++
	default:
		status.DocumentsProcessed++
	}
	o.mu.Unlock()

	switch {
	case err != nil:
		var failure *domain.DocumentFailure
		if !errors.As(err, &failure) {
			failure = &domain.DocumentFailure{DocumentID: doc.ID, Stage: domain.StageReceived, Err: err}
		}
		logger.Warn("document %s failed at stage %s: %v", failure.DocumentID, failure.Stage, failure.Err)
		report.Failures = append(report.Failures, *failure)
	case result.Skipped:
		report.Skipped++
	default:
		report.Processed++
	}

	if o.progress != nil {
		o.progress(SyncEvent{
			SourceID:   sourceID,
			DocumentID: doc.ID,
			Chunks:     result.Chunks,
			Skipped:    result.Skipped,
			Err:        err,
		})
	}
}

func (o *SyncOrchestrator) begin(sourceID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if status, ok := o.active[sourceID]; ok && status.Running {
		return fmt.Errorf("%w: source %s", domain.ErrSyncInProgress, sourceID)
	}
	o.active[sourceID] = &driving.SyncStatus{SourceID: sourceID, Running: true}
	return nil
}

func (o *SyncOrchestrator) finish(sourceID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if status, ok := o.active[sourceID]; ok {
		status.Running = false
	}
}
