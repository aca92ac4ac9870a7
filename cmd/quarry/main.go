// Command quarry is the retrieval-augmented question answering CLI.
// It wires the SQLite store, the AI providers and the core services
// together, then hands control to the cobra command tree.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/quarry-labs/quarry/internal/adapters/driven/ai"
	"github.com/quarry-labs/quarry/internal/adapters/driven/config/file"
	"github.com/quarry-labs/quarry/internal/adapters/driven/storage/sqlite"
	"github.com/quarry-labs/quarry/internal/adapters/driven/tokens"
	"github.com/quarry-labs/quarry/internal/adapters/driving/cli"
	"github.com/quarry-labs/quarry/internal/chunker"
	"github.com/quarry-labs/quarry/internal/connectors"
	"github.com/quarry-labs/quarry/internal/core/ports/driven"
	"github.com/quarry-labs/quarry/internal/core/ports/driving"
	"github.com/quarry-labs/quarry/internal/core/services"
	"github.com/quarry-labs/quarry/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A .env file is optional; environment variables win either way.
	_ = godotenv.Load()

	cfgPath, err := file.DefaultPath()
	if err != nil {
		return err
	}
	cfg, err := file.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := sqlite.NewStore(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	askService, retriever, syncOrchestrator := buildServices(cfg, store)

	cli.SetVersion(version)
	cli.SetServices(askService, retriever, syncOrchestrator, store.SourceStore())
	return cli.Execute()
}

// buildServices wires the AI-dependent services. A misconfigured
// provider degrades the matching commands instead of blocking the
// whole CLI: source management keeps working without any API key.
func buildServices(cfg *file.Config, store *sqlite.Store) (driving.AskService, driving.Retriever, driving.SyncOrchestrator) {
	embedder, err := ai.CreateEmbedder(cfg.Embedding)
	if err != nil {
		logger.Warn("embedder unavailable: %v", err)
		return nil, nil, nil
	}

	splitter, err := chunker.New(cfg.Chunking.Size, cfg.Chunking.Overlap)
	if err != nil {
		logger.Warn("invalid chunking config: %v", err)
		return nil, nil, nil
	}

	var composer driven.AnswerComposer
	if composer, err = ai.CreateComposer(cfg.LLM); err != nil {
		// Retrieval and sync still work without a composer; only ask
		// needs it.
		logger.Warn("answer composer unavailable: %v", err)
		composer = nil
	}

	tokenBudget := 0
	if composer != nil {
		tokenBudget = composer.InputBudget()
	}
	counter := tokens.NewForModel(cfg.LLM.Model)

	pipeline := services.NewIngestPipeline(splitter, embedder, store.VectorIndex(), store.ChunkLedger())
	retriever := services.NewRetriever(embedder, store.VectorIndex(), counter, tokenBudget)
	askService := services.NewAskService(retriever, composer, cfg.Retrieval.TopK)

	syncOrchestrator := services.NewSyncOrchestrator(store.SourceStore(), connectors.NewFactory(), pipeline)
	syncOrchestrator.SetProgressFunc(func(event services.SyncEvent) {
		if event.Err != nil {
			logger.Debug("sync %s: %s failed: %v", event.SourceID, event.DocumentID, event.Err)
			return
		}
		logger.Debug("sync %s: indexed %s (%d chunks)", event.SourceID, event.DocumentID, event.Chunks)
	})

	return askService, retriever, syncOrchestrator
}
