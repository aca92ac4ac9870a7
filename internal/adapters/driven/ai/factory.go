// Package ai provides factory functions for creating embedder and
// composer adapters from configuration.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/quarry-labs/quarry/internal/adapters/driven/config/file"
	"github.com/quarry-labs/quarry/internal/adapters/driven/embedding"
	ollamaembed "github.com/quarry-labs/quarry/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/quarry-labs/quarry/internal/adapters/driven/embedding/openai"
	ollamallm "github.com/quarry-labs/quarry/internal/adapters/driven/llm/ollama"
	openaillm "github.com/quarry-labs/quarry/internal/adapters/driven/llm/openai"
	"github.com/quarry-labs/quarry/internal/core/domain"
	"github.com/quarry-labs/quarry/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for connectivity validation.
const pingTimeout = 5 * time.Second

// rateLimitBurst is the burst allowance when embedding rate limiting
// is enabled.
const rateLimitBurst = 4

// CreateEmbedder creates the configured embedder, wrapped with a rate
// limiter when one is configured.
func CreateEmbedder(cfg file.EmbeddingConfig) (driven.Embedder, error) {
	var embedder driven.Embedder

	switch cfg.Provider {
	case file.ProviderOllama:
		embedder = ollamaembed.New(ollamaembed.Config{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})

	case file.ProviderOpenAI:
		var err error
		embedder, err = openaiembed.New(openaiembed.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider %q", domain.ErrConfiguration, cfg.Provider)
	}

	if cfg.RequestsPerSecond > 0 {
		embedder = embedding.NewRateLimited(embedder, cfg.RequestsPerSecond, rateLimitBurst)
	}
	return embedder, nil
}

// CreateAndValidateEmbedder creates the configured embedder and checks
// the backing service is reachable before any sync commits to it.
func CreateAndValidateEmbedder(ctx context.Context, cfg file.EmbeddingConfig) (driven.Embedder, error) {
	embedder, err := CreateEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := embedder.Ping(pingCtx); err != nil {
		embedder.Close()
		return nil, fmt.Errorf("embedding service unreachable: %w", err)
	}
	return embedder, nil
}

// CreateComposer creates the configured answer composer.
func CreateComposer(cfg file.LLMConfig) (driven.AnswerComposer, error) {
	switch cfg.Provider {
	case file.ProviderOllama:
		return ollamallm.New(ollamallm.Config{
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
		}), nil

	case file.ProviderOpenAI:
		return openaillm.New(openaillm.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		})

	default:
		return nil, fmt.Errorf("%w: unsupported llm provider %q", domain.ErrConfiguration, cfg.Provider)
	}
}
