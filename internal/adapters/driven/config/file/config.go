// Package file loads quarry configuration from a TOML file, with
// environment variables supplying the secrets that should not live on
// disk.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/quarry-labs/quarry/internal/chunker"
	"github.com/quarry-labs/quarry/internal/core/domain"
)

// Provider names accepted in the embedding and llm sections.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Config is the full quarry configuration.
type Config struct {
	Embedding EmbeddingConfig `toml:"embedding"`
	LLM       LLMConfig       `toml:"llm"`
	Storage   StorageConfig   `toml:"storage"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Chunking  ChunkingConfig  `toml:"chunking"`
}

// EmbeddingConfig configures the embedder.
type EmbeddingConfig struct {
	// Provider selects the embedder backend: "openai" or "ollama".
	Provider string `toml:"provider"`

	// Model is the embedding model name. Empty selects the provider
	// default.
	Model string `toml:"model"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `toml:"base_url"`

	// APIKey is read from OPENAI_API_KEY when empty.
	APIKey string `toml:"api_key"`

	// RequestsPerSecond caps embedding API calls during sync. Zero
	// disables client-side rate limiting.
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// LLMConfig configures the answer composer.
type LLMConfig struct {
	// Provider selects the composer backend: "openai" or "ollama".
	Provider string `toml:"provider"`

	// Model is the chat model name. Empty selects the provider default.
	Model string `toml:"model"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `toml:"base_url"`

	// APIKey is read from OPENAI_API_KEY when empty.
	APIKey string `toml:"api_key"`

	// MaxTokens caps the answer length. Zero lets the model decide.
	MaxTokens int `toml:"max_tokens"`

	// Temperature controls sampling randomness.
	Temperature float64 `toml:"temperature"`
}

// StorageConfig configures the SQLite store.
type StorageConfig struct {
	// DataDir holds the database file. Empty defaults to
	// ~/.quarry/data.
	DataDir string `toml:"data_dir"`
}

// RetrievalConfig configures the retrieval path.
type RetrievalConfig struct {
	// TopK is the number of context chunks retrieved per question.
	TopK int `toml:"top_k"`
}

// ChunkingConfig configures the document splitter.
type ChunkingConfig struct {
	// Size is the maximum chunk size in characters.
	Size int `toml:"size"`

	// Overlap is the number of characters carried between adjacent
	// chunks.
	Overlap int `toml:"overlap"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Embedding: EmbeddingConfig{Provider: ProviderOpenAI},
		LLM:       LLMConfig{Provider: ProviderOpenAI},
		Retrieval: RetrievalConfig{TopK: 3},
		Chunking: ChunkingConfig{
			Size:    chunker.DefaultChunkSize,
			Overlap: chunker.DefaultOverlap,
		},
	}
}

// DefaultPath returns ~/.quarry/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".quarry", "config.toml"), nil
}

// Load reads the configuration file at path. A missing file yields the
// defaults; a malformed one is a configuration error. API keys absent
// from the file are taken from the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No file yet: defaults plus environment.
	case err != nil:
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrConfiguration, path, err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parsing %s: %v", domain.ErrConfiguration, path, err)
		}
	}

	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path with restricted permissions.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// Validate checks provider names and numeric ranges.
func (c *Config) Validate() error {
	if !validProvider(c.Embedding.Provider) {
		return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrConfiguration, c.Embedding.Provider)
	}
	if !validProvider(c.LLM.Provider) {
		return fmt.Errorf("%w: unknown llm provider %q", domain.ErrConfiguration, c.LLM.Provider)
	}
	if c.Retrieval.TopK < 0 {
		return fmt.Errorf("%w: retrieval.top_k must not be negative", domain.ErrConfiguration)
	}
	if c.Chunking.Size <= 0 {
		return fmt.Errorf("%w: chunking.size must be positive", domain.ErrConfiguration)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("%w: chunking.overlap must be in [0, size)", domain.ErrConfiguration)
	}
	return nil
}

func validProvider(name string) bool {
	return name == ProviderOpenAI || name == ProviderOllama
}
