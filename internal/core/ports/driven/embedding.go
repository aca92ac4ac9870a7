package driven

import "context"

// Embedder generates vector embeddings from text. It is used on the
// write path (per chunk) and the read path (per question); both must
// share one embedding space for retrieval to be meaningful.
//
// Implementations must be deterministic for identical input under the
// same model version (re-ingestion idempotence depends on it) and
// must reject empty input with domain.ErrValidation: callers filter
// empty chunks before embedding.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
type Embedder interface {
	// Embed generates a vector embedding for the given text.
	// Upstream failures surface as domain.ErrEmbeddingService;
	// deadline hits as domain.ErrTimeout.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, preserving
	// input order. More efficient than calling Embed in a loop.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g. 768, 1536).
	// Fixed for the lifetime of an index; a mismatch with the index
	// is a fatal configuration error.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight
	// request, used at startup before committing to a sync.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
