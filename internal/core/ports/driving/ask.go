package driving

import (
	"context"

	"github.com/quarry-labs/quarry/internal/core/domain"
)

// AskService answers natural-language questions grounded on the
// vector index.
type AskService interface {
	// Ask retrieves context for the question, generates an answer and
	// returns it with its references. Empty or whitespace-only
	// questions fail with domain.ErrValidation.
	Ask(ctx context.Context, question string) (*domain.Answer, error)
}

// Retriever exposes the retrieval path without generation, used by
// the ask service and directly for debugging.
type Retriever interface {
	// Retrieve embeds the query, searches the index for topK matches
	// (topK <= 0 selects the default of 3) and assembles the context
	// bundle.
	Retrieve(ctx context.Context, query string, topK int) (*domain.ContextBundle, error)
}
