package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/quarry-labs/quarry/internal/core/domain"
	"github.com/quarry-labs/quarry/internal/core/ports/driven"
	"github.com/quarry-labs/quarry/internal/core/ports/driving"
	"github.com/quarry-labs/quarry/internal/logger"
)

// DefaultTopK is the number of matches retrieved when the caller does
// not ask for a specific count.
const DefaultTopK = 3

// promptPreamble frames retrieved context for the answering model.
const promptPreamble = "You are a helpful assistant. Use the following context to answer the user's question as accurately as possible. If the context doesn't have the answer, say you don't know."

// Retriever embeds a query, searches the vector index and assembles a
// grounded prompt that fits within the composer's input budget.
type Retriever struct {
	embedder    driven.Embedder
	index       driven.VectorIndex
	counter     driven.TokenCounter
	tokenBudget int
	maxAttempts int
}

var _ driving.Retriever = (*Retriever)(nil)

// NewRetriever creates a retriever. tokenBudget caps the assembled
// prompt; zero or negative disables budget enforcement.
func NewRetriever(embedder driven.Embedder, index driven.VectorIndex, counter driven.TokenCounter, tokenBudget int) *Retriever {
	return &Retriever{
		embedder:    embedder,
		index:       index,
		counter:     counter,
		tokenBudget: tokenBudget,
		maxAttempts: DefaultMaxAttempts,
	}
}

// Retrieve runs the query against the index and builds the context
// bundle. An empty index yields an empty bundle, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) (*domain.ContextBundle, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query must not be empty", domain.ErrValidation)
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	var embedding []float32
	err := retry(ctx, r.maxAttempts, "embed query", func() error {
		var embErr error
		embedding, embErr = r.embedder.Embed(ctx, query)
		return embErr
	})
	if err != nil {
		return nil, err
	}

	var matches []domain.Match
	err = retry(ctx, r.maxAttempts, "index query", func() error {
		var qErr error
		matches, qErr = r.index.Query(ctx, embedding, topK)
		return qErr
	})
	if err != nil {
		return nil, err
	}

	matches = r.fitBudget(query, matches)

	rendered := make([]domain.RenderedMatch, len(matches))
	for i, m := range matches {
		rendered[i] = m.Render(i + 1)
	}

	return &domain.ContextBundle{
		Prompt:   assemblePrompt(query, rendered),
		Rendered: rendered,
		Matches:  matches,
	}, nil
}

// fitBudget drops the lowest-ranked matches until the assembled prompt
// fits within the token budget. Matches are dropped whole so the model
// never sees a truncated chunk.
func (r *Retriever) fitBudget(query string, matches []domain.Match) []domain.Match {
	if r.tokenBudget <= 0 || r.counter == nil {
		return matches
	}

	for len(matches) > 0 {
		rendered := make([]domain.RenderedMatch, len(matches))
		for i, m := range matches {
			rendered[i] = m.Render(i + 1)
		}
		prompt := assemblePrompt(query, rendered)
		if r.counter.Count(prompt) <= r.tokenBudget {
			return matches
		}
		logger.Debug("prompt over token budget with %d matches, dropping lowest ranked", len(matches))
		matches = matches[:len(matches)-1]
	}
	return matches
}

// assemblePrompt joins the preamble, the rendered context blocks and
// the question into the text sent to the answering model.
func assemblePrompt(query string, rendered []domain.RenderedMatch) string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString("\n\nContext:\n")
	if len(rendered) == 0 {
		b.WriteString("(no relevant context found)\n")
	} else {
		for _, rm := range rendered {
			b.WriteString(rm.String())
			b.WriteString("\n")
		}
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(query)
	return b.String()
}
