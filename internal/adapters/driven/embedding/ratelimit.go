// Package embedding provides decorators shared by the embedder
// adapters.
package embedding

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/quarry-labs/quarry/internal/core/ports/driven"
)

// Ensure RateLimited implements the interface.
var _ driven.Embedder = (*RateLimited)(nil)

// RateLimited wraps an embedder with a client-side request rate limit
// so bulk syncs stay inside the provider's quota.
type RateLimited struct {
	inner   driven.Embedder
	limiter *rate.Limiter
}

// NewRateLimited wraps inner, allowing requestsPerSecond sustained
// requests with the given burst.
func NewRateLimited(inner driven.Embedder, requestsPerSecond float64, burst int) *RateLimited {
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Embed waits for a rate token, then delegates.
func (r *RateLimited) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.Embed(ctx, text)
}

// EmbedBatch waits for a single rate token per batch, then delegates;
// a batch is one upstream request regardless of size.
func (r *RateLimited) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.EmbedBatch(ctx, texts)
}

// Dimensions returns the wrapped embedder's vector size.
func (r *RateLimited) Dimensions() int {
	return r.inner.Dimensions()
}

// ModelName returns the wrapped embedder's model name.
func (r *RateLimited) ModelName() string {
	return r.inner.ModelName()
}

// Ping delegates without consuming a rate token.
func (r *RateLimited) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx)
}

// Close closes the wrapped embedder.
func (r *RateLimited) Close() error {
	return r.inner.Close()
}
