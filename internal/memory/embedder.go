package memory

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/charlotte-agent/charlotte/internal/llm"
)

// Embedder produces embedding vectors for memory text. The underlying
// client is constructed lazily on first use so the agent starts even when
// the embedding backend is down, and calls are rate limited to avoid
// flooding a local model during back-fill scans.
//
// A failed call returns an error; callers treat that as "no embedding for
// this item", never as fatal.
type Embedder struct {
	mu        sync.Mutex
	generator llm.EmbeddingGenerator
	construct func() (llm.EmbeddingGenerator, error)
	limiter   *rate.Limiter
}

// NewEmbedder creates an Embedder around a lazily constructed generator.
// ratePerSec and burst bound the call rate; zero values disable limiting.
func NewEmbedder(construct func() (llm.EmbeddingGenerator, error), ratePerSec float64, burst int) *Embedder {
	var limiter *rate.Limiter
	if ratePerSec > 0 {
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(ratePerSec), burst)
	}
	return &Embedder{construct: construct, limiter: limiter}
}

// NewEmbedderForGenerator creates an Embedder around an already built
// generator. Used in tests and when the caller owns client construction.
func NewEmbedderForGenerator(gen llm.EmbeddingGenerator, ratePerSec float64, burst int) *Embedder {
	e := NewEmbedder(nil, ratePerSec, burst)
	e.generator = gen
	return e
}

// Embed returns the embedding vector for text. Safe for concurrent use.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	gen, err := e.client()
	if err != nil {
		return nil, err
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("embedding rate limiter: %w", err)
		}
	}

	vec, err := gen.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("embedding generator returned empty vector")
	}

	return vec, nil
}

// Model returns the embedding model name, or empty before first use.
func (e *Embedder) Model() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.generator == nil {
		return ""
	}
	return e.generator.GetModel()
}

func (e *Embedder) client() (llm.EmbeddingGenerator, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.generator != nil {
		return e.generator, nil
	}
	if e.construct == nil {
		return nil, fmt.Errorf("no embedding generator configured")
	}

	gen, err := e.construct()
	if err != nil {
		return nil, fmt.Errorf("failed to construct embedding generator: %w", err)
	}
	e.generator = gen
	return gen, nil
}
