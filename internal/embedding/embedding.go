// Package embedding wraps the Gemini embedding provider behind a small
// client that also enforces the configured vector dimension, so a
// provider/schema mismatch surfaces before anything is written.
package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/googleai"

	"docindex/internal/config"
)

var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

type Client struct {
	embedder *embeddings.EmbedderImpl
	dim      int
}

// NewGeminiClient builds an embedding client for the configured Gemini
// model. The API key must already be validated by the caller.
func NewGeminiClient(ctx context.Context, cfg config.EmbeddingConfig, apiKey string) (*Client, error) {
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultEmbeddingModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	return &Client{embedder: embedder, dim: cfg.Dimension}, nil
}

// Embed returns the vector for one chunk of text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := c.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}
	if len(vec) != c.dim {
		return nil, fmt.Errorf("%w: provider returned %d values, schema expects %d",
			ErrDimensionMismatch, len(vec), c.dim)
	}
	return vec, nil
}
