package rag

import (
	"context"
	"fmt"
)

const apiEmbeddingBatchSize = 16

// EmbeddingAPI is the remote embeddings endpoint, satisfied by *ai.EmbeddingClient.
type EmbeddingAPI interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

// APIEmbedder batches texts to a remote OpenAI-compatible embeddings endpoint.
type APIEmbedder struct {
	api EmbeddingAPI
}

func NewAPIEmbedder(api EmbeddingAPI) *APIEmbedder {
	return &APIEmbedder{api: api}
}

func (e *APIEmbedder) Name() string { return "openai:" + e.api.Model() }

func (e *APIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += apiEmbeddingBatchSize {
		end := start + apiEmbeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := e.api.Embed(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch %d-%d failed: %w", start, end, err)
		}
		out = append(out, batch...)
	}
	if len(out) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d want %d", len(out), len(texts))
	}
	return out, nil
}
