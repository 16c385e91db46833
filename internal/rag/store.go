package rag

import (
	"context"
	"fmt"

	"studyplanner/internal/logger"
)

// Record is one chunk ready to be written to a backend.
type Record struct {
	ID       string
	Text     string
	Metadata map[string]any
	Vector   []float32
}

// Result is one search hit. Higher Score means more similar.
type Result struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
	Score    float64        `json:"score"`
}

// Backend persists vectors. Replace must swap the whole working set so that
// concurrent Query calls see either the previous set or the new one.
type Backend interface {
	Replace(ctx context.Context, records []Record) error
	Query(ctx context.Context, vector []float32, topK int) ([]Result, error)
	Name() string
}

// Store is the syllabus vector index. It holds chunks of at most one
// syllabus at a time.
type Store struct {
	chunker  *Chunker
	embedder Embedder
	backend  Backend
	log      *logger.Logger
}

func NewStore(chunker *Chunker, embedder Embedder, backend Backend, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{
		chunker:  chunker,
		embedder: embedder,
		backend:  backend,
		log:      log.With("component", "rag_store", "backend", backend.Name(), "embedder", embedder.Name()),
	}
}

// Index chunks text and replaces the whole index with the result. Empty
// text clears the index and returns zero.
func (s *Store) Index(ctx context.Context, text, sourceLabel string) (int, error) {
	chunks := s.chunker.Split(text)

	records := make([]Record, len(chunks))
	if len(chunks) > 0 {
		vectors, err := s.embedder.Embed(ctx, chunks)
		if err != nil {
			return 0, fmt.Errorf("embed chunks failed: %w", err)
		}
		if len(vectors) != len(chunks) {
			return 0, fmt.Errorf("embedding count mismatch: got %d want %d", len(vectors), len(chunks))
		}
		for i, chunk := range chunks {
			records[i] = Record{
				ID:   ChunkID(sourceLabel, i),
				Text: chunk,
				Metadata: map[string]any{
					"source":      sourceLabel,
					"chunk_index": i,
				},
				Vector: vectors[i],
			}
		}
	}

	if err := s.backend.Replace(ctx, records); err != nil {
		return 0, fmt.Errorf("replace index failed: %w", err)
	}
	s.log.Info("syllabus indexed", "source", sourceLabel, "chunks", len(records))
	return len(records), nil
}

// Search returns up to topK chunks most similar to query. Failures degrade
// to an empty result.
func (s *Store) Search(ctx context.Context, query string, topK int) []Result {
	if topK <= 0 {
		return []Result{}
	}
	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil || len(vectors) != 1 {
		s.log.Warn("embed query failed, returning no context", "error", err)
		return []Result{}
	}
	results, err := s.backend.Query(ctx, vectors[0], topK)
	if err != nil {
		s.log.Warn("index query failed, returning no context", "error", err)
		return []Result{}
	}
	if results == nil {
		return []Result{}
	}
	return results
}

func ChunkID(sourceLabel string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", sourceLabel, index)
}
