package rag

import (
	"context"
	"fmt"

	"studyplanner/internal/logger"
)

// Embedder turns texts into fixed-dimension vectors. Index and query must use
// the same embedder for scores to be meaningful.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Name() string
}

const embedProbeText = "syllabus probe"

// SelectEmbedder returns preferred when it can embed a probe text, otherwise
// fallback. The decision is made once, at start-up.
func SelectEmbedder(ctx context.Context, preferred, fallback Embedder, log *logger.Logger) Embedder {
	if log == nil {
		log = logger.Nop()
	}
	if preferred == nil {
		return fallback
	}
	if err := probe(ctx, preferred); err != nil {
		log.Warn("preferred embedder unavailable, using fallback",
			"preferred", preferred.Name(),
			"fallback", fallback.Name(),
			"error", err,
		)
		return fallback
	}
	log.Info("embedder selected", "name", preferred.Name())
	return preferred
}

func probe(ctx context.Context, e Embedder) error {
	vecs, err := e.Embed(ctx, []string{embedProbeText})
	if err != nil {
		return err
	}
	if len(vecs) != 1 || len(vecs[0]) == 0 {
		return fmt.Errorf("embedder %s returned no vector", e.Name())
	}
	return nil
}
