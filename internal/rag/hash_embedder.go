package rag

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

const DefaultHashDimensions = 384

// HashEmbedder is a deterministic, dependency-free embedder based on feature
// hashing of lower-cased words and character trigrams. It needs no model files
// and is used when no neural embedder is available.
type HashEmbedder struct {
	dim int
}

func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = DefaultHashDimensions
	}
	return &HashEmbedder{dim: dim}
}

func (h *HashEmbedder) Name() string { return "hash" }

func (h *HashEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = h.embedOne(text)
	}
	return out, nil
}

func (h *HashEmbedder) embedOne(text string) []float32 {
	vec := make([]float32, h.dim)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, word := range words {
		h.add(vec, "w:"+word, 1)
		padded := []rune("#" + word + "#")
		for j := 0; j+3 <= len(padded); j++ {
			h.add(vec, "t:"+string(padded[j:j+3]), 0.5)
		}
	}
	return l2Normalize(vec)
}

// add uses one hash bit for the sign so collisions tend to cancel out.
func (h *HashEmbedder) add(vec []float32, feature string, weight float32) {
	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(feature))
	sum := hasher.Sum64()
	idx := int(sum % uint64(h.dim))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vec[idx] += weight
}
