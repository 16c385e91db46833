package rag

import (
	"errors"
	"strings"
)

const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 120
)

var ErrInvalidChunkConfig = errors.New("chunk size must be positive and larger than a non-negative overlap")

// Chunker splits text into overlapping fixed-size windows. Offsets are rune
// based so multi-byte text is never cut inside a code point.
type Chunker struct {
	size    int
	overlap int
}

func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 || overlap < 0 || size <= overlap {
		return nil, ErrInvalidChunkConfig
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split collapses whitespace runs to a single space, trims the ends and
// returns windows of at most size runes, each starting size-overlap runes
// after the previous one.
func (c *Chunker) Split(text string) []string {
	runes := []rune(normalizeWhitespace(text))
	if len(runes) == 0 {
		return nil
	}

	step := c.size - c.overlap
	chunks := make([]string, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

func normalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
