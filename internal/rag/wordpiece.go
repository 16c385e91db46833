package rag

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	tokenCLS = "[CLS]"
	tokenSEP = "[SEP]"
	tokenPAD = "[PAD]"
	tokenUNK = "[UNK]"

	maxWordRunes = 100
)

// WordPieceTokenizer implements the uncased BERT tokenizer used by
// sentence-transformers MiniLM models.
type WordPieceTokenizer struct {
	vocab map[string]int64
	cls   int64
	sep   int64
	pad   int64
	unk   int64
}

func LoadWordPieceTokenizer(path string) (*WordPieceTokenizer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocab failed: %w", err)
	}
	defer f.Close()
	return NewWordPieceTokenizer(f)
}

// NewWordPieceTokenizer reads a vocab with one token per line; the line
// number is the token id.
func NewWordPieceTokenizer(r io.Reader) (*WordPieceTokenizer, error) {
	vocab := make(map[string]int64)
	sc := bufio.NewScanner(r)
	var id int64
	for sc.Scan() {
		token := strings.TrimRight(sc.Text(), "\r")
		if _, exists := vocab[token]; !exists {
			vocab[token] = id
		}
		id++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read vocab failed: %w", err)
	}

	t := &WordPieceTokenizer{vocab: vocab}
	for _, special := range []struct {
		token string
		dst   *int64
	}{
		{tokenCLS, &t.cls},
		{tokenSEP, &t.sep},
		{tokenPAD, &t.pad},
		{tokenUNK, &t.unk},
	} {
		v, ok := vocab[special.token]
		if !ok {
			return nil, fmt.Errorf("vocab is missing %s", special.token)
		}
		*special.dst = v
	}
	return t, nil
}

// Encode returns input ids and attention mask of exactly maxLen entries:
// [CLS] tokens... [SEP] followed by padding.
func (t *WordPieceTokenizer) Encode(text string, maxLen int) (ids, mask []int64) {
	ids = make([]int64, maxLen)
	mask = make([]int64, maxLen)
	if maxLen < 2 {
		return ids, mask
	}

	pieces := t.Tokenize(text)
	if len(pieces) > maxLen-2 {
		pieces = pieces[:maxLen-2]
	}

	ids[0], mask[0] = t.cls, 1
	for i, piece := range pieces {
		ids[i+1], mask[i+1] = t.id(piece), 1
	}
	ids[len(pieces)+1], mask[len(pieces)+1] = t.sep, 1
	for i := len(pieces) + 2; i < maxLen; i++ {
		ids[i] = t.pad
	}
	return ids, mask
}

// Tokenize splits text into word pieces without special tokens.
func (t *WordPieceTokenizer) Tokenize(text string) []string {
	var out []string
	for _, word := range basicTokenize(text) {
		out = append(out, t.wordPieces(word)...)
	}
	return out
}

func (t *WordPieceTokenizer) id(piece string) int64 {
	if v, ok := t.vocab[piece]; ok {
		return v
	}
	return t.unk
}

// wordPieces applies greedy longest-match-first. A word with any unmatched
// remainder becomes a single [UNK].
func (t *WordPieceTokenizer) wordPieces(word string) []string {
	runes := []rune(word)
	if len(runes) > maxWordRunes {
		return []string{tokenUNK}
	}

	var pieces []string
	for start := 0; start < len(runes); {
		end := len(runes)
		match := ""
		for end > start {
			candidate := string(runes[start:end])
			if start > 0 {
				candidate = "##" + candidate
			}
			if _, ok := t.vocab[candidate]; ok {
				match = candidate
				break
			}
			end--
		}
		if match == "" {
			return []string{tokenUNK}
		}
		pieces = append(pieces, match)
		start = end
	}
	return pieces
}

// basicTokenize lower-cases, strips accents and splits on whitespace,
// punctuation and CJK characters.
func basicTokenize(text string) []string {
	text = stripAccents(strings.ToLower(text))

	var words []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}
	for _, r := range text {
		switch {
		case r == 0 || r == unicode.ReplacementChar || (unicode.IsControl(r) && !unicode.IsSpace(r)):
			continue
		case unicode.IsSpace(r):
			flush()
		case isPunctuation(r) || isCJK(r):
			flush()
			words = append(words, string(r))
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return words
}

func stripAccents(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isPunctuation(r rune) bool {
	if (r >= 33 && r <= 47) || (r >= 58 && r <= 64) || (r >= 91 && r <= 96) || (r >= 123 && r <= 126) {
		return true
	}
	return unicode.IsPunct(r)
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r)
}
