package planner

import (
	"context"
	"errors"

	"studyplanner/internal/rag"
)

// scriptedModel replays replies in order and records every prompt it sees.
type scriptedModel struct {
	replies []string
	err     error
	prompts []string
}

func (m *scriptedModel) Complete(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	if len(m.prompts) > len(m.replies) {
		return "", errors.New("no scripted reply left")
	}
	return m.replies[len(m.prompts)-1], nil
}

type fakeRetriever struct {
	results []rag.Result
	queries []string
	topKs   []int
}

func (r *fakeRetriever) Search(_ context.Context, query string, topK int) []rag.Result {
	r.queries = append(r.queries, query)
	r.topKs = append(r.topKs, topK)
	return r.results
}
