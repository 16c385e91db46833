package planner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyplanner/internal/rag"
)

var fixedNow = func() time.Time { return time.Date(2026, 1, 20, 9, 0, 0, 0, time.UTC) }

func validRequest() Request {
	return Request{Subjects: []string{"DBMS", "Deep Learning"}, ExamDate: "2026-02-10", HoursPerDay: 3}
}

func TestGenerator_FirstAttemptSucceeds(t *testing.T) {
	model := &scriptedModel{replies: []string{
		`[{"subject":"DBMS","topic":"ER Model","date":"2026-01-21","hours":2},{"subject":"Deep Learning","topic":"CNN Basics","date":"2026-01-21"}]`,
	}}
	retriever := &fakeRetriever{results: []rag.Result{{Text: "Unit 1 ER model"}, {Text: "Unit 2 CNN"}}}
	g := NewGenerator(model, retriever, GeneratorConfig{}, nil, WithClock(fixedNow))

	entries, err := g.Generate(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Subject: "DBMS", Topic: "ER Model", Date: "2026-01-21", Hours: 2},
		{Subject: "Deep Learning", Topic: "CNN Basics", Date: "2026-01-21", Hours: 1},
	}, entries)

	require.Len(t, model.prompts, 1)
	assert.Equal(t, []string{"DBMS Deep Learning syllabus units modules important topics"}, retriever.queries)
	assert.Equal(t, []int{DefaultPlanTopK}, retriever.topKs)

	prompt := model.prompts[0]
	assert.Contains(t, prompt, "[Chunk 1] Unit 1 ER model\n\n[Chunk 2] Unit 2 CNN")
	assert.Contains(t, prompt, "Subjects: DBMS, Deep Learning")
	assert.Contains(t, prompt, "Exam Date: 2026-02-10")
	assert.Contains(t, prompt, "Hours Per Day: 3")
	assert.Contains(t, prompt, "Total hours per day must be <= 3")
	assert.Contains(t, prompt, "Today: 2026-01-20")
	assert.NotContains(t, prompt, "IMPORTANT FINAL WARNING")
}

func TestGenerator_NoContextPlaceholder(t *testing.T) {
	model := &scriptedModel{replies: []string{`[{"subject":"A","topic":"B","date":"2026-01-21","hours":1}]`}}
	g := NewGenerator(model, &fakeRetriever{}, GeneratorConfig{}, nil, WithClock(fixedNow))

	_, err := g.Generate(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Contains(t, model.prompts[0], "Syllabus Context (RAG chunks):\nNo syllabus context found.")
}

func TestGenerator_RepairsAfterBadOutput(t *testing.T) {
	model := &scriptedModel{replies: []string{
		"Here is a nice plan for you!",
		"```json\n[{\"subject\":\"DBMS\",}]\n```",
		`[{"subject":"DBMS","topic":"Joins","date":"2026-01-22","hours":"2.5"}]`,
	}}
	g := NewGenerator(model, &fakeRetriever{}, GeneratorConfig{}, nil, WithClock(fixedNow))

	entries, err := g.Generate(context.Background(), validRequest())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 2.5, entries[0].Hours)

	require.Len(t, model.prompts, 3)
	for i, prompt := range model.prompts {
		assert.Equal(t, i, strings.Count(prompt, "IMPORTANT FINAL WARNING"), "attempt %d", i+1)
	}
	assert.True(t, strings.HasPrefix(model.prompts[2], model.prompts[1]))
}

func TestGenerator_FailsAfterThreeBadOutputs(t *testing.T) {
	model := &scriptedModel{replies: []string{"nope", "still no", "[]"}}
	g := NewGenerator(model, &fakeRetriever{}, GeneratorConfig{}, nil, WithClock(fixedNow))

	entries, err := g.Generate(context.Background(), validRequest())
	assert.Nil(t, entries)
	assert.ErrorIs(t, err, ErrPlanGenerationFailed)
	assert.ErrorIs(t, err, ErrNoJSONArrayFound)
	assert.Len(t, model.prompts, 3)
}

func TestGenerator_ModelErrorAbortsWithoutRetry(t *testing.T) {
	model := &scriptedModel{err: errors.New("429 too many requests")}
	g := NewGenerator(model, &fakeRetriever{}, GeneratorConfig{}, nil)

	_, err := g.Generate(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrModelInvocation)
	assert.NotErrorIs(t, err, ErrPlanGenerationFailed)
	assert.Len(t, model.prompts, 1)
}

func TestGenerator_HonoursConfiguredAttempts(t *testing.T) {
	model := &scriptedModel{replies: []string{"a", "b", "c", "d", "e"}}
	g := NewGenerator(model, &fakeRetriever{}, GeneratorConfig{MaxAttempts: 5, TopK: 2}, nil)

	_, err := g.Generate(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrPlanGenerationFailed)
	assert.Len(t, model.prompts, 5)
}

func TestGenerator_ValidatesRequest(t *testing.T) {
	cases := map[string]Request{
		"no subjects":    {Subjects: nil, ExamDate: "2026-02-10", HoursPerDay: 2},
		"blank subjects": {Subjects: []string{" ", ""}, ExamDate: "2026-02-10", HoursPerDay: 2},
		"bad date":       {Subjects: []string{"OS"}, ExamDate: "10/02/2026", HoursPerDay: 2},
		"zero hours":     {Subjects: []string{"OS"}, ExamDate: "2026-02-10", HoursPerDay: 0},
		"negative hours": {Subjects: []string{"OS"}, ExamDate: "2026-02-10", HoursPerDay: -1},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			model := &scriptedModel{}
			g := NewGenerator(model, &fakeRetriever{}, GeneratorConfig{}, nil)
			_, err := g.Generate(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidRequest)
			assert.Empty(t, model.prompts)
		})
	}
}

func TestPromptVariants(t *testing.T) {
	variants := promptVariants("base", 3)
	require.Len(t, variants, 3)
	assert.Equal(t, "base", variants[0])
	assert.Equal(t, "base"+repairDirective, variants[1])
	assert.Equal(t, "base"+repairDirective+repairDirective, variants[2])
}
