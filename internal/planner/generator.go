package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"studyplanner/internal/logger"
	"studyplanner/internal/rag"
)

const (
	DefaultPlanTopK    = 6
	DefaultMaxAttempts = 3
)

// Model is a synchronous, single-prompt text generator.
type Model interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Retriever returns syllabus chunks relevant to a query. It never fails;
// an unavailable index yields no results.
type Retriever interface {
	Search(ctx context.Context, query string, topK int) []rag.Result
}

type Request struct {
	Subjects    []string `json:"subjects"`
	ExamDate    string   `json:"exam_date"`
	HoursPerDay float64  `json:"hours_per_day"`
}

func (r Request) validate() (Request, error) {
	subjects := make([]string, 0, len(r.Subjects))
	for _, s := range r.Subjects {
		if s = strings.TrimSpace(s); s != "" {
			subjects = append(subjects, s)
		}
	}
	if len(subjects) == 0 {
		return r, fmt.Errorf("%w: at least one subject is required", ErrInvalidRequest)
	}
	examDate := strings.TrimSpace(r.ExamDate)
	if _, err := time.Parse(DateLayout, examDate); err != nil {
		return r, fmt.Errorf("%w: exam_date must be YYYY-MM-DD", ErrInvalidRequest)
	}
	if r.HoursPerDay <= 0 {
		return r, fmt.Errorf("%w: hours_per_day must be positive", ErrInvalidRequest)
	}
	return Request{Subjects: subjects, ExamDate: examDate, HoursPerDay: r.HoursPerDay}, nil
}

type GeneratorConfig struct {
	TopK        int
	MaxAttempts int
}

// Generator turns a plan request into normalized entries using retrieved
// syllabus context and a bounded series of prompt variants.
type Generator struct {
	model       Model
	retriever   Retriever
	topK        int
	maxAttempts int
	now         func() time.Time
	log         *logger.Logger
}

type GeneratorOption func(*Generator)

// WithClock overrides the source of "today" in prompts.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) { g.now = now }
}

func NewGenerator(model Model, retriever Retriever, cfg GeneratorConfig, log *logger.Logger, opts ...GeneratorOption) *Generator {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultPlanTopK
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if log == nil {
		log = logger.Nop()
	}
	g := &Generator{
		model:       model,
		retriever:   retriever,
		topK:        cfg.TopK,
		maxAttempts: cfg.MaxAttempts,
		now:         time.Now,
		log:         log.With("component", "plan_generator"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns the normalized plan. It persists nothing.
func (g *Generator) Generate(ctx context.Context, req Request) ([]Entry, error) {
	req, err := req.validate()
	if err != nil {
		return nil, err
	}

	results := g.retriever.Search(ctx, retrievalQuery(req.Subjects), g.topK)
	base := buildPlanPrompt(req, formatContext(results), g.now().Format(DateLayout))

	items, err := g.fold(ctx, promptVariants(base, g.maxAttempts))
	if err != nil {
		return nil, err
	}
	entries := Normalize(items, req.ExamDate)
	g.log.Info("plan generated", "subjects", len(req.Subjects), "entries", len(entries), "context_chunks", len(results))
	return entries, nil
}

// fold tries each variant in order and stops at the first usable output.
// Model errors abort immediately; extraction errors move on to the next variant.
func (g *Generator) fold(ctx context.Context, variants []string) ([]map[string]any, error) {
	var lastErr error
	for i, variant := range variants {
		items, err := g.attempt(ctx, variant)
		if err == nil {
			return items, nil
		}
		if errors.Is(err, ErrModelInvocation) {
			return nil, err
		}
		lastErr = err
		g.log.Warn("plan attempt rejected", "attempt", i+1, "of", len(variants), "error", err)
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrPlanGenerationFailed, len(variants), lastErr)
}

func (g *Generator) attempt(ctx context.Context, prompt string) ([]map[string]any, error) {
	raw, err := g.model.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelInvocation, err)
	}
	items, err := ExtractArray(raw)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: array has no entries", ErrNoJSONArrayFound)
	}
	return items, nil
}
