package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"studyplanner/internal/model"
	"studyplanner/internal/planner"
	"studyplanner/internal/platform/database"
	"studyplanner/internal/rag"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.New(context.Background(), "sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Syllabus{}, &model.PlanItem{}, &model.ChatMessage{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type stubGenerator struct {
	entries []planner.Entry
	err     error
	calls   int
}

func (g *stubGenerator) Generate(context.Context, planner.Request) ([]planner.Entry, error) {
	g.calls++
	return g.entries, g.err
}

// memoryPlanCache is an in-process PlanCache.
type memoryPlanCache struct {
	mu          sync.Mutex
	items       []model.PlanItem
	hit         bool
	dirty       bool
	sets        int
	invalidates int
}

func (c *memoryPlanCache) GetPlans(context.Context) ([]model.PlanItem, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items, c.hit, nil
}

func (c *memoryPlanCache) SetPlans(_ context.Context, items []model.PlanItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items, c.hit = items, true
	c.sets++
	return nil
}

func (c *memoryPlanCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items, c.hit = nil, false
	c.invalidates++
	return nil
}

func (c *memoryPlanCache) IsDirty(context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty, nil
}

type stubIndex struct {
	indexed map[string]string
	results []rag.Result
	err     error
	queries []string
}

func (s *stubIndex) Index(_ context.Context, text, source string) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	if s.indexed == nil {
		s.indexed = map[string]string{}
	}
	s.indexed[source] = text
	return len(strings.Fields(text)), nil
}

func (s *stubIndex) Search(_ context.Context, query string, topK int) []rag.Result {
	s.queries = append(s.queries, query)
	if topK < len(s.results) {
		return s.results[:topK]
	}
	return s.results
}
