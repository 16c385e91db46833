package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyplanner/internal/model"
	"studyplanner/internal/planner"
	"studyplanner/internal/repository"
)

func fixedClock() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }

func newPlanService(t *testing.T, gen PlanGenerator, cache PlanCache) (*PlanService, *repository.PlanRepository) {
	t.Helper()
	repo := repository.NewPlanRepository(newTestDB(t))
	return NewPlanService(repo, gen, cache, fixedClock, nil), repo
}

func TestPlanService_GenerateReplacesPlans(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{entries: []planner.Entry{
		{Subject: "DBMS", Topic: "ER Model", Date: "2026-03-03", Hours: 2},
		{Subject: "DBMS", Topic: "Normalization", Date: "2026-03-02", Hours: 1},
	}}
	cache := &memoryPlanCache{}
	svc, repo := newPlanService(t, gen, cache)
	require.NoError(t, repo.ReplaceAll(ctx, []model.PlanItem{{Subject: "Old", Topic: "Old", StudyDate: "2026-01-01", Hours: 1}}))

	items, err := svc.Generate(ctx, planner.Request{Subjects: []string{"DBMS"}, ExamDate: "2026-03-10", HoursPerDay: 3})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, model.PlanStatusPending, items[0].Status)
	assert.Positive(t, cache.invalidates)

	stored, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "Normalization", stored[0].Topic)
	assert.Equal(t, "ER Model", stored[1].Topic)
}

func TestPlanService_GenerateFailureKeepsPriorPlans(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{err: planner.ErrPlanGenerationFailed}
	svc, repo := newPlanService(t, gen, nil)
	require.NoError(t, repo.ReplaceAll(ctx, []model.PlanItem{{Subject: "Keep", Topic: "Me", StudyDate: "2026-03-05", Hours: 1}}))

	_, err := svc.Generate(ctx, planner.Request{Subjects: []string{"DBMS"}, ExamDate: "2026-03-10", HoursPerDay: 3})
	assert.ErrorIs(t, err, planner.ErrPlanGenerationFailed)

	stored, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Keep", stored[0].Subject)
}

func TestPlanService_ListUsesCacheWhenClean(t *testing.T) {
	ctx := context.Background()
	cache := &memoryPlanCache{}
	svc, repo := newPlanService(t, &stubGenerator{}, cache)
	require.NoError(t, repo.ReplaceAll(ctx, []model.PlanItem{{Subject: "A", Topic: "B", StudyDate: "2026-03-05", Hours: 1}}))

	_, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	// second read is served from the cache
	require.NoError(t, repo.DeleteAll(ctx))
	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, cache.sets)
}

func TestPlanService_ListSkipsCacheWhenDirty(t *testing.T) {
	ctx := context.Background()
	cache := &memoryPlanCache{dirty: true, hit: true, items: []model.PlanItem{{Subject: "stale"}}}
	svc, _ := newPlanService(t, &stubGenerator{}, cache)

	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, cache.sets)
}

func TestPlanService_MarkDoneAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, repo := newPlanService(t, &stubGenerator{}, &memoryPlanCache{})
	require.NoError(t, repo.ReplaceAll(ctx, []model.PlanItem{
		{Subject: "A", Topic: "t1", StudyDate: "2026-03-02", Hours: 1},
		{Subject: "B", Topic: "t2", StudyDate: "2026-03-03", Hours: 1},
	}))
	items, err := svc.List(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.MarkDone(ctx, items[0].ID))
	assert.ErrorIs(t, svc.MarkDone(ctx, 999), ErrPlanNotFound)
	assert.ErrorIs(t, svc.MarkDone(ctx, 0), ErrInvalidInput)

	next, err := svc.Next(ctx)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "B", next.Subject)

	require.NoError(t, svc.Delete(ctx, items[1].ID))
	assert.ErrorIs(t, svc.Delete(ctx, items[1].ID), ErrPlanNotFound)

	next, err = svc.Next(ctx)
	require.NoError(t, err)
	assert.Nil(t, next)

	require.NoError(t, svc.DeleteAll(ctx))
	left, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestPlanService_DailyGoals(t *testing.T) {
	ctx := context.Background()
	svc, repo := newPlanService(t, &stubGenerator{}, nil)
	require.NoError(t, repo.ReplaceAll(ctx, []model.PlanItem{
		{Subject: "Past", Topic: "p", StudyDate: "2026-03-01", Hours: 1},
		{Subject: "Today1", Topic: "t", StudyDate: "2026-03-02", Hours: 1},
		{Subject: "Future", Topic: "f", StudyDate: "2026-03-04", Hours: 1},
		{Subject: "Today2", Topic: "t", StudyDate: "2026-03-02", Hours: 1},
		{Subject: "Later", Topic: "l", StudyDate: "2026-03-09", Hours: 1},
	}))

	goals, err := svc.DailyGoals(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", goals.Today)
	require.Len(t, goals.Goals, 3)
	assert.Equal(t, "Today1", goals.Goals[0].Subject)
	assert.Equal(t, "Today2", goals.Goals[1].Subject)
	assert.Equal(t, "Past", goals.Goals[2].Subject)
}

func TestPlanService_DailyGoalsEmpty(t *testing.T) {
	svc, _ := newPlanService(t, &stubGenerator{}, nil)
	goals, err := svc.DailyGoals(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, goals.Goals)
	assert.Empty(t, goals.Goals)
}

func TestPlanService_Rows(t *testing.T) {
	ctx := context.Background()
	svc, repo := newPlanService(t, &stubGenerator{}, nil)
	require.NoError(t, repo.ReplaceAll(ctx, []model.PlanItem{
		{Subject: "A", Topic: "t1", StudyDate: "2026-03-03", Hours: 2},
		{Subject: "B", Topic: "t2", StudyDate: "2026-03-02", Hours: 1.5},
	}))

	rows, err := svc.Rows(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []planner.PlanRow{{Subject: "B", Topic: "t2", Date: "2026-03-02", Hours: 1.5, Status: "pending"}}, rows)
}
