package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"studyplanner/internal/model"
	"studyplanner/internal/platform/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := database.New(context.Background(), "sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Syllabus{}, &model.PlanItem{}, &model.ChatMessage{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func samplePlans() []model.PlanItem {
	return []model.PlanItem{
		{Subject: "DBMS", Topic: "Normalization", StudyDate: "2026-03-02", Hours: 2},
		{Subject: "DBMS", Topic: "ER Model", StudyDate: "2026-03-01", Hours: 1.5},
		{Subject: "OS", Topic: "Paging", StudyDate: "2026-03-03", Hours: 2},
	}
}

func TestSyllabusRepository_CreateAndLatest(t *testing.T) {
	ctx := context.Background()
	repo := NewSyllabusRepository(newTestDB(t))

	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	require.NoError(t, repo.Create(ctx, &model.Syllabus{Filename: "a.pdf", Content: "alpha"}))
	second := &model.Syllabus{Filename: "b.pdf", Content: "beta"}
	require.NoError(t, repo.Create(ctx, second))
	assert.NotZero(t, second.ID)

	latest, err = repo.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "b.pdf", latest.Filename)
}

func TestPlanRepository_ReplaceAllReplacesPreviousPlans(t *testing.T) {
	ctx := context.Background()
	repo := NewPlanRepository(newTestDB(t))

	require.NoError(t, repo.ReplaceAll(ctx, samplePlans()))
	require.NoError(t, repo.ReplaceAll(ctx, []model.PlanItem{
		{Subject: "Maths", Topic: "Integrals", StudyDate: "2026-04-01", Hours: 3},
	}))

	items, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Maths", items[0].Subject)
	assert.Equal(t, model.PlanStatusPending, items[0].Status)
}

func TestPlanRepository_ListOrdersByDateAndLimits(t *testing.T) {
	ctx := context.Background()
	repo := NewPlanRepository(newTestDB(t))
	require.NoError(t, repo.ReplaceAll(ctx, samplePlans()))

	items, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"2026-03-01", "2026-03-02", "2026-03-03"},
		[]string{items[0].StudyDate, items[1].StudyDate, items[2].StudyDate})

	limited, err := repo.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestPlanRepository_UpdateStatusAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewPlanRepository(newTestDB(t))
	require.NoError(t, repo.ReplaceAll(ctx, samplePlans()))
	items, err := repo.List(ctx, 0)
	require.NoError(t, err)

	found, err := repo.UpdateStatus(ctx, items[0].ID, model.PlanStatusDone)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = repo.UpdateStatus(ctx, items[0].ID, model.PlanStatusDone)
	require.NoError(t, err)
	assert.True(t, found, "unchanged value still counts as found")

	found, err = repo.UpdateStatus(ctx, 9999, model.PlanStatusDone)
	require.NoError(t, err)
	assert.False(t, found)

	deleted, err := repo.Delete(ctx, items[1].ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, items[1].ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	require.NoError(t, repo.DeleteAll(ctx))
	left, err := repo.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestPlanRepository_PendingQueries(t *testing.T) {
	ctx := context.Background()
	repo := NewPlanRepository(newTestDB(t))
	require.NoError(t, repo.ReplaceAll(ctx, []model.PlanItem{
		{Subject: "A", Topic: "t1", StudyDate: "2026-03-01", Hours: 1},
		{Subject: "B", Topic: "t2", StudyDate: "2026-03-02", Hours: 1},
		{Subject: "C", Topic: "t3", StudyDate: "2026-03-02", Hours: 1},
		{Subject: "D", Topic: "t4", StudyDate: "2026-03-05", Hours: 1},
	}))
	items, err := repo.List(ctx, 0)
	require.NoError(t, err)
	_, err = repo.UpdateStatus(ctx, items[0].ID, model.PlanStatusDone)
	require.NoError(t, err)

	next, err := repo.NextPending(ctx)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "B", next.Subject)

	today, err := repo.ListPendingOn(ctx, "2026-03-02", 3)
	require.NoError(t, err)
	require.Len(t, today, 2)
	assert.Equal(t, "B", today[0].Subject)

	others, err := repo.ListPendingExcept(ctx, "2026-03-02", 3)
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, "D", others[0].Subject)

	require.NoError(t, repo.DeleteAll(ctx))
	next, err = repo.NextPending(ctx)
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestChatMessageRepository_ListRecentIsChronological(t *testing.T) {
	ctx := context.Background()
	repo := NewChatMessageRepository(newTestDB(t))

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Record(ctx, model.ChatMessage{
			Role:    model.ChatRoleUser,
			Content: fmt.Sprintf("message %d", i),
		}))
	}

	messages, err := repo.ListRecent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "message 2", messages[0].Content)
	assert.Equal(t, "message 4", messages[2].Content)
}
