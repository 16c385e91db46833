package app

import (
	"context"
	"time"

	"studyplanner/internal/logger"
	"studyplanner/internal/model"
	"studyplanner/internal/planner"
	"studyplanner/internal/repository"
)

const dailyGoalCount = 3

type PlanGenerator interface {
	Generate(ctx context.Context, req planner.Request) ([]planner.Entry, error)
}

// PlanCache caches the full ordered plan list.
type PlanCache interface {
	GetPlans(ctx context.Context) ([]model.PlanItem, bool, error)
	SetPlans(ctx context.Context, items []model.PlanItem) error
	Invalidate(ctx context.Context) error
	IsDirty(ctx context.Context) (bool, error)
}

type PlanService struct {
	repo      *repository.PlanRepository
	generator PlanGenerator
	cache     PlanCache
	now       func() time.Time
	log       *logger.Logger
}

func NewPlanService(
	repo *repository.PlanRepository,
	generator PlanGenerator,
	cache PlanCache,
	now func() time.Time,
	log *logger.Logger,
) *PlanService {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &PlanService{
		repo:      repo,
		generator: generator,
		cache:     cache,
		now:       now,
		log:       log.With("component", "plan_service"),
	}
}

// Generate builds a new plan and replaces every stored plan with it. Stored
// plans are left untouched when generation fails.
func (s *PlanService) Generate(ctx context.Context, req planner.Request) ([]model.PlanItem, error) {
	entries, err := s.generator.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	items := make([]model.PlanItem, len(entries))
	for i, e := range entries {
		items[i] = model.PlanItem{
			Subject:   e.Subject,
			Topic:     e.Topic,
			StudyDate: e.Date,
			Hours:     e.Hours,
			Status:    model.PlanStatusPending,
		}
	}

	s.invalidate(ctx)
	if err := s.repo.ReplaceAll(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// List returns all plans ordered by study date.
func (s *PlanService) List(ctx context.Context) ([]model.PlanItem, error) {
	if s.cache != nil {
		dirty, err := s.cache.IsDirty(ctx)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.cache.GetPlans(ctx); cacheErr == nil && hit {
				return cached, nil
			}
		}
	}

	items, err := s.repo.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if dirty, err := s.cache.IsDirty(ctx); err == nil && !dirty {
			if err := s.cache.SetPlans(ctx, items); err != nil {
				s.log.Warn("cache plans failed", "error", err)
			}
		}
	}
	return items, nil
}

func (s *PlanService) MarkDone(ctx context.Context, id uint) error {
	if id == 0 {
		return ErrInvalidInput
	}
	s.invalidate(ctx)
	found, err := s.repo.UpdateStatus(ctx, id, model.PlanStatusDone)
	if err != nil {
		return err
	}
	if !found {
		return ErrPlanNotFound
	}
	return nil
}

func (s *PlanService) Delete(ctx context.Context, id uint) error {
	if id == 0 {
		return ErrInvalidInput
	}
	s.invalidate(ctx)
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return ErrPlanNotFound
	}
	return nil
}

func (s *PlanService) DeleteAll(ctx context.Context) error {
	s.invalidate(ctx)
	return s.repo.DeleteAll(ctx)
}

// Next returns the earliest pending plan, or nil when nothing is pending.
func (s *PlanService) Next(ctx context.Context) (*model.PlanItem, error) {
	return s.repo.NextPending(ctx)
}

type DailyGoals struct {
	Today string           `json:"today"`
	Goals []model.PlanItem `json:"goals"`
}

// DailyGoals picks up to three pending plans: today's first, then the
// earliest pending plans from other dates.
func (s *PlanService) DailyGoals(ctx context.Context) (*DailyGoals, error) {
	today := s.now().Format(planner.DateLayout)

	goals, err := s.repo.ListPendingOn(ctx, today, dailyGoalCount)
	if err != nil {
		return nil, err
	}
	if remaining := dailyGoalCount - len(goals); remaining > 0 {
		more, err := s.repo.ListPendingExcept(ctx, today, remaining)
		if err != nil {
			return nil, err
		}
		goals = append(goals, more...)
	}
	if goals == nil {
		goals = []model.PlanItem{}
	}
	return &DailyGoals{Today: today, Goals: goals}, nil
}

// Rows returns up to limit plans in the shape shown to the chat model.
func (s *PlanService) Rows(ctx context.Context, limit int) ([]planner.PlanRow, error) {
	items, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	rows := make([]planner.PlanRow, len(items))
	for i, item := range items {
		rows[i] = planner.PlanRow{
			Subject: item.Subject,
			Topic:   item.Topic,
			Date:    item.StudyDate,
			Hours:   item.Hours,
			Status:  item.Status,
		}
	}
	return rows, nil
}

func (s *PlanService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("invalidate plan cache failed", "error", err)
	}
}
