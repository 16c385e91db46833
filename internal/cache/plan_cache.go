package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"studyplanner/internal/model"
)

const (
	planListKey  = "studyplanner:plans:all"
	planDirtyKey = "studyplanner:plans:dirty"
)

// PlanCache caches the full ordered plan list. Writers set a short-lived dirty
// marker before invalidating so a reader that loaded stale rows does not
// repopulate the cache with them.
type PlanCache struct {
	client         *redisv9.Client
	planTTL        time.Duration
	dirtyMarkerTTL time.Duration
}

func NewPlanCache(client *redisv9.Client, planTTL, dirtyMarkerTTL time.Duration) *PlanCache {
	if planTTL <= 0 {
		planTTL = 60 * time.Second
	}
	if dirtyMarkerTTL <= 0 {
		dirtyMarkerTTL = 5 * time.Second
	}
	return &PlanCache{
		client:         client,
		planTTL:        planTTL,
		dirtyMarkerTTL: dirtyMarkerTTL,
	}
}

func (c *PlanCache) GetPlans(ctx context.Context) ([]model.PlanItem, bool, error) {
	raw, err := c.client.Get(ctx, planListKey).Result()
	if errors.Is(err, redisv9.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get plans failed: %w", err)
	}

	var items []model.PlanItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached plans failed: %w", err)
	}
	return items, true, nil
}

func (c *PlanCache) SetPlans(ctx context.Context, items []model.PlanItem) error {
	payload, err := encodePlans(items)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, planListKey, payload, c.planTTL).Err(); err != nil {
		return fmt.Errorf("redis set plans failed: %w", err)
	}
	return nil
}

// Invalidate marks the list dirty and drops the cached copy in one pipeline.
func (c *PlanCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redisv9.Pipeliner) error {
		pipe.Set(ctx, planDirtyKey, "1", c.dirtyMarkerTTL)
		pipe.Del(ctx, planListKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate plans failed: %w", err)
	}
	return nil
}

func (c *PlanCache) IsDirty(ctx context.Context) (bool, error) {
	exists, err := c.client.Exists(ctx, planDirtyKey).Result()
	if err != nil {
		return false, fmt.Errorf("redis check dirty marker failed: %w", err)
	}
	return exists > 0, nil
}

func encodePlans(items []model.PlanItem) ([]byte, error) {
	if items == nil {
		items = []model.PlanItem{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal plan cache failed: %w", err)
	}
	return payload, nil
}
