package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"studyplanner/internal/model"
)

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// ReplaceAll deletes every stored plan and inserts items in a single transaction.
// Readers never observe a partially replaced plan.
func (r *PlanRepository) ReplaceAll(ctx context.Context, items []model.PlanItem) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.PlanItem{}).Error; err != nil {
			return fmt.Errorf("delete plans failed: %w", err)
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].ID = 0
			if items[i].Status == "" {
				items[i].Status = model.PlanStatusPending
			}
		}
		if err := tx.CreateInBatches(&items, 100).Error; err != nil {
			return fmt.Errorf("insert plans failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace plans failed: %w", err)
	}
	return nil
}

func (r *PlanRepository) DeleteAll(ctx context.Context) error {
	err := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.PlanItem{}).Error
	if err != nil {
		return fmt.Errorf("delete all plans failed: %w", err)
	}
	return nil
}

// List returns plans ordered by study date. A non-positive limit returns all rows.
func (r *PlanRepository) List(ctx context.Context, limit int) ([]model.PlanItem, error) {
	query := r.db.WithContext(ctx).Order("study_date ASC").Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var items []model.PlanItem
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list plans failed: %w", err)
	}
	return items, nil
}

// UpdateStatus sets the status of one plan and reports whether the row existed.
func (r *PlanRepository) UpdateStatus(ctx context.Context, id uint, status string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.PlanItem{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return false, fmt.Errorf("update plan status failed: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return true, nil
	}
	// Some drivers report zero affected rows when the value is unchanged.
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.PlanItem{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check plan exists failed: %w", err)
	}
	return count > 0, nil
}

// Delete removes one plan and reports whether it existed.
func (r *PlanRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&model.PlanItem{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("delete plan failed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// NextPending returns the earliest pending plan, or nil when everything is done.
func (r *PlanRepository) NextPending(ctx context.Context) (*model.PlanItem, error) {
	var items []model.PlanItem
	err := r.db.WithContext(ctx).
		Where("status = ?", model.PlanStatusPending).
		Order("study_date ASC").Order("id ASC").
		Limit(1).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("get next pending plan failed: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// ListPendingOn returns pending plans scheduled on date, in insertion order.
func (r *PlanRepository) ListPendingOn(ctx context.Context, date string, limit int) ([]model.PlanItem, error) {
	var items []model.PlanItem
	err := r.db.WithContext(ctx).
		Where("status = ? AND study_date = ?", model.PlanStatusPending, date).
		Order("id ASC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list pending plans on date failed: %w", err)
	}
	return items, nil
}

// ListPendingExcept returns pending plans not scheduled on date, ordered by date.
func (r *PlanRepository) ListPendingExcept(ctx context.Context, date string, limit int) ([]model.PlanItem, error) {
	var items []model.PlanItem
	err := r.db.WithContext(ctx).
		Where("status = ? AND study_date <> ?", model.PlanStatusPending, date).
		Order("study_date ASC").Order("id ASC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list pending plans except date failed: %w", err)
	}
	return items, nil
}
