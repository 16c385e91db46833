package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"studyplanner/internal/model"
)

type SyllabusRepository struct {
	db *gorm.DB
}

func NewSyllabusRepository(db *gorm.DB) *SyllabusRepository {
	return &SyllabusRepository{db: db}
}

func (r *SyllabusRepository) Create(ctx context.Context, syllabus *model.Syllabus) error {
	if err := r.db.WithContext(ctx).Create(syllabus).Error; err != nil {
		return fmt.Errorf("create syllabus failed: %w", err)
	}
	return nil
}

// Latest returns the most recently uploaded syllabus, or nil when none exists.
func (r *SyllabusRepository) Latest(ctx context.Context) (*model.Syllabus, error) {
	var syllabus model.Syllabus
	err := r.db.WithContext(ctx).Order("id DESC").Limit(1).Find(&syllabus).Error
	if err != nil {
		return nil, fmt.Errorf("get latest syllabus failed: %w", err)
	}
	if syllabus.ID == 0 {
		return nil, nil
	}
	return &syllabus, nil
}
