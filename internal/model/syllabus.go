package model

import "time"

// Syllabus holds the raw extracted text of one uploaded document.
type Syllabus struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Filename  string    `gorm:"size:255;not null" json:"filename"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (Syllabus) TableName() string {
	return "syllabus"
}
