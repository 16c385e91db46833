package model

const (
	PlanStatusPending = "pending"
	PlanStatusDone    = "done"
)

// PlanItem is one scheduled study session. StudyDate is a YYYY-MM-DD string
// so that lexical ordering matches chronological ordering.
type PlanItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	Subject   string  `gorm:"size:255;not null" json:"subject"`
	Topic     string  `gorm:"size:512;not null" json:"topic"`
	StudyDate string  `gorm:"column:study_date;size:10;not null;index" json:"date"`
	Hours     float64 `gorm:"not null" json:"hours"`
	Status    string  `gorm:"size:16;not null;default:pending;index" json:"status"`
}

func (PlanItem) TableName() string {
	return "plans"
}
