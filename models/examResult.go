package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExamResult is a read-only academic input to health scoring. Score is a
// 0-100 percentage.
type ExamResult struct {
	ID        int             `gorm:"primary_key" json:"id"`
	BranchId  int             `gorm:"index;not null" json:"branch_id"`
	StudentId int             `gorm:"index;not null" json:"student_id"`
	ExamId    int             `gorm:"index;not null" json:"exam_id"`
	Score     decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"score"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}
