package models

import "time"

// FeeRecord is the per-student running fee balance for the current session.
// All amounts are int64 minor currency units (paise).
//
// TotalAmount is a derived field owned by the ledger: it must always equal
// TemplateAmount plus the signed sum of all non-reversed adjustments for the
// student. ReconcileFeeRecord recomputes and corrects it from history.
// PaidAmount may exceed TotalAmount: overpayment is representable and the
// resulting negative pending balance is surfaced as a credit, never clamped.
type FeeRecord struct {
	ID                  int       `gorm:"primary_key" json:"id"`
	BranchId            int       `gorm:"index;not null" json:"branch_id" binding:"required"`
	StudentId           int       `gorm:"uniqueIndex;not null" json:"student_id" binding:"required"`
	TemplateAmount      int64     `gorm:"not null" json:"template_amount"`
	TotalAmount         int64     `gorm:"not null" json:"total_amount"`
	PaidAmount          int64     `gorm:"not null;default:0" json:"paid_amount"`
	DueDate             time.Time `gorm:"type:date" json:"due_date"`
	PreviousSessionDues int64     `gorm:"not null;default:0" json:"previous_session_dues"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// FeeBalance is the read model returned by GetFeeBalance.
// Pending = Total - Paid and may be negative (credit).
type FeeBalance struct {
	StudentId int   `json:"student_id"`
	Total     int64 `json:"total"`
	Paid      int64 `json:"paid"`
	Pending   int64 `json:"pending"`
}
