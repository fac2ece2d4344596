package models

import "time"

// ManualSalaryAdjustment is an additive, never-mutated payroll input. Amount
// is signed: a bonus is positive, a recovery/penalty negative.
type ManualSalaryAdjustment struct {
	ID        int       `gorm:"primary_key" json:"id"`
	BranchId  int       `gorm:"index;not null" json:"branch_id"`
	StaffId   int       `gorm:"index;not null" json:"staff_id" binding:"required"`
	Month     Month     `gorm:"size:7;index;not null" json:"month" binding:"required"`
	Amount    int64     `gorm:"not null" json:"amount"`
	Reason    string    `gorm:"type:text" json:"reason"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
