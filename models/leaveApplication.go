package models

import "time"

// LeaveApplication is consumed read-only from the approval workflow. Only
// Approved applications participate in payroll. StartDate/EndDate are
// inclusive calendar dates; a leave may span a month boundary, in which case
// payroll prorates it to the days falling inside the target month.
type LeaveApplication struct {
	ID          int         `gorm:"primary_key" json:"id"`
	BranchId    int         `gorm:"index;not null" json:"branch_id"`
	ApplicantId int         `gorm:"index;not null" json:"applicant_id" binding:"required"`
	Status      LeaveStatus `gorm:"size:16;index;not null" json:"status"`
	StartDate   time.Time   `gorm:"type:date;not null" json:"start_date"`
	EndDate     time.Time   `gorm:"type:date;not null" json:"end_date"`
	IsHalfDay   bool        `gorm:"default:false" json:"is_half_day"`
	LeaveType   string      `gorm:"size:64" json:"leave_type"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}
