package models

import "time"

// StaffProfile is a read-only input record from the HR side. BaseSalary is a
// pointer on purpose: nil means "salary not configured", which is a first-class
// payroll state distinct from a zero salary.
type StaffProfile struct {
	ID         int       `gorm:"primary_key" json:"id"`
	BranchId   int       `gorm:"index;not null" json:"branch_id" binding:"required"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Role       StaffRole `gorm:"size:32;not null" json:"role"`
	BaseSalary *int64    `gorm:"default:null" json:"base_salary,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
