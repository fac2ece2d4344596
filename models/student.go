package models

import "time"

// Student is a read-only input record supplied by the enrollment side of the
// system. The settlement engine only counts active students (billing units)
// and attaches fee records to them.
type Student struct {
	ID        int       `gorm:"primary_key" json:"id"`
	BranchId  int       `gorm:"index;not null" json:"branch_id" binding:"required"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	ClassName string    `gorm:"size:64" json:"class_name"`
	IsActive  bool      `gorm:"index;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
