package models

import "time"

// AttendanceRecord is a read-only input to health scoring. The engine never
// owns or mutates attendance; it only derives a presence percentage from it.
type AttendanceRecord struct {
	ID        int              `gorm:"primary_key" json:"id"`
	BranchId  int              `gorm:"index;not null" json:"branch_id"`
	StudentId int              `gorm:"index;not null" json:"student_id"`
	Date      time.Time        `gorm:"type:date;not null" json:"date"`
	Status    AttendanceStatus `gorm:"size:16;not null" json:"status"`
	CreatedAt time.Time        `gorm:"autoCreateTime" json:"created_at"`
}
