package models

import "time"

// ReconciliationReport is one detected drift between a fee record's stored
// total and the total re-derived from its adjustment history. Rows are written
// by ReconcileFeeRecord; drift is reported, never silently absorbed.
type ReconciliationReport struct {
	ID           int       `gorm:"primary_key" json:"id"`
	BranchId     int       `gorm:"index;not null" json:"branch_id"`
	StudentId    int       `gorm:"index;not null" json:"student_id"`
	StoredTotal  int64     `gorm:"not null" json:"stored_total"`
	DerivedTotal int64     `gorm:"not null" json:"derived_total"`
	Delta        int64     `gorm:"not null" json:"delta"`
	CheckedAt    time.Time `gorm:"not null" json:"checked_at"`
	Resolved     bool      `gorm:"default:false" json:"resolved"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}
