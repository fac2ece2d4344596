package models

import "time"

// FeePayment is one payment against a student's fee record. Append-only; the
// ledger never mutates a payment after it is written.
type FeePayment struct {
	ID        int       `gorm:"primary_key" json:"id"`
	BranchId  int       `gorm:"index;not null" json:"branch_id"`
	StudentId int       `gorm:"index;not null" json:"student_id" binding:"required"`
	Amount    int64     `gorm:"not null" json:"amount"`
	PaidDate  time.Time `gorm:"type:date;not null" json:"paid_date"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewFeePayment struct {
	StudentId int       `json:"student_id" binding:"required" validate:"required"`
	Amount    int64     `json:"amount" binding:"required"`
	PaidDate  time.Time `json:"paid_date" binding:"required" validate:"required"`
}
