package models

import "time"

// SubscriptionPayment is the append-only payment ledger against a branch's
// billing contract. TransactionRef is unique: retrying a payment with the same
// ref returns the stored row instead of double-charging.
type SubscriptionPayment struct {
	ID             int       `gorm:"primary_key" json:"id"`
	BranchId       int       `gorm:"index;not null" json:"branch_id" binding:"required"`
	Amount         int64     `gorm:"not null" json:"amount"`
	PaymentDate    time.Time `gorm:"type:date;not null" json:"payment_date"`
	TransactionRef string    `gorm:"size:128;uniqueIndex;not null" json:"transaction_ref"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewSubscriptionPayment struct {
	BranchId       int       `json:"branch_id" binding:"required" validate:"required"`
	Amount         int64     `json:"amount" binding:"required"`
	PaymentDate    time.Time `json:"payment_date" binding:"required" validate:"required"`
	TransactionRef string    `json:"transaction_ref" binding:"required" validate:"required"`
}
