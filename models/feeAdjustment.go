package models

import "time"

// FeeAdjustment is one signed change to a student's billed total. Immutable
// once created, except for the reversal flags. Amount carries the sign:
// negative for concessions, positive for charges.
type FeeAdjustment struct {
	ID             int               `gorm:"primary_key" json:"id"`
	BranchId       int               `gorm:"index;not null" json:"branch_id"`
	StudentId      int               `gorm:"index;not null" json:"student_id" binding:"required"`
	Type           FeeAdjustmentType `gorm:"size:32;not null" json:"type" binding:"required"`
	Amount         int64             `gorm:"not null" json:"amount"`
	Reason         string            `gorm:"type:text" json:"reason"`
	AdjustedBy     int               `gorm:"not null" json:"adjusted_by"`
	AdjustmentDate time.Time         `gorm:"type:date;not null" json:"adjustment_date"`
	Reversed       bool              `gorm:"index;default:false" json:"reversed"`
	ReversedBy     *int              `gorm:"default:null" json:"reversed_by,omitempty"`
	ReversedAt     *time.Time        `gorm:"default:null" json:"reversed_at,omitempty"`
	CreatedAt      time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

// NewFeeAdjustment is the write input. Amount is always entered positive;
// the ledger applies the sign from Type.
type NewFeeAdjustment struct {
	StudentId int               `json:"student_id" binding:"required" validate:"required"`
	Type      FeeAdjustmentType `json:"type" binding:"required" validate:"required"`
	Amount    int64             `json:"amount" binding:"required"`
	Reason    string            `json:"reason"`
}

// SignedDelta converts the entered positive amount into the stored delta.
func (in NewFeeAdjustment) SignedDelta() int64 {
	if in.Type == FeeAdjustmentTypeConcession {
		return -in.Amount
	}
	return in.Amount
}
