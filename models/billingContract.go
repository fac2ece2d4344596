package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TenantBillingContract is the recurring subscription contract for a branch.
// NextDueDate is the only field mutated under normal operation: recording a
// payment advances it by exactly one billing cycle FROM ITS STORED VALUE, so
// the due calendar stays anchored to the session start rather than drifting
// with payment timing. Everything else changes only by administrative override.
type TenantBillingContract struct {
	ID                 int             `gorm:"primary_key" json:"id"`
	BranchId           int             `gorm:"uniqueIndex;not null" json:"branch_id" binding:"required"`
	PricePerActiveUnit int64           `gorm:"not null" json:"price_per_active_unit"`
	BillingCycle       BillingCycle    `gorm:"size:16;not null" json:"billing_cycle"`
	SessionStartDate   time.Time       `gorm:"type:date;not null" json:"session_start_date"`
	NextDueDate        time.Time       `gorm:"type:date;not null" json:"next_due_date"`
	ConcessionPercent  decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"concession_percent"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// SubscriptionDue is the read model returned by ComputeSubscriptionOwed.
// PendingAmount is floored at zero: a surplus subscription payment is not
// reported as negative pending. (The per-student fee ledger intentionally
// does the opposite.)
type SubscriptionDue struct {
	BranchId      int   `json:"branch_id"`
	TotalBilled   int64 `json:"total_billed"`
	TotalPaid     int64 `json:"total_paid"`
	PendingAmount int64 `json:"pending_amount"`
}
