package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayrollRecord is one logical payslip per (staff, month). The engine owns it
// exclusively. While Pending it is recomputed idempotently on every
// ComputePayrollForMonth call; once Paid it is frozen and returned unchanged.
//
// The monetary fields are pointers because SalaryNotSet is a real state: a
// staff member without a configured base salary gets a record with all
// monetary fields null, overwriting any stale Pending computation.
type PayrollRecord struct {
	ID                     int              `gorm:"primary_key" json:"id"`
	BranchId               int              `gorm:"index;not null" json:"branch_id"`
	StaffId                int              `gorm:"not null;uniqueIndex:idx_staff_month" json:"staff_id"`
	Month                  Month            `gorm:"size:7;not null;uniqueIndex:idx_staff_month" json:"month"`
	BaseSalary             *int64           `gorm:"default:null" json:"base_salary,omitempty"`
	UnpaidLeaveDays        *decimal.Decimal `gorm:"type:decimal(6,1);default:null" json:"unpaid_leave_days,omitempty"`
	LeaveDeductions        *int64           `gorm:"default:null" json:"leave_deductions,omitempty"`
	ManualAdjustmentsTotal *int64           `gorm:"default:null" json:"manual_adjustments_total,omitempty"`
	NetPayable             *int64           `gorm:"default:null" json:"net_payable,omitempty"`
	Status                 PayrollStatus    `gorm:"size:16;index;not null" json:"status"`
	PaidAt                 *time.Time       `gorm:"default:null" json:"paid_at,omitempty"`
	PaidBy                 *int             `gorm:"default:null" json:"paid_by,omitempty"`
	CreatedAt              time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}
