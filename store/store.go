// Package store is the persistence boundary of the settlement engine. The
// workflows are written against these interfaces only; the concrete backing
// (MySQL via gorm in production, the in-memory store in tests and local dev)
// is injected at wiring time.
//
// Multi-write methods (ApplyAdjustment, AppendFeePayment, ...) are atomic
// pairs: the history row and the derived balance either both commit or
// neither does. Read-modify-write serialization per entity is the workflow
// layer's job (entity locks); the store only guarantees that each call is
// internally consistent.
package store

import (
	"context"
	"time"

	"github.com/listen443aditya/Verticx-Backend-sub003/models"
	"github.com/shopspring/decimal"
)

type FeeStore interface {
	FeeRecordByStudent(ctx context.Context, studentId int) (*models.FeeRecord, error)

	// ApplyAdjustment inserts the adjustment row and sets the fee record's
	// total to newTotal in one transaction.
	ApplyAdjustment(ctx context.Context, adj *models.FeeAdjustment, newTotal int64) error

	// AppendFeePayment inserts the payment row and sets the fee record's
	// paid amount to newPaid in one transaction.
	AppendFeePayment(ctx context.Context, p *models.FeePayment, newPaid int64) error

	AdjustmentByID(ctx context.Context, id int) (*models.FeeAdjustment, error)
	AdjustmentsByStudent(ctx context.Context, studentId int) ([]*models.FeeAdjustment, error)

	// MarkAdjustmentReversed flags the adjustment and sets the re-derived
	// total in one transaction.
	MarkAdjustmentReversed(ctx context.Context, id int, newTotal int64, by int, at time.Time) error

	SetFeeTotal(ctx context.Context, studentId int, total int64) error
	FeeStudentIDs(ctx context.Context, branchId int) ([]int, error)

	// FeeTotals sums billed and paid across a branch's fee records.
	FeeTotals(ctx context.Context, branchId int) (billed int64, paid int64, err error)

	SaveReconciliationReport(ctx context.Context, r *models.ReconciliationReport) error
}

type PayrollStore interface {
	BranchByID(ctx context.Context, id int) (*models.Branch, error)

	// StaffByBranch lists payroll-eligible staff: everyone except the principal.
	StaffByBranch(ctx context.Context, branchId int) ([]*models.StaffProfile, error)
	StaffByID(ctx context.Context, id int) (*models.StaffProfile, error)

	// ApprovedLeaves returns Approved applications overlapping [from, to].
	ApprovedLeaves(ctx context.Context, staffId int, from, to time.Time) ([]*models.LeaveApplication, error)

	ManualAdjustmentsTotal(ctx context.Context, staffId int, month models.Month) (int64, error)

	PayrollRecord(ctx context.Context, staffId int, month models.Month) (*models.PayrollRecord, error)
	PayrollRecordByID(ctx context.Context, id int) (*models.PayrollRecord, error)
	UpsertPayrollRecord(ctx context.Context, rec *models.PayrollRecord) error

	// MarkPayrollPaid is an atomic check-and-set: it transitions the record
	// to Paid only if it is currently Pending and reports whether it did.
	MarkPayrollPaid(ctx context.Context, id int, at time.Time, by int) (bool, error)
}

type BillingStore interface {
	ContractByBranch(ctx context.Context, branchId int) (*models.TenantBillingContract, error)
	ActiveStudentCount(ctx context.Context, branchId int) (int64, error)
	SubscriptionPaymentsTotal(ctx context.Context, branchId int) (int64, error)
	SubscriptionPaymentByRef(ctx context.Context, ref string) (*models.SubscriptionPayment, error)

	// AppendSubscriptionPayment inserts the payment and advances the
	// contract's next due date in one transaction.
	AppendSubscriptionPayment(ctx context.Context, p *models.SubscriptionPayment, newNextDue time.Time) error
}

type ScoreStore interface {
	// AvgAcademicScore is the branch-wide mean exam score, 0-100. Zero rows
	// yield zero.
	AvgAcademicScore(ctx context.Context, branchId int) (decimal.Decimal, error)

	// AttendancePercent weighs Present as 100, HalfDay as 50, everything
	// else as 0. Zero rows yield zero.
	AttendancePercent(ctx context.Context, branchId int) (decimal.Decimal, error)
}

// Store aggregates every per-domain store. Both GormStore and MemStore
// implement it.
type Store interface {
	FeeStore
	PayrollStore
	BillingStore
	ScoreStore
}
