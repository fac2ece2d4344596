package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/listen443aditya/Verticx-Backend-sub003/config"
	"github.com/listen443aditya/Verticx-Backend-sub003/models"
	"github.com/listen443aditya/Verticx-Backend-sub003/store"
	"github.com/listen443aditya/Verticx-Backend-sub003/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// payrollMonthDivisor is the fixed 30-day divisor for leave deductions,
// applied regardless of the month's actual day count. Downstream payslip
// figures depend on it; do not replace with daysInMonth.
var payrollMonthDivisor = decimal.NewFromInt(30)

// PayrollCalculator computes per-staff monthly payables. State machine per
// (staff, month): SalaryNotSet/Pending records are recomputed on every call;
// Paid is terminal and returned frozen.
type PayrollCalculator struct {
	store  store.PayrollStore
	clock  Clock
	locks  *EntityLocker
	logger *logrus.Logger
}

func NewPayrollCalculator(st store.PayrollStore, clock Clock, locks *EntityLocker, logger *logrus.Logger) *PayrollCalculator {
	return &PayrollCalculator{store: st, clock: clock, locks: locks, logger: logger}
}

// ComputeForMonth recomputes the payroll of every payroll-eligible staff
// member of the branch (the principal is excluded) and returns the stored
// records. Missing optional inputs (leaves, manual adjustments) contribute
// zero; only an unknown branch fails.
func (w *PayrollCalculator) ComputeForMonth(ctx context.Context, branchId int, month models.Month) ([]*models.PayrollRecord, error) {
	if !month.Valid() {
		return nil, fmt.Errorf("invalid month %q, want YYYY-MM", month)
	}
	if _, err := w.store.BranchByID(ctx, branchId); err != nil {
		return nil, fmt.Errorf("%w: branch %d", utils.ErrorRecordNotFound, branchId)
	}

	staff, err := w.store.StaffByBranch(ctx, branchId)
	if err != nil {
		config.LogError(w.logger, "payrollWorkflow.go", "ComputeForMonth", "StaffByBranch", branchId, err)
		return nil, err
	}

	records := make([]*models.PayrollRecord, 0, len(staff))
	for _, st := range staff {
		rec, err := w.computeForStaff(ctx, st, month)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (w *PayrollCalculator) computeForStaff(ctx context.Context, st *models.StaffProfile, month models.Month) (*models.PayrollRecord, error) {
	existing, err := w.store.PayrollRecord(ctx, st.ID, month)
	if err != nil && !errors.Is(err, utils.ErrorRecordNotFound) {
		config.LogError(w.logger, "payrollWorkflow.go", "computeForStaff", "PayrollRecord", st.ID, err)
		return nil, err
	}
	if existing != nil && existing.Status == models.PayrollStatusPaid {
		// Frozen payslip: never recomputed after payment.
		return existing, nil
	}

	rec := &models.PayrollRecord{
		BranchId: st.BranchId,
		StaffId:  st.ID,
		Month:    month,
	}
	if existing != nil {
		rec.ID = existing.ID
	}

	if st.BaseSalary == nil {
		// Salary configuration was cleared (or never set): the stored record
		// is overwritten to SalaryNotSet with all monetary fields null so a
		// stale Pending computation can't linger.
		rec.Status = models.PayrollStatusSalaryNotSet
		return w.saveRecomputed(ctx, rec)
	}

	base := *st.BaseSalary
	unpaidDays, err := w.unpaidLeaveDays(ctx, st.ID, month)
	if err != nil {
		return nil, err
	}
	deduction := utils.RoundToMinorUnit(
		unpaidDays.Mul(decimal.NewFromInt(base)).Div(payrollMonthDivisor))
	manual, err := w.store.ManualAdjustmentsTotal(ctx, st.ID, month)
	if err != nil {
		config.LogError(w.logger, "payrollWorkflow.go", "computeForStaff", "ManualAdjustmentsTotal", st.ID, err)
		return nil, err
	}
	net := base - deduction + manual

	rec.BaseSalary = &base
	rec.UnpaidLeaveDays = &unpaidDays
	rec.LeaveDeductions = &deduction
	rec.ManualAdjustmentsTotal = &manual
	rec.NetPayable = &net
	rec.Status = models.PayrollStatusPending
	return w.saveRecomputed(ctx, rec)
}

// saveRecomputed persists a recomputed record. For an existing record the
// per-record lock is held across a status re-check and the write, so the
// recompute cannot undo a ProcessPayroll that landed after the caller's
// initial read: a record paid in that window stays frozen and the stored
// Paid row is returned instead. The store's own refusal to overwrite a Paid
// row covers writers that bypass the lock.
func (w *PayrollCalculator) saveRecomputed(ctx context.Context, rec *models.PayrollRecord) (*models.PayrollRecord, error) {
	if rec.ID != 0 {
		release, err := w.locks.Lock(ctx, payrollLockKey(rec.ID))
		if err != nil {
			return nil, err
		}
		defer release()
		current, err := w.store.PayrollRecordByID(ctx, rec.ID)
		if err != nil && !errors.Is(err, utils.ErrorRecordNotFound) {
			config.LogError(w.logger, "payrollWorkflow.go", "saveRecomputed", "PayrollRecordByID", rec.ID, err)
			return nil, err
		}
		if current != nil && current.Status == models.PayrollStatusPaid {
			return current, nil
		}
	}
	if err := w.store.UpsertPayrollRecord(ctx, rec); err != nil {
		if errors.Is(err, utils.ErrorInvalidState) {
			// The store refused to overwrite a paid row.
			return w.store.PayrollRecordByID(ctx, rec.ID)
		}
		config.LogError(w.logger, "payrollWorkflow.go", "saveRecomputed", "UpsertPayrollRecord", rec.StaffId, err)
		return nil, err
	}
	return rec, nil
}

// unpaidLeaveDays intersects every Approved leave with the month, inclusive
// on both ends: 1 per full day, 0.5 per half-day. Leaves spanning a month
// boundary contribute only the days falling inside the target month.
func (w *PayrollCalculator) unpaidLeaveDays(ctx context.Context, staffId int, month models.Month) (decimal.Decimal, error) {
	monthStart, monthEnd := month.Start(), month.End()
	leaves, err := w.store.ApprovedLeaves(ctx, staffId, monthStart, monthEnd)
	if err != nil {
		config.LogError(w.logger, "payrollWorkflow.go", "unpaidLeaveDays", "ApprovedLeaves", staffId, err)
		return decimal.Zero, err
	}

	days := decimal.Zero
	half := decimal.NewFromFloat(0.5)
	for _, l := range leaves {
		overlapFrom := utils.MaxDate(utils.DateOnly(l.StartDate), monthStart)
		overlapTo := utils.MinDate(utils.DateOnly(l.EndDate), monthEnd)
		n := utils.DaysInclusive(overlapFrom, overlapTo)
		if n <= 0 {
			continue
		}
		perDay := decimal.NewFromInt(1)
		if l.IsHalfDay {
			perDay = half
		}
		days = days.Add(decimal.NewFromInt(int64(n)).Mul(perDay))
	}
	return days, nil
}

// ProcessPayroll transitions every Pending record in the batch to Paid via
// the store's atomic check-and-set. Records that are not Pending (already
// Paid, or SalaryNotSet) are silently skipped: re-submitting the same batch
// is the defined idempotent-retry behavior and must not double-pay. Returns
// the number of records actually paid. An unknown record id is an error.
func (w *PayrollCalculator) ProcessPayroll(ctx context.Context, recordIds []int, processedBy int) (int, error) {
	now := w.clock.Now()
	paid := 0
	for _, id := range recordIds {
		release, err := w.locks.Lock(ctx, payrollLockKey(id))
		if err != nil {
			return paid, err
		}
		ok, err := w.store.MarkPayrollPaid(ctx, id, now, processedBy)
		release()
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				return paid, fmt.Errorf("%w: payroll record %d", utils.ErrorRecordNotFound, id)
			}
			config.LogError(w.logger, "payrollWorkflow.go", "ProcessPayroll", "MarkPayrollPaid", id, err)
			return paid, err
		}
		if ok {
			paid++
		}
	}
	return paid, nil
}
