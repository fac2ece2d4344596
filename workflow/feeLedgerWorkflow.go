package workflow

import (
	"context"
	"fmt"

	"github.com/listen443aditya/Verticx-Backend-sub003/config"
	"github.com/listen443aditya/Verticx-Backend-sub003/models"
	"github.com/listen443aditya/Verticx-Backend-sub003/store"
	"github.com/listen443aditya/Verticx-Backend-sub003/utils"
	"github.com/sirupsen/logrus"
)

// FeeLedger maintains per-student billed/paid balances. The running
// TotalAmount is always re-derivable as TemplateAmount plus the signed sum of
// the non-reversed adjustment history; ReconcileFeeRecord enforces that.
type FeeLedger struct {
	store  store.FeeStore
	clock  Clock
	locks  *EntityLocker
	logger *logrus.Logger
}

func NewFeeLedger(st store.FeeStore, clock Clock, locks *EntityLocker, logger *logrus.Logger) *FeeLedger {
	return &FeeLedger{store: st, clock: clock, locks: locks, logger: logger}
}

// ApplyAdjustment creates the adjustment and moves the student's billed total
// by the signed delta, atomically. Amount is entered positive; concession
// stores a negative delta, charge a positive one.
func (w *FeeLedger) ApplyAdjustment(ctx context.Context, input models.NewFeeAdjustment) (*models.FeeAdjustment, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if input.Amount <= 0 {
		return nil, fmt.Errorf("%w: adjustment amount must be positive, got %d", utils.ErrorInvalidAmount, input.Amount)
	}
	if !input.Type.Valid() {
		return nil, fmt.Errorf("unknown adjustment type %q", input.Type)
	}

	release, err := w.locks.Lock(ctx, feeLockKey(input.StudentId))
	if err != nil {
		return nil, err
	}
	defer release()

	rec, err := w.store.FeeRecordByStudent(ctx, input.StudentId)
	if err != nil {
		return nil, fmt.Errorf("%w: no fee record for student %d", utils.ErrorRecordNotFound, input.StudentId)
	}

	actor, _ := utils.GetUserIdFromContext(ctx)
	delta := input.SignedDelta()
	adj := &models.FeeAdjustment{
		BranchId:       rec.BranchId,
		StudentId:      input.StudentId,
		Type:           input.Type,
		Amount:         delta,
		Reason:         input.Reason,
		AdjustedBy:     actor,
		AdjustmentDate: utils.DateOnly(w.clock.Now()),
	}
	if err := w.store.ApplyAdjustment(ctx, adj, rec.TotalAmount+delta); err != nil {
		config.LogError(w.logger, "feeLedgerWorkflow.go", "ApplyAdjustment", "ApplyAdjustment", input, err)
		return nil, err
	}
	return adj, nil
}

// RecordPayment appends the payment and bumps PaidAmount by it. Overpayment
// is not capped: the resulting negative pending balance is a student credit.
func (w *FeeLedger) RecordPayment(ctx context.Context, input models.NewFeePayment) (*models.FeePayment, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if input.Amount <= 0 {
		return nil, fmt.Errorf("%w: payment amount must be positive, got %d", utils.ErrorInvalidAmount, input.Amount)
	}

	release, err := w.locks.Lock(ctx, feeLockKey(input.StudentId))
	if err != nil {
		return nil, err
	}
	defer release()

	rec, err := w.store.FeeRecordByStudent(ctx, input.StudentId)
	if err != nil {
		return nil, fmt.Errorf("%w: no fee record for student %d", utils.ErrorRecordNotFound, input.StudentId)
	}

	p := &models.FeePayment{
		BranchId:  rec.BranchId,
		StudentId: input.StudentId,
		Amount:    input.Amount,
		PaidDate:  utils.DateOnly(input.PaidDate),
	}
	if err := w.store.AppendFeePayment(ctx, p, rec.PaidAmount+input.Amount); err != nil {
		config.LogError(w.logger, "feeLedgerWorkflow.go", "RecordPayment", "AppendFeePayment", input, err)
		return nil, err
	}
	return p, nil
}

// GetBalance is a pure read. Pending may be negative (credit) and is reported
// as such.
func (w *FeeLedger) GetBalance(ctx context.Context, studentId int) (*models.FeeBalance, error) {
	rec, err := w.store.FeeRecordByStudent(ctx, studentId)
	if err != nil {
		return nil, fmt.Errorf("%w: no fee record for student %d", utils.ErrorRecordNotFound, studentId)
	}
	return &models.FeeBalance{
		StudentId: studentId,
		Total:     rec.TotalAmount,
		Paid:      rec.PaidAmount,
		Pending:   rec.TotalAmount - rec.PaidAmount,
	}, nil
}

// ReverseAdjustment undoes one adjustment. The new total is re-derived from
// the template amount plus the remaining non-reversed deltas, never by
// subtracting the reversed delta from the possibly-drifted stored total.
func (w *FeeLedger) ReverseAdjustment(ctx context.Context, adjustmentId int) (*models.FeeAdjustment, error) {
	adj, err := w.store.AdjustmentByID(ctx, adjustmentId)
	if err != nil {
		return nil, fmt.Errorf("%w: adjustment %d", utils.ErrorRecordNotFound, adjustmentId)
	}

	release, err := w.locks.Lock(ctx, feeLockKey(adj.StudentId))
	if err != nil {
		return nil, err
	}
	defer release()

	// Re-read under the lock.
	adj, err = w.store.AdjustmentByID(ctx, adjustmentId)
	if err != nil {
		return nil, fmt.Errorf("%w: adjustment %d", utils.ErrorRecordNotFound, adjustmentId)
	}
	if adj.Reversed {
		return nil, fmt.Errorf("%w: adjustment %d already reversed", utils.ErrorInvalidState, adjustmentId)
	}

	rec, err := w.store.FeeRecordByStudent(ctx, adj.StudentId)
	if err != nil {
		return nil, fmt.Errorf("%w: no fee record for student %d", utils.ErrorRecordNotFound, adj.StudentId)
	}
	newTotal, err := w.deriveTotal(ctx, rec, adjustmentId)
	if err != nil {
		return nil, err
	}

	actor, _ := utils.GetUserIdFromContext(ctx)
	now := w.clock.Now()
	if err := w.store.MarkAdjustmentReversed(ctx, adjustmentId, newTotal, actor, now); err != nil {
		config.LogError(w.logger, "feeLedgerWorkflow.go", "ReverseAdjustment", "MarkAdjustmentReversed", adjustmentId, err)
		return nil, err
	}
	adj.Reversed = true
	adj.ReversedBy = &actor
	adj.ReversedAt = &now
	return adj, nil
}

// ReconcileFeeRecord recomputes the derived total from the adjustment history
// and corrects the stored value when it drifted. Idempotent. On drift it
// writes a ReconciliationReport row and returns it together with an
// ErrorInconsistentLedger-wrapped error so the drift is reported, not
// silently absorbed; the stored total is corrected either way.
func (w *FeeLedger) ReconcileFeeRecord(ctx context.Context, studentId int) (*models.ReconciliationReport, error) {
	release, err := w.locks.Lock(ctx, feeLockKey(studentId))
	if err != nil {
		return nil, err
	}
	defer release()

	rec, err := w.store.FeeRecordByStudent(ctx, studentId)
	if err != nil {
		return nil, fmt.Errorf("%w: no fee record for student %d", utils.ErrorRecordNotFound, studentId)
	}
	derived, err := w.deriveTotal(ctx, rec, 0)
	if err != nil {
		return nil, err
	}

	report := &models.ReconciliationReport{
		BranchId:     rec.BranchId,
		StudentId:    studentId,
		StoredTotal:  rec.TotalAmount,
		DerivedTotal: derived,
		Delta:        rec.TotalAmount - derived,
		CheckedAt:    w.clock.Now(),
	}
	if report.Delta == 0 {
		return report, nil
	}

	if err := w.store.SetFeeTotal(ctx, studentId, derived); err != nil {
		config.LogError(w.logger, "feeLedgerWorkflow.go", "ReconcileFeeRecord", "SetFeeTotal", studentId, err)
		return nil, err
	}
	report.Resolved = true
	if err := w.store.SaveReconciliationReport(ctx, report); err != nil {
		config.LogError(w.logger, "feeLedgerWorkflow.go", "ReconcileFeeRecord", "SaveReconciliationReport", report, err)
		return nil, err
	}
	config.LogWarn(w.logger, "feeLedgerWorkflow.go", "ReconcileFeeRecord", "drift corrected", report, "fee record total drifted from adjustment history")
	return report, fmt.Errorf("%w: student %d stored=%d derived=%d", utils.ErrorInconsistentLedger, studentId, report.StoredTotal, derived)
}

// ReconcileBranchFees sweeps every fee record of a branch. Returns only the
// reports where drift was found and corrected.
func (w *FeeLedger) ReconcileBranchFees(ctx context.Context, branchId int) ([]*models.ReconciliationReport, error) {
	ids, err := w.store.FeeStudentIDs(ctx, branchId)
	if err != nil {
		return nil, err
	}
	var drifted []*models.ReconciliationReport
	for _, studentId := range ids {
		report, err := w.ReconcileFeeRecord(ctx, studentId)
		if err != nil && report == nil {
			return drifted, err
		}
		if report != nil && report.Delta != 0 {
			drifted = append(drifted, report)
		}
	}
	return drifted, nil
}

// deriveTotal is templateAmount + the signed sum of non-reversed adjustments,
// excluding excludeId (0 to exclude nothing).
func (w *FeeLedger) deriveTotal(ctx context.Context, rec *models.FeeRecord, excludeId int) (int64, error) {
	adjs, err := w.store.AdjustmentsByStudent(ctx, rec.StudentId)
	if err != nil {
		return 0, err
	}
	total := rec.TemplateAmount
	for _, adj := range adjs {
		if adj.Reversed || adj.ID == excludeId {
			continue
		}
		total += adj.Amount
	}
	return total, nil
}
