package workflow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/listen443aditya/Verticx-Backend-sub003/models"
	"github.com/listen443aditya/Verticx-Backend-sub003/utils"
)

func TestFeeLedger_ConcessionThenPayment(t *testing.T) {
	f := newFixture(date(2024, time.April, 1))
	ctx := context.Background()
	f.seedBranch(1)
	st := f.seedStudentWithFees(1, 120000)

	adj, err := f.ledger.ApplyAdjustment(ctx, models.NewFeeAdjustment{
		StudentId: st.ID,
		Type:      models.FeeAdjustmentTypeConcession,
		Amount:    5000,
		Reason:    "sibling concession",
	})
	if err != nil {
		t.Fatalf("ApplyAdjustment: %v", err)
	}
	if adj.Amount != -5000 {
		t.Fatalf("concession delta = %d, want -5000", adj.Amount)
	}

	if _, err := f.ledger.RecordPayment(ctx, models.NewFeePayment{
		StudentId: st.ID,
		Amount:    80000,
		PaidDate:  date(2024, time.April, 10),
	}); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}

	bal, err := f.ledger.GetBalance(ctx, st.ID)
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if bal.Total != 115000 || bal.Paid != 80000 || bal.Pending != 35000 {
		t.Fatalf("balance = {total:%d paid:%d pending:%d}, want {115000 80000 35000}",
			bal.Total, bal.Paid, bal.Pending)
	}
}

func TestFeeLedger_InvalidAmountRejected(t *testing.T) {
	f := newFixture(date(2024, time.April, 1))
	ctx := context.Background()
	f.seedBranch(1)
	st := f.seedStudentWithFees(1, 50000)

	for _, amount := range []int64{0, -100} {
		_, err := f.ledger.ApplyAdjustment(ctx, models.NewFeeAdjustment{
			StudentId: st.ID,
			Type:      models.FeeAdjustmentTypeCharge,
			Amount:    amount,
		})
		if !errors.Is(err, utils.ErrorInvalidAmount) {
			t.Fatalf("ApplyAdjustment(amount=%d) err = %v, want ErrorInvalidAmount", amount, err)
		}

		_, err = f.ledger.RecordPayment(ctx, models.NewFeePayment{
			StudentId: st.ID,
			Amount:    amount,
			PaidDate:  date(2024, time.April, 2),
		})
		if !errors.Is(err, utils.ErrorInvalidAmount) {
			t.Fatalf("RecordPayment(amount=%d) err = %v, want ErrorInvalidAmount", amount, err)
		}
	}
}

func TestFeeLedger_NoFeeRecord(t *testing.T) {
	f := newFixture(date(2024, time.April, 1))
	ctx := context.Background()

	_, err := f.ledger.ApplyAdjustment(ctx, models.NewFeeAdjustment{
		StudentId: 999,
		Type:      models.FeeAdjustmentTypeCharge,
		Amount:    100,
	})
	if !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("ApplyAdjustment err = %v, want ErrorRecordNotFound", err)
	}
	if _, err := f.ledger.GetBalance(ctx, 999); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("GetBalance err = %v, want ErrorRecordNotFound", err)
	}
}

func TestFeeLedger_OverpaymentReportsCredit(t *testing.T) {
	f := newFixture(date(2024, time.April, 1))
	ctx := context.Background()
	f.seedBranch(1)
	st := f.seedStudentWithFees(1, 10000)

	if _, err := f.ledger.RecordPayment(ctx, models.NewFeePayment{
		StudentId: st.ID, Amount: 12500, PaidDate: date(2024, time.April, 3),
	}); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}

	bal, err := f.ledger.GetBalance(ctx, st.ID)
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if bal.Pending != -2500 {
		t.Fatalf("pending = %d, want -2500 (credit, not floored)", bal.Pending)
	}
}

// Ledger identity: after any sequence of adjustments, the stored total equals
// the template amount plus the signed sum of non-reversed deltas.
func TestFeeLedger_LedgerIdentity(t *testing.T) {
	f := newFixture(date(2024, time.April, 1))
	ctx := context.Background()
	f.seedBranch(1)
	st := f.seedStudentWithFees(1, 100000)

	steps := []struct {
		typ    models.FeeAdjustmentType
		amount int64
	}{
		{models.FeeAdjustmentTypeCharge, 15000},
		{models.FeeAdjustmentTypeConcession, 4000},
		{models.FeeAdjustmentTypeCharge, 250},
		{models.FeeAdjustmentTypeConcession, 11250},
	}
	expected := int64(100000)
	for i, s := range steps {
		if _, err := f.ledger.ApplyAdjustment(ctx, models.NewFeeAdjustment{
			StudentId: st.ID, Type: s.typ, Amount: s.amount,
		}); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if s.typ == models.FeeAdjustmentTypeConcession {
			expected -= s.amount
		} else {
			expected += s.amount
		}
		bal, err := f.ledger.GetBalance(ctx, st.ID)
		if err != nil {
			t.Fatalf("step %d GetBalance: %v", i, err)
		}
		if bal.Total != expected {
			t.Fatalf("step %d: total = %d, want %d", i, bal.Total, expected)
		}
	}
}

func TestFeeLedger_ReverseAdjustment(t *testing.T) {
	f := newFixture(date(2024, time.April, 1))
	ctx := context.Background()
	f.seedBranch(1)
	st := f.seedStudentWithFees(1, 100000)

	charge, err := f.ledger.ApplyAdjustment(ctx, models.NewFeeAdjustment{
		StudentId: st.ID, Type: models.FeeAdjustmentTypeCharge, Amount: 20000,
	})
	if err != nil {
		t.Fatalf("charge: %v", err)
	}
	if _, err := f.ledger.ApplyAdjustment(ctx, models.NewFeeAdjustment{
		StudentId: st.ID, Type: models.FeeAdjustmentTypeConcession, Amount: 5000,
	}); err != nil {
		t.Fatalf("concession: %v", err)
	}

	rev, err := f.ledger.ReverseAdjustment(ctx, charge.ID)
	if err != nil {
		t.Fatalf("ReverseAdjustment: %v", err)
	}
	if !rev.Reversed {
		t.Fatal("adjustment not flagged reversed")
	}

	// Total re-derived from remaining history: 100000 - 5000.
	bal, err := f.ledger.GetBalance(ctx, st.ID)
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if bal.Total != 95000 {
		t.Fatalf("total after reversal = %d, want 95000", bal.Total)
	}

	if _, err := f.ledger.ReverseAdjustment(ctx, charge.ID); !errors.Is(err, utils.ErrorInvalidState) {
		t.Fatalf("double reversal err = %v, want ErrorInvalidState", err)
	}
}

func TestFeeLedger_ReconcileCorrectsDrift(t *testing.T) {
	f := newFixture(date(2024, time.April, 1))
	ctx := context.Background()
	f.seedBranch(1)
	st := f.seedStudentWithFees(1, 100000)

	if _, err := f.ledger.ApplyAdjustment(ctx, models.NewFeeAdjustment{
		StudentId: st.ID, Type: models.FeeAdjustmentTypeCharge, Amount: 7000,
	}); err != nil {
		t.Fatalf("charge: %v", err)
	}

	// No drift yet: reconcile is a no-op.
	report, err := f.ledger.ReconcileFeeRecord(ctx, st.ID)
	if err != nil {
		t.Fatalf("ReconcileFeeRecord clean: %v", err)
	}
	if report.Delta != 0 {
		t.Fatalf("clean delta = %d, want 0", report.Delta)
	}

	// Simulate a persistence bug that let the stored total drift.
	if err := f.mem.SetFeeTotal(ctx, st.ID, 999999); err != nil {
		t.Fatalf("SetFeeTotal: %v", err)
	}

	report, err = f.ledger.ReconcileFeeRecord(ctx, st.ID)
	if !errors.Is(err, utils.ErrorInconsistentLedger) {
		t.Fatalf("drift err = %v, want ErrorInconsistentLedger", err)
	}
	if report == nil || !report.Resolved || report.DerivedTotal != 107000 {
		t.Fatalf("drift report = %+v, want resolved with derived 107000", report)
	}

	// Corrected and idempotent: a second run finds nothing.
	report, err = f.ledger.ReconcileFeeRecord(ctx, st.ID)
	if err != nil || report.Delta != 0 {
		t.Fatalf("second reconcile = (%+v, %v), want clean", report, err)
	}

	if got := len(f.mem.Reports()); got != 1 {
		t.Fatalf("reconciliation report rows = %d, want 1", got)
	}
}

func TestFeeLedger_ReconcileBranchSweep(t *testing.T) {
	f := newFixture(date(2024, time.April, 1))
	ctx := context.Background()
	f.seedBranch(1)
	a := f.seedStudentWithFees(1, 50000)
	b := f.seedStudentWithFees(1, 60000)

	if err := f.mem.SetFeeTotal(ctx, b.ID, 1); err != nil {
		t.Fatalf("SetFeeTotal: %v", err)
	}

	drifted, err := f.ledger.ReconcileBranchFees(ctx, 1)
	if err != nil {
		t.Fatalf("ReconcileBranchFees: %v", err)
	}
	if len(drifted) != 1 || drifted[0].StudentId != b.ID {
		t.Fatalf("drifted = %+v, want only student %d", drifted, b.ID)
	}
	if bal, _ := f.ledger.GetBalance(ctx, a.ID); bal.Total != 50000 {
		t.Fatalf("untouched student total = %d, want 50000", bal.Total)
	}
}
