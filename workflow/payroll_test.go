package workflow_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/listen443aditya/Verticx-Backend-sub003/models"
	"github.com/listen443aditya/Verticx-Backend-sub003/store"
	"github.com/listen443aditya/Verticx-Backend-sub003/utils"
	"github.com/listen443aditya/Verticx-Backend-sub003/workflow"
	"github.com/shopspring/decimal"
)

func TestPayroll_HalfDayLeaveDeduction(t *testing.T) {
	f := newFixture(date(2024, time.February, 1))
	ctx := context.Background()
	f.seedBranch(1)
	staff := f.mem.PutStaff(models.StaffProfile{
		BranchId:   1,
		Role:       models.StaffRoleTeacher,
		BaseSalary: int64Ptr(75000),
	})
	f.mem.PutLeave(models.LeaveApplication{
		BranchId:    1,
		ApplicantId: staff.ID,
		Status:      models.LeaveStatusApproved,
		StartDate:   date(2024, time.January, 15),
		EndDate:     date(2024, time.January, 15),
		IsHalfDay:   true,
		LeaveType:   "casual",
	})

	records, err := f.pay.ComputeForMonth(ctx, 1, "2024-01")
	if err != nil {
		t.Fatalf("ComputeForMonth: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	rec := records[0]
	if rec.Status != models.PayrollStatusPending {
		t.Fatalf("status = %s, want Pending", rec.Status)
	}
	if !rec.UnpaidLeaveDays.Equal(decimal.NewFromFloat(0.5)) {
		t.Fatalf("unpaidLeaveDays = %s, want 0.5", rec.UnpaidLeaveDays)
	}
	if *rec.LeaveDeductions != 1250 {
		t.Fatalf("leaveDeductions = %d, want 1250", *rec.LeaveDeductions)
	}
	if *rec.NetPayable != 73750 {
		t.Fatalf("netPayable = %d, want 73750", *rec.NetPayable)
	}
}

// A 3-day leave spanning Jan 30 - Feb 1 prorates to 2 days in January and 1
// day in February.
func TestPayroll_LeaveSpanningMonthBoundary(t *testing.T) {
	f := newFixture(date(2024, time.March, 1))
	ctx := context.Background()
	f.seedBranch(1)
	staff := f.mem.PutStaff(models.StaffProfile{
		BranchId:   1,
		Role:       models.StaffRoleTeacher,
		BaseSalary: int64Ptr(30000),
	})
	f.mem.PutLeave(models.LeaveApplication{
		BranchId:    1,
		ApplicantId: staff.ID,
		Status:      models.LeaveStatusApproved,
		StartDate:   date(2024, time.January, 30),
		EndDate:     date(2024, time.February, 1),
	})

	jan, err := f.pay.ComputeForMonth(ctx, 1, "2024-01")
	if err != nil {
		t.Fatalf("ComputeForMonth jan: %v", err)
	}
	if !jan[0].UnpaidLeaveDays.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("january unpaidLeaveDays = %s, want 2", jan[0].UnpaidLeaveDays)
	}
	if *jan[0].LeaveDeductions != 2000 {
		t.Fatalf("january leaveDeductions = %d, want 2000", *jan[0].LeaveDeductions)
	}

	feb, err := f.pay.ComputeForMonth(ctx, 1, "2024-02")
	if err != nil {
		t.Fatalf("ComputeForMonth feb: %v", err)
	}
	if !feb[0].UnpaidLeaveDays.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("february unpaidLeaveDays = %s, want 1", feb[0].UnpaidLeaveDays)
	}
	if *feb[0].LeaveDeductions != 1000 {
		t.Fatalf("february leaveDeductions = %d, want 1000", *feb[0].LeaveDeductions)
	}
}

func TestPayroll_PendingAndRejectedLeavesIgnored(t *testing.T) {
	f := newFixture(date(2024, time.February, 1))
	ctx := context.Background()
	f.seedBranch(1)
	staff := f.mem.PutStaff(models.StaffProfile{
		BranchId:   1,
		Role:       models.StaffRoleTeacher,
		BaseSalary: int64Ptr(60000),
	})
	for _, status := range []models.LeaveStatus{models.LeaveStatusPending, models.LeaveStatusRejected} {
		f.mem.PutLeave(models.LeaveApplication{
			BranchId:    1,
			ApplicantId: staff.ID,
			Status:      status,
			StartDate:   date(2024, time.January, 10),
			EndDate:     date(2024, time.January, 12),
		})
	}

	records, err := f.pay.ComputeForMonth(ctx, 1, "2024-01")
	if err != nil {
		t.Fatalf("ComputeForMonth: %v", err)
	}
	if !records[0].UnpaidLeaveDays.IsZero() {
		t.Fatalf("unpaidLeaveDays = %s, want 0", records[0].UnpaidLeaveDays)
	}
	if *records[0].NetPayable != 60000 {
		t.Fatalf("netPayable = %d, want 60000", *records[0].NetPayable)
	}
}

func TestPayroll_ManualAdjustmentsSigned(t *testing.T) {
	f := newFixture(date(2024, time.February, 1))
	ctx := context.Background()
	f.seedBranch(1)
	staff := f.mem.PutStaff(models.StaffProfile{
		BranchId:   1,
		Role:       models.StaffRoleAccountant,
		BaseSalary: int64Ptr(50000),
	})
	f.mem.PutManualAdjustment(models.ManualSalaryAdjustment{
		BranchId: 1, StaffId: staff.ID, Month: "2024-01", Amount: 8000, Reason: "festival bonus",
	})
	f.mem.PutManualAdjustment(models.ManualSalaryAdjustment{
		BranchId: 1, StaffId: staff.ID, Month: "2024-01", Amount: -3000, Reason: "advance recovery",
	})

	records, err := f.pay.ComputeForMonth(ctx, 1, "2024-01")
	if err != nil {
		t.Fatalf("ComputeForMonth: %v", err)
	}
	if *records[0].ManualAdjustmentsTotal != 5000 {
		t.Fatalf("manualAdjustmentsTotal = %d, want 5000", *records[0].ManualAdjustmentsTotal)
	}
	if *records[0].NetPayable != 55000 {
		t.Fatalf("netPayable = %d, want 55000", *records[0].NetPayable)
	}
}

func TestPayroll_SalaryNotSetOverwritesPending(t *testing.T) {
	f := newFixture(date(2024, time.February, 1))
	ctx := context.Background()
	f.seedBranch(1)
	staff := f.mem.PutStaff(models.StaffProfile{
		BranchId:   1,
		Role:       models.StaffRoleTeacher,
		BaseSalary: int64Ptr(40000),
	})

	records, err := f.pay.ComputeForMonth(ctx, 1, "2024-01")
	if err != nil {
		t.Fatalf("first compute: %v", err)
	}
	if records[0].Status != models.PayrollStatusPending {
		t.Fatalf("status = %s, want Pending", records[0].Status)
	}
	firstID := records[0].ID

	// HR clears the salary configuration.
	staff.BaseSalary = nil
	f.mem.PutStaff(staff)

	records, err = f.pay.ComputeForMonth(ctx, 1, "2024-01")
	if err != nil {
		t.Fatalf("second compute: %v", err)
	}
	rec := records[0]
	if rec.Status != models.PayrollStatusSalaryNotSet {
		t.Fatalf("status = %s, want SalaryNotSet", rec.Status)
	}
	if rec.ID != firstID {
		t.Fatalf("record id changed %d -> %d, want overwrite of the same record", firstID, rec.ID)
	}
	if rec.BaseSalary != nil || rec.NetPayable != nil || rec.LeaveDeductions != nil {
		t.Fatalf("monetary fields not null: %+v", rec)
	}
}

func TestPayroll_PaidRecordFrozen(t *testing.T) {
	f := newFixture(date(2024, time.February, 5))
	ctx := context.Background()
	f.seedBranch(1)
	staff := f.mem.PutStaff(models.StaffProfile{
		BranchId:   1,
		Role:       models.StaffRoleTeacher,
		BaseSalary: int64Ptr(40000),
	})

	records, err := f.pay.ComputeForMonth(ctx, 1, "2024-01")
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if _, err := f.pay.ProcessPayroll(ctx, []int{records[0].ID}, 7); err != nil {
		t.Fatalf("ProcessPayroll: %v", err)
	}

	// New inputs after payment must not change the payslip.
	f.mem.PutManualAdjustment(models.ManualSalaryAdjustment{
		BranchId: 1, StaffId: staff.ID, Month: "2024-01", Amount: 9999,
	})

	records, err = f.pay.ComputeForMonth(ctx, 1, "2024-01")
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	rec := records[0]
	if rec.Status != models.PayrollStatusPaid {
		t.Fatalf("status = %s, want Paid", rec.Status)
	}
	if *rec.NetPayable != 40000 {
		t.Fatalf("netPayable = %d, want frozen 40000", *rec.NetPayable)
	}
	if rec.PaidBy == nil || *rec.PaidBy != 7 {
		t.Fatalf("paidBy = %v, want 7", rec.PaidBy)
	}
}

func TestPayroll_ProcessIsIdempotent(t *testing.T) {
	f := newFixture(date(2024, time.February, 5))
	ctx := context.Background()
	f.seedBranch(1)
	f.mem.PutStaff(models.StaffProfile{BranchId: 1, Role: models.StaffRoleTeacher, BaseSalary: int64Ptr(30000)})
	f.mem.PutStaff(models.StaffProfile{BranchId: 1, Role: models.StaffRoleLibrarian, BaseSalary: nil})

	records, err := f.pay.ComputeForMonth(ctx, 1, "2024-01")
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	ids := []int{records[0].ID, records[1].ID}

	paid, err := f.pay.ProcessPayroll(ctx, ids, 3)
	if err != nil {
		t.Fatalf("first ProcessPayroll: %v", err)
	}
	if paid != 1 {
		t.Fatalf("first run paid = %d, want 1 (SalaryNotSet skipped)", paid)
	}

	after1, _ := f.mem.PayrollRecordByID(ctx, ids[0])

	paid, err = f.pay.ProcessPayroll(ctx, ids, 3)
	if err != nil {
		t.Fatalf("second ProcessPayroll: %v", err)
	}
	if paid != 0 {
		t.Fatalf("second run paid = %d, want 0", paid)
	}

	after2, _ := f.mem.PayrollRecordByID(ctx, ids[0])
	if !after1.PaidAt.Equal(*after2.PaidAt) || *after1.PaidBy != *after2.PaidBy || after1.Status != after2.Status {
		t.Fatalf("stored state changed on retry: %+v vs %+v", after1, after2)
	}
}

func TestPayroll_PrincipalExcluded(t *testing.T) {
	f := newFixture(date(2024, time.February, 1))
	ctx := context.Background()
	f.seedBranch(1)
	f.mem.PutStaff(models.StaffProfile{BranchId: 1, Role: models.StaffRolePrincipal, BaseSalary: int64Ptr(90000)})
	f.mem.PutStaff(models.StaffProfile{BranchId: 1, Role: models.StaffRoleTeacher, BaseSalary: int64Ptr(45000)})

	records, err := f.pay.ComputeForMonth(ctx, 1, "2024-01")
	if err != nil {
		t.Fatalf("ComputeForMonth: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1 (principal excluded)", len(records))
	}
}

// midRecomputePayStore marks the record Paid the moment a recompute reads it
// while Pending, simulating a payment that lands between the recompute's read
// and its write.
type midRecomputePayStore struct {
	*store.MemStore
	payOnce sync.Once
	payAt   time.Time
	payBy   int
}

func (s *midRecomputePayStore) PayrollRecord(ctx context.Context, staffId int, month models.Month) (*models.PayrollRecord, error) {
	rec, err := s.MemStore.PayrollRecord(ctx, staffId, month)
	if err == nil && rec.Status == models.PayrollStatusPending {
		s.payOnce.Do(func() {
			_, _ = s.MemStore.MarkPayrollPaid(ctx, rec.ID, s.payAt, s.payBy)
		})
		// Hand back the stale Pending snapshot the recompute already saw.
		stale := *rec
		return &stale, nil
	}
	return rec, err
}

// A payment landing mid-recompute must not be undone: the record stays Paid
// and a later batch retry must not pay it again.
func TestPayroll_PaymentDuringRecomputeStaysPaid(t *testing.T) {
	mem := store.NewMemStore()
	raced := &midRecomputePayStore{MemStore: mem, payAt: date(2024, time.February, 5), payBy: 7}
	calc := workflow.NewPayrollCalculator(
		raced,
		workflow.FixedClock{T: date(2024, time.February, 5)},
		workflow.NewEntityLocker(nil),
		quietLogger(),
	)
	ctx := context.Background()
	mem.PutBranch(models.Branch{ID: 1, Name: "Branch"})
	mem.PutStaff(models.StaffProfile{BranchId: 1, Role: models.StaffRoleTeacher, BaseSalary: int64Ptr(40000)})

	// First compute stores the Pending record; no Pending row existed at read
	// time, so the out-of-band payment has not fired yet.
	first, err := calc.ComputeForMonth(ctx, 1, "2024-01")
	if err != nil {
		t.Fatalf("first compute: %v", err)
	}
	recID := first[0].ID

	// Second compute reads the Pending record and the payment lands in the
	// window before its write.
	records, err := calc.ComputeForMonth(ctx, 1, "2024-01")
	if err != nil {
		t.Fatalf("second compute: %v", err)
	}
	if records[0].Status != models.PayrollStatusPaid {
		t.Fatalf("returned status = %s, want Paid", records[0].Status)
	}

	stored, err := mem.PayrollRecordByID(ctx, recID)
	if err != nil {
		t.Fatalf("PayrollRecordByID: %v", err)
	}
	if stored.Status != models.PayrollStatusPaid {
		t.Fatalf("stored status = %s, want Paid (recompute must not regress it)", stored.Status)
	}
	if stored.PaidAt == nil || stored.PaidBy == nil || *stored.PaidBy != 7 {
		t.Fatalf("payment fields wiped: paidAt=%v paidBy=%v", stored.PaidAt, stored.PaidBy)
	}

	paid, err := calc.ProcessPayroll(ctx, []int{recID}, 9)
	if err != nil {
		t.Fatalf("ProcessPayroll retry: %v", err)
	}
	if paid != 0 {
		t.Fatalf("retry paid = %d, want 0", paid)
	}
	after, _ := mem.PayrollRecordByID(ctx, recID)
	if *after.PaidBy != 7 || !after.PaidAt.Equal(*stored.PaidAt) {
		t.Fatalf("retry rewrote payment fields: %+v", after)
	}
}

func TestPayroll_UnknownBranch(t *testing.T) {
	f := newFixture(date(2024, time.February, 1))
	if _, err := f.pay.ComputeForMonth(context.Background(), 42, "2024-01"); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("err = %v, want ErrorRecordNotFound", err)
	}
}
