package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/listen443aditya/Verticx-Backend-sub003/models"
	"github.com/listen443aditya/Verticx-Backend-sub003/utils"
	"github.com/shopspring/decimal"
)

// MemStore is the in-memory Store used by tests and local development.
// Every read hands out a copy so callers can't alias internal state.
type MemStore struct {
	mu sync.RWMutex

	nextID int

	branches    map[int]models.Branch
	students    map[int]models.Student
	staff       map[int]models.StaffProfile
	leaves      map[int]models.LeaveApplication
	feeRecords  map[int]models.FeeRecord // keyed by student id
	adjustments map[int]models.FeeAdjustment
	feePayments map[int]models.FeePayment
	payrolls    map[int]models.PayrollRecord
	manualAdjs  map[int]models.ManualSalaryAdjustment
	contracts   map[int]models.TenantBillingContract // keyed by branch id
	subPayments map[int]models.SubscriptionPayment
	attendance  map[int]models.AttendanceRecord
	examResults map[int]models.ExamResult
	reports     map[int]models.ReconciliationReport
}

func NewMemStore() *MemStore {
	return &MemStore{
		branches:    make(map[int]models.Branch),
		students:    make(map[int]models.Student),
		staff:       make(map[int]models.StaffProfile),
		leaves:      make(map[int]models.LeaveApplication),
		feeRecords:  make(map[int]models.FeeRecord),
		adjustments: make(map[int]models.FeeAdjustment),
		feePayments: make(map[int]models.FeePayment),
		payrolls:    make(map[int]models.PayrollRecord),
		manualAdjs:  make(map[int]models.ManualSalaryAdjustment),
		contracts:   make(map[int]models.TenantBillingContract),
		subPayments: make(map[int]models.SubscriptionPayment),
		attendance:  make(map[int]models.AttendanceRecord),
		examResults: make(map[int]models.ExamResult),
		reports:     make(map[int]models.ReconciliationReport),
	}
}

func (s *MemStore) nextIDLocked() int {
	s.nextID++
	return s.nextID
}

// ---- seed helpers (tests / local dev) ----

func (s *MemStore) PutBranch(b models.Branch) models.Branch {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == 0 {
		b.ID = s.nextIDLocked()
	}
	s.branches[b.ID] = b
	return b
}

func (s *MemStore) PutStudent(st models.Student) models.Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.ID == 0 {
		st.ID = s.nextIDLocked()
	}
	s.students[st.ID] = st
	return st
}

func (s *MemStore) PutStaff(st models.StaffProfile) models.StaffProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.ID == 0 {
		st.ID = s.nextIDLocked()
	}
	s.staff[st.ID] = st
	return st
}

func (s *MemStore) PutLeave(l models.LeaveApplication) models.LeaveApplication {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == 0 {
		l.ID = s.nextIDLocked()
	}
	s.leaves[l.ID] = l
	return l
}

func (s *MemStore) PutFeeRecord(r models.FeeRecord) models.FeeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == 0 {
		r.ID = s.nextIDLocked()
	}
	s.feeRecords[r.StudentId] = r
	return r
}

func (s *MemStore) PutManualAdjustment(m models.ManualSalaryAdjustment) models.ManualSalaryAdjustment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == 0 {
		m.ID = s.nextIDLocked()
	}
	s.manualAdjs[m.ID] = m
	return m
}

func (s *MemStore) PutContract(c models.TenantBillingContract) models.TenantBillingContract {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.nextIDLocked()
	}
	s.contracts[c.BranchId] = c
	return c
}

func (s *MemStore) PutAttendance(a models.AttendanceRecord) models.AttendanceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == 0 {
		a.ID = s.nextIDLocked()
	}
	s.attendance[a.ID] = a
	return a
}

func (s *MemStore) PutExamResult(e models.ExamResult) models.ExamResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == 0 {
		e.ID = s.nextIDLocked()
	}
	s.examResults[e.ID] = e
	return e
}

// Reports returns all reconciliation report rows, for test assertions.
func (s *MemStore) Reports() []models.ReconciliationReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ReconciliationReport, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, r)
	}
	return out
}

// ---- FeeStore ----

func (s *MemStore) FeeRecordByStudent(ctx context.Context, studentId int) (*models.FeeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.feeRecords[studentId]
	if !ok {
		return nil, utils.ErrorRecordNotFound
	}
	cp := rec
	return &cp, nil
}

func (s *MemStore) ApplyAdjustment(ctx context.Context, adj *models.FeeAdjustment, newTotal int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.feeRecords[adj.StudentId]
	if !ok {
		return utils.ErrorRecordNotFound
	}
	if adj.ID == 0 {
		adj.ID = s.nextIDLocked()
	}
	s.adjustments[adj.ID] = *adj
	rec.TotalAmount = newTotal
	s.feeRecords[adj.StudentId] = rec
	return nil
}

func (s *MemStore) AppendFeePayment(ctx context.Context, p *models.FeePayment, newPaid int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.feeRecords[p.StudentId]
	if !ok {
		return utils.ErrorRecordNotFound
	}
	if p.ID == 0 {
		p.ID = s.nextIDLocked()
	}
	s.feePayments[p.ID] = *p
	rec.PaidAmount = newPaid
	s.feeRecords[p.StudentId] = rec
	return nil
}

func (s *MemStore) AdjustmentByID(ctx context.Context, id int) (*models.FeeAdjustment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	adj, ok := s.adjustments[id]
	if !ok {
		return nil, utils.ErrorRecordNotFound
	}
	cp := adj
	return &cp, nil
}

func (s *MemStore) AdjustmentsByStudent(ctx context.Context, studentId int) ([]*models.FeeAdjustment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.FeeAdjustment
	for id := 1; id <= s.nextID; id++ {
		if adj, ok := s.adjustments[id]; ok && adj.StudentId == studentId {
			cp := adj
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemStore) MarkAdjustmentReversed(ctx context.Context, id int, newTotal int64, by int, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	adj, ok := s.adjustments[id]
	if !ok {
		return utils.ErrorRecordNotFound
	}
	adj.Reversed = true
	adj.ReversedBy = &by
	adj.ReversedAt = &at
	s.adjustments[id] = adj
	rec, ok := s.feeRecords[adj.StudentId]
	if !ok {
		return utils.ErrorRecordNotFound
	}
	rec.TotalAmount = newTotal
	s.feeRecords[adj.StudentId] = rec
	return nil
}

func (s *MemStore) SetFeeTotal(ctx context.Context, studentId int, total int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.feeRecords[studentId]
	if !ok {
		return utils.ErrorRecordNotFound
	}
	rec.TotalAmount = total
	s.feeRecords[studentId] = rec
	return nil
}

func (s *MemStore) FeeStudentIDs(ctx context.Context, branchId int) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []int
	for sid := 1; sid <= s.nextID; sid++ {
		if rec, ok := s.feeRecords[sid]; ok && rec.BranchId == branchId {
			ids = append(ids, sid)
		}
	}
	return ids, nil
}

func (s *MemStore) FeeTotals(ctx context.Context, branchId int) (int64, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var billed, paid int64
	for _, rec := range s.feeRecords {
		if rec.BranchId == branchId {
			billed += rec.TotalAmount
			paid += rec.PaidAmount
		}
	}
	return billed, paid, nil
}

func (s *MemStore) SaveReconciliationReport(ctx context.Context, r *models.ReconciliationReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == 0 {
		r.ID = s.nextIDLocked()
	}
	s.reports[r.ID] = *r
	return nil
}

// ---- PayrollStore ----

func (s *MemStore) BranchByID(ctx context.Context, id int) (*models.Branch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.branches[id]
	if !ok {
		return nil, utils.ErrorRecordNotFound
	}
	cp := b
	return &cp, nil
}

func (s *MemStore) StaffByBranch(ctx context.Context, branchId int) ([]*models.StaffProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.StaffProfile
	for id := 1; id <= s.nextID; id++ {
		st, ok := s.staff[id]
		if !ok || st.BranchId != branchId || st.Role == models.StaffRolePrincipal {
			continue
		}
		cp := st
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemStore) StaffByID(ctx context.Context, id int) (*models.StaffProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.staff[id]
	if !ok {
		return nil, utils.ErrorRecordNotFound
	}
	cp := st
	return &cp, nil
}

func (s *MemStore) ApprovedLeaves(ctx context.Context, staffId int, from, to time.Time) ([]*models.LeaveApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.LeaveApplication
	for id := 1; id <= s.nextID; id++ {
		l, ok := s.leaves[id]
		if !ok || l.ApplicantId != staffId || l.Status != models.LeaveStatusApproved {
			continue
		}
		if l.StartDate.After(to) || l.EndDate.Before(from) {
			continue
		}
		cp := l
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemStore) ManualAdjustmentsTotal(ctx context.Context, staffId int, month models.Month) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for _, m := range s.manualAdjs {
		if m.StaffId == staffId && m.Month == month {
			total += m.Amount
		}
	}
	return total, nil
}

func (s *MemStore) PayrollRecord(ctx context.Context, staffId int, month models.Month) (*models.PayrollRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.payrolls {
		if rec.StaffId == staffId && rec.Month == month {
			cp := rec
			return &cp, nil
		}
	}
	return nil, utils.ErrorRecordNotFound
}

func (s *MemStore) PayrollRecordByID(ctx context.Context, id int) (*models.PayrollRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.payrolls[id]
	if !ok {
		return nil, utils.ErrorRecordNotFound
	}
	cp := rec
	return &cp, nil
}

func (s *MemStore) UpsertPayrollRecord(ctx context.Context, rec *models.PayrollRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == 0 {
		for _, existing := range s.payrolls {
			if existing.StaffId == rec.StaffId && existing.Month == rec.Month {
				rec.ID = existing.ID
				break
			}
		}
	}
	if rec.ID != 0 {
		// Paid is terminal; a recompute may never regress it.
		if existing, ok := s.payrolls[rec.ID]; ok && existing.Status == models.PayrollStatusPaid {
			return fmt.Errorf("%w: payroll record %d is already paid", utils.ErrorInvalidState, rec.ID)
		}
	}
	if rec.ID == 0 {
		rec.ID = s.nextIDLocked()
	}
	s.payrolls[rec.ID] = *rec
	return nil
}

func (s *MemStore) MarkPayrollPaid(ctx context.Context, id int, at time.Time, by int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.payrolls[id]
	if !ok {
		return false, utils.ErrorRecordNotFound
	}
	if rec.Status != models.PayrollStatusPending {
		return false, nil
	}
	rec.Status = models.PayrollStatusPaid
	rec.PaidAt = &at
	rec.PaidBy = &by
	s.payrolls[id] = rec
	return true, nil
}

// ---- BillingStore ----

func (s *MemStore) ContractByBranch(ctx context.Context, branchId int) (*models.TenantBillingContract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contracts[branchId]
	if !ok {
		return nil, utils.ErrorRecordNotFound
	}
	cp := c
	return &cp, nil
}

func (s *MemStore) ActiveStudentCount(ctx context.Context, branchId int) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, st := range s.students {
		if st.BranchId == branchId && st.IsActive {
			count++
		}
	}
	return count, nil
}

func (s *MemStore) SubscriptionPaymentsTotal(ctx context.Context, branchId int) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for _, p := range s.subPayments {
		if p.BranchId == branchId {
			total += p.Amount
		}
	}
	return total, nil
}

func (s *MemStore) SubscriptionPaymentByRef(ctx context.Context, ref string) (*models.SubscriptionPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.subPayments {
		if p.TransactionRef == ref {
			cp := p
			return &cp, nil
		}
	}
	return nil, utils.ErrorRecordNotFound
}

func (s *MemStore) AppendSubscriptionPayment(ctx context.Context, p *models.SubscriptionPayment, newNextDue time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contracts[p.BranchId]
	if !ok {
		return utils.ErrorRecordNotFound
	}
	for _, existing := range s.subPayments {
		if existing.TransactionRef == p.TransactionRef {
			return utils.ErrorInvalidState
		}
	}
	if p.ID == 0 {
		p.ID = s.nextIDLocked()
	}
	s.subPayments[p.ID] = *p
	c.NextDueDate = newNextDue
	s.contracts[p.BranchId] = c
	return nil
}

// ---- ScoreStore ----

func (s *MemStore) AvgAcademicScore(ctx context.Context, branchId int) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum := decimal.Zero
	var n int64
	for _, e := range s.examResults {
		if e.BranchId == branchId {
			sum = sum.Add(e.Score)
			n++
		}
	}
	if n == 0 {
		return decimal.Zero, nil
	}
	return sum.Div(decimal.NewFromInt(n)), nil
}

func (s *MemStore) AttendancePercent(ctx context.Context, branchId int) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum := decimal.Zero
	var n int64
	for _, a := range s.attendance {
		if a.BranchId != branchId {
			continue
		}
		switch a.Status {
		case models.AttendanceStatusPresent:
			sum = sum.Add(decimal.NewFromInt(100))
		case models.AttendanceStatusHalfDay:
			sum = sum.Add(decimal.NewFromInt(50))
		}
		n++
	}
	if n == 0 {
		return decimal.Zero, nil
	}
	return sum.Div(decimal.NewFromInt(n)), nil
}
