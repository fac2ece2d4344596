package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/listen443aditya/Verticx-Backend-sub003/config"
	"github.com/listen443aditya/Verticx-Backend-sub003/models"
	"github.com/listen443aditya/Verticx-Backend-sub003/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormStore is the production Store backed by MySQL. Constructed with a nil
// db it resolves the global connection per call, which lets routes be wired
// before the database has finished connecting at startup.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) conn() *gorm.DB {
	if s.db != nil {
		return s.db
	}
	return config.GetDB()
}

func (s *GormStore) isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrorRecordNotFound
	}
	return err
}

// ---- FeeStore ----

func (s *GormStore) FeeRecordByStudent(ctx context.Context, studentId int) (*models.FeeRecord, error) {
	var rec models.FeeRecord
	if err := s.conn().WithContext(ctx).Where("student_id = ?", studentId).First(&rec).Error; err != nil {
		return nil, notFound(err)
	}
	return &rec, nil
}

func (s *GormStore) ApplyAdjustment(ctx context.Context, adj *models.FeeAdjustment, newTotal int64) error {
	return s.conn().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(adj).Error; err != nil {
			return err
		}
		return tx.Model(&models.FeeRecord{}).
			Where("student_id = ?", adj.StudentId).
			Update("total_amount", newTotal).Error
	})
}

func (s *GormStore) AppendFeePayment(ctx context.Context, p *models.FeePayment, newPaid int64) error {
	return s.conn().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		return tx.Model(&models.FeeRecord{}).
			Where("student_id = ?", p.StudentId).
			Update("paid_amount", newPaid).Error
	})
}

func (s *GormStore) AdjustmentByID(ctx context.Context, id int) (*models.FeeAdjustment, error) {
	var adj models.FeeAdjustment
	if err := s.conn().WithContext(ctx).First(&adj, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &adj, nil
}

func (s *GormStore) AdjustmentsByStudent(ctx context.Context, studentId int) ([]*models.FeeAdjustment, error) {
	var adjs []*models.FeeAdjustment
	if err := s.conn().WithContext(ctx).
		Where("student_id = ?", studentId).
		Order("id asc").
		Find(&adjs).Error; err != nil {
		return nil, err
	}
	return adjs, nil
}

func (s *GormStore) MarkAdjustmentReversed(ctx context.Context, id int, newTotal int64, by int, at time.Time) error {
	return s.conn().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var adj models.FeeAdjustment
		if err := tx.First(&adj, id).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Model(&models.FeeAdjustment{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{"reversed": true, "reversed_by": by, "reversed_at": at}).Error; err != nil {
			return err
		}
		return tx.Model(&models.FeeRecord{}).
			Where("student_id = ?", adj.StudentId).
			Update("total_amount", newTotal).Error
	})
}

func (s *GormStore) SetFeeTotal(ctx context.Context, studentId int, total int64) error {
	res := s.conn().WithContext(ctx).Model(&models.FeeRecord{}).
		Where("student_id = ?", studentId).
		Update("total_amount", total)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}

func (s *GormStore) FeeStudentIDs(ctx context.Context, branchId int) ([]int, error) {
	var ids []int
	if err := s.conn().WithContext(ctx).Model(&models.FeeRecord{}).
		Where("branch_id = ?", branchId).
		Order("student_id asc").
		Pluck("student_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *GormStore) FeeTotals(ctx context.Context, branchId int) (int64, int64, error) {
	var row struct {
		Billed int64
		Paid   int64
	}
	err := s.conn().WithContext(ctx).Model(&models.FeeRecord{}).
		Select("COALESCE(SUM(total_amount),0) AS billed, COALESCE(SUM(paid_amount),0) AS paid").
		Where("branch_id = ?", branchId).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Billed, row.Paid, nil
}

func (s *GormStore) SaveReconciliationReport(ctx context.Context, r *models.ReconciliationReport) error {
	return s.conn().WithContext(ctx).Create(r).Error
}

// ---- PayrollStore ----

func (s *GormStore) BranchByID(ctx context.Context, id int) (*models.Branch, error) {
	var b models.Branch
	if err := s.conn().WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (s *GormStore) StaffByBranch(ctx context.Context, branchId int) ([]*models.StaffProfile, error) {
	var staff []*models.StaffProfile
	if err := s.conn().WithContext(ctx).
		Where("branch_id = ? AND role <> ?", branchId, models.StaffRolePrincipal).
		Order("id asc").
		Find(&staff).Error; err != nil {
		return nil, err
	}
	return staff, nil
}

func (s *GormStore) StaffByID(ctx context.Context, id int) (*models.StaffProfile, error) {
	var st models.StaffProfile
	if err := s.conn().WithContext(ctx).First(&st, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &st, nil
}

func (s *GormStore) ApprovedLeaves(ctx context.Context, staffId int, from, to time.Time) ([]*models.LeaveApplication, error) {
	var leaves []*models.LeaveApplication
	if err := s.conn().WithContext(ctx).
		Where("applicant_id = ? AND status = ? AND start_date <= ? AND end_date >= ?",
			staffId, models.LeaveStatusApproved, to, from).
		Order("start_date asc").
		Find(&leaves).Error; err != nil {
		return nil, err
	}
	return leaves, nil
}

func (s *GormStore) ManualAdjustmentsTotal(ctx context.Context, staffId int, month models.Month) (int64, error) {
	var total int64
	err := s.conn().WithContext(ctx).Model(&models.ManualSalaryAdjustment{}).
		Select("COALESCE(SUM(amount),0)").
		Where("staff_id = ? AND month = ?", staffId, month).
		Scan(&total).Error
	return total, err
}

func (s *GormStore) PayrollRecord(ctx context.Context, staffId int, month models.Month) (*models.PayrollRecord, error) {
	var rec models.PayrollRecord
	if err := s.conn().WithContext(ctx).
		Where("staff_id = ? AND month = ?", staffId, month).
		First(&rec).Error; err != nil {
		return nil, notFound(err)
	}
	return &rec, nil
}

func (s *GormStore) PayrollRecordByID(ctx context.Context, id int) (*models.PayrollRecord, error) {
	var rec models.PayrollRecord
	if err := s.conn().WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &rec, nil
}

// UpsertPayrollRecord writes a recomputed record. A Paid row is terminal: the
// update is guarded on status so a racing recompute cannot regress it, and
// the refusal surfaces as ErrorInvalidState.
func (s *GormStore) UpsertPayrollRecord(ctx context.Context, rec *models.PayrollRecord) error {
	if rec.ID == 0 {
		existing, err := s.PayrollRecord(ctx, rec.StaffId, rec.Month)
		if err == nil {
			rec.ID = existing.ID
			rec.CreatedAt = existing.CreatedAt
		} else if !errors.Is(err, utils.ErrorRecordNotFound) {
			return err
		}
	}
	if rec.ID == 0 {
		return s.conn().WithContext(ctx).Create(rec).Error
	}
	res := s.conn().WithContext(ctx).Model(&models.PayrollRecord{}).
		Where("id = ? AND status <> ?", rec.ID, models.PayrollStatusPaid).
		Updates(map[string]interface{}{
			"base_salary":              rec.BaseSalary,
			"unpaid_leave_days":        rec.UnpaidLeaveDays,
			"leave_deductions":         rec.LeaveDeductions,
			"manual_adjustments_total": rec.ManualAdjustmentsTotal,
			"net_payable":              rec.NetPayable,
			"status":                   rec.Status,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// MySQL reports affected rows, so a no-op rewrite of identical values
		// also lands here; only an actually-paid row is an error.
		current, err := s.PayrollRecordByID(ctx, rec.ID)
		if err != nil {
			return err
		}
		if current.Status == models.PayrollStatusPaid {
			return fmt.Errorf("%w: payroll record %d is already paid", utils.ErrorInvalidState, rec.ID)
		}
	}
	return nil
}

func (s *GormStore) MarkPayrollPaid(ctx context.Context, id int, at time.Time, by int) (bool, error) {
	res := s.conn().WithContext(ctx).Model(&models.PayrollRecord{}).
		Where("id = ? AND status = ?", id, models.PayrollStatusPending).
		Updates(map[string]interface{}{
			"status":  models.PayrollStatusPaid,
			"paid_at": at,
			"paid_by": by,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ---- BillingStore ----

func (s *GormStore) ContractByBranch(ctx context.Context, branchId int) (*models.TenantBillingContract, error) {
	var c models.TenantBillingContract
	if err := s.conn().WithContext(ctx).Where("branch_id = ?", branchId).First(&c).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *GormStore) ActiveStudentCount(ctx context.Context, branchId int) (int64, error) {
	var count int64
	err := s.conn().WithContext(ctx).Model(&models.Student{}).
		Where("branch_id = ? AND is_active = ?", branchId, true).
		Count(&count).Error
	return count, err
}

func (s *GormStore) SubscriptionPaymentsTotal(ctx context.Context, branchId int) (int64, error) {
	var total int64
	err := s.conn().WithContext(ctx).Model(&models.SubscriptionPayment{}).
		Select("COALESCE(SUM(amount),0)").
		Where("branch_id = ?", branchId).
		Scan(&total).Error
	return total, err
}

func (s *GormStore) SubscriptionPaymentByRef(ctx context.Context, ref string) (*models.SubscriptionPayment, error) {
	var p models.SubscriptionPayment
	if err := s.conn().WithContext(ctx).Where("transaction_ref = ?", ref).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *GormStore) AppendSubscriptionPayment(ctx context.Context, p *models.SubscriptionPayment, newNextDue time.Time) error {
	err := s.conn().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		return tx.Model(&models.TenantBillingContract{}).
			Where("branch_id = ?", p.BranchId).
			Update("next_due_date", newNextDue).Error
	})
	if err != nil && s.isDuplicateKeyErr(err) {
		// A concurrent retry with the same transaction_ref won the race.
		return utils.ErrorInvalidState
	}
	return err
}

// ---- ScoreStore ----

func (s *GormStore) AvgAcademicScore(ctx context.Context, branchId int) (decimal.Decimal, error) {
	var avg decimal.NullDecimal
	err := s.conn().WithContext(ctx).Model(&models.ExamResult{}).
		Select("AVG(score)").
		Where("branch_id = ?", branchId).
		Scan(&avg).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !avg.Valid {
		return decimal.Zero, nil
	}
	return avg.Decimal, nil
}

func (s *GormStore) AttendancePercent(ctx context.Context, branchId int) (decimal.Decimal, error) {
	var avg decimal.NullDecimal
	err := s.conn().WithContext(ctx).Model(&models.AttendanceRecord{}).
		Select("AVG(CASE status WHEN ? THEN 100 WHEN ? THEN 50 ELSE 0 END)",
			models.AttendanceStatusPresent, models.AttendanceStatusHalfDay).
		Where("branch_id = ?", branchId).
		Scan(&avg).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !avg.Valid {
		return decimal.Zero, nil
	}
	return avg.Decimal, nil
}
