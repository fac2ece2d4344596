package workflow_test

import (
	"io"
	"time"

	"github.com/listen443aditya/Verticx-Backend-sub003/models"
	"github.com/listen443aditya/Verticx-Backend-sub003/store"
	"github.com/listen443aditya/Verticx-Backend-sub003/workflow"
	"github.com/sirupsen/logrus"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fixture struct {
	mem    *store.MemStore
	clock  workflow.FixedClock
	ledger *workflow.FeeLedger
	pay    *workflow.PayrollCalculator
	bill   *workflow.SubscriptionBilling
	score  *workflow.HealthScoreAggregator
}

func newFixture(now time.Time) *fixture {
	mem := store.NewMemStore()
	clock := workflow.FixedClock{T: now}
	locks := workflow.NewEntityLocker(nil)
	logger := quietLogger()
	return &fixture{
		mem:    mem,
		clock:  clock,
		ledger: workflow.NewFeeLedger(mem, clock, locks, logger),
		pay:    workflow.NewPayrollCalculator(mem, clock, locks, logger),
		bill:   workflow.NewSubscriptionBilling(mem, clock, locks, logger),
		score:  workflow.NewHealthScoreAggregator(mem, logger),
	}
}

func (f *fixture) seedBranch(id int) models.Branch {
	return f.mem.PutBranch(models.Branch{ID: id, Name: "Branch", Code: ""})
}

func (f *fixture) seedStudentWithFees(branchId int, template int64) models.Student {
	st := f.mem.PutStudent(models.Student{BranchId: branchId, IsActive: true})
	f.mem.PutFeeRecord(models.FeeRecord{
		BranchId:       branchId,
		StudentId:      st.ID,
		TemplateAmount: template,
		TotalAmount:    template,
		DueDate:        date(2024, time.June, 30),
	})
	return st
}

func int64Ptr(v int64) *int64 { return &v }
