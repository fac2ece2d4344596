package workflow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/listen443aditya/Verticx-Backend-sub003/models"
	"github.com/listen443aditya/Verticx-Backend-sub003/store"
	"github.com/listen443aditya/Verticx-Backend-sub003/utils"
	"github.com/listen443aditya/Verticx-Backend-sub003/workflow"
	"github.com/shopspring/decimal"
)

func seedExamScore(f *fixture, branchId int, score int64) {
	f.mem.PutExamResult(models.ExamResult{
		BranchId: branchId,
		ExamId:   1,
		Score:    decimal.NewFromInt(score),
	})
}

func seedAttendance(f *fixture, branchId int, status models.AttendanceStatus, days int) {
	for i := 0; i < days; i++ {
		f.mem.PutAttendance(models.AttendanceRecord{
			BranchId: branchId,
			Date:     date(2024, time.January, 1+i),
			Status:   status,
		})
	}
}

func TestHealthScore_WeightedComposite(t *testing.T) {
	f := newFixture(date(2024, time.June, 1))
	ctx := context.Background()
	f.seedBranch(1)
	seedExamScore(f, 1, 80)
	seedAttendance(f, 1, models.AttendanceStatusPresent, 3)
	seedAttendance(f, 1, models.AttendanceStatusAbsent, 1)
	f.mem.PutFeeRecord(models.FeeRecord{
		BranchId: 1, StudentId: 99, TemplateAmount: 100000, TotalAmount: 100000, PaidAmount: 60000,
	})

	got, err := f.score.ComputeScore(ctx, 1)
	if err != nil {
		t.Fatalf("ComputeScore: %v", err)
	}
	// 0.5*80 + 0.3*75 + 0.2*(0.6*100) = 74.5
	if !got.Score.Equal(decimal.NewFromFloat(74.5)) {
		t.Fatalf("score = %s, want 74.5", got.Score)
	}
	if !got.Input.FeeCollectionRate.Equal(decimal.NewFromFloat(0.6)) {
		t.Fatalf("feeCollectionRate = %s, want 0.6", got.Input.FeeCollectionRate)
	}
}

func TestHealthScore_NoBillingCountsAsFullCollection(t *testing.T) {
	f := newFixture(date(2024, time.June, 1))
	ctx := context.Background()
	f.seedBranch(1)

	got, err := f.score.ComputeScore(ctx, 1)
	if err != nil {
		t.Fatalf("ComputeScore: %v", err)
	}
	if !got.Input.FeeCollectionRate.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("feeCollectionRate = %s, want 1 when nothing billed", got.Input.FeeCollectionRate)
	}
	// Academic and attendance are zero, so only the collection component remains.
	if !got.Score.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("score = %s, want 20", got.Score)
	}
}

func TestHealthScore_InputsClamped(t *testing.T) {
	f := newFixture(date(2024, time.June, 1))
	ctx := context.Background()
	f.seedBranch(1)
	seedExamScore(f, 1, 120) // bad upstream data
	seedAttendance(f, 1, models.AttendanceStatusPresent, 2)
	f.mem.PutFeeRecord(models.FeeRecord{
		BranchId: 1, StudentId: 99, TemplateAmount: 1000, TotalAmount: 1000, PaidAmount: 5000,
	})

	got, err := f.score.ComputeScore(ctx, 1)
	if err != nil {
		t.Fatalf("ComputeScore: %v", err)
	}
	if !got.Input.AvgAcademicScore.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("academic = %s, want clamped to 100", got.Input.AvgAcademicScore)
	}
	if !got.Input.FeeCollectionRate.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("feeCollectionRate = %s, want capped at 1", got.Input.FeeCollectionRate)
	}
	if !got.Score.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("score = %s, want 100", got.Score)
	}
}

func TestHealthScore_HalfDayAttendance(t *testing.T) {
	f := newFixture(date(2024, time.June, 1))
	ctx := context.Background()
	f.seedBranch(1)
	seedAttendance(f, 1, models.AttendanceStatusPresent, 1)
	seedAttendance(f, 1, models.AttendanceStatusHalfDay, 1)

	got, err := f.score.ComputeScore(ctx, 1)
	if err != nil {
		t.Fatalf("ComputeScore: %v", err)
	}
	if !got.Input.AttendancePercentage.Equal(decimal.NewFromInt(75)) {
		t.Fatalf("attendance = %s, want 75 (half-day counts as 50)", got.Input.AttendancePercentage)
	}
}

func TestHealthScore_UnknownBranch(t *testing.T) {
	f := newFixture(date(2024, time.June, 1))
	if _, err := f.score.ComputeScore(context.Background(), 404); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("err = %v, want ErrorRecordNotFound", err)
	}
}

func TestHealthScore_RankingDeterministic(t *testing.T) {
	f := newFixture(date(2024, time.June, 1))
	ctx := context.Background()

	// Branch 1 scores higher than branches 2 and 3; 2 and 3 are identical so
	// the tie breaks on branch id.
	f.seedBranch(1)
	seedExamScore(f, 1, 90)
	seedAttendance(f, 1, models.AttendanceStatusPresent, 1)
	for _, id := range []int{2, 3} {
		f.seedBranch(id)
		seedExamScore(f, id, 50)
		seedAttendance(f, id, models.AttendanceStatusPresent, 1)
	}

	ranked, err := f.score.RankTenants(ctx, []int{3, 1, 2, 1})
	if err != nil {
		t.Fatalf("RankTenants: %v", err)
	}
	if len(ranked) != 3 {
		t.Fatalf("ranked %d tenants, want 3 (duplicate ids collapse)", len(ranked))
	}
	gotOrder := []int{ranked[0].BranchId, ranked[1].BranchId, ranked[2].BranchId}
	wantOrder := []int{1, 2, 3}
	for i := range wantOrder {
		if gotOrder[i] != wantOrder[i] {
			t.Fatalf("rank order = %v, want %v", gotOrder, wantOrder)
		}
	}
	if ranked[0].Score.LessThan(ranked[1].Score) {
		t.Fatalf("ranking not descending: %s then %s", ranked[0].Score, ranked[1].Score)
	}
}

type feeTotalsCountingStore struct {
	*store.MemStore
	feeTotalsCalls int
}

func (s *feeTotalsCountingStore) FeeTotals(ctx context.Context, branchId int) (int64, int64, error) {
	s.feeTotalsCalls++
	return s.MemStore.FeeTotals(ctx, branchId)
}

// Every ranking call recomputes from current data; nothing is served from a
// snapshot, so a payment recorded between two calls shows up in the second.
func TestHealthScore_RankRecomputesEveryCall(t *testing.T) {
	mem := store.NewMemStore()
	counting := &feeTotalsCountingStore{MemStore: mem}
	agg := workflow.NewHealthScoreAggregator(counting, quietLogger())
	ctx := context.Background()

	mem.PutBranch(models.Branch{ID: 1, Name: "Branch"})
	mem.PutFeeRecord(models.FeeRecord{
		BranchId: 1, StudentId: 99, TemplateAmount: 100000, TotalAmount: 100000, PaidAmount: 50000,
	})

	first, err := agg.RankTenants(ctx, []int{1})
	if err != nil {
		t.Fatalf("first RankTenants: %v", err)
	}
	// Collection improves after the first call.
	rec, err := mem.FeeRecordByStudent(ctx, 99)
	if err != nil {
		t.Fatalf("FeeRecordByStudent: %v", err)
	}
	rec.PaidAmount = 100000
	mem.PutFeeRecord(*rec)

	second, err := agg.RankTenants(ctx, []int{1})
	if err != nil {
		t.Fatalf("second RankTenants: %v", err)
	}
	if counting.feeTotalsCalls != 2 {
		t.Fatalf("FeeTotals calls = %d, want 2 (one full recomputation per ranking)", counting.feeTotalsCalls)
	}
	if !second[0].Score.GreaterThan(first[0].Score) {
		t.Fatalf("second score %s not above first %s despite new payment", second[0].Score, first[0].Score)
	}
	if !second[0].Input.FeeCollectionRate.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("feeCollectionRate = %s, want 1 after full payment", second[0].Input.FeeCollectionRate)
	}
}
