package workflow

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/listen443aditya/Verticx-Backend-sub003/config"
	"github.com/listen443aditya/Verticx-Backend-sub003/models"
	"github.com/listen443aditya/Verticx-Backend-sub003/store"
	"github.com/listen443aditya/Verticx-Backend-sub003/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Score weights: academic 0.5, attendance 0.3, fee collection 0.2.
var (
	weightAcademic   = decimal.NewFromFloat(0.5)
	weightAttendance = decimal.NewFromFloat(0.3)
	weightCollection = decimal.NewFromFloat(0.2)
)

// Last published ranking, kept in redis for dashboards that only want to
// display the most recent sweep. Never read back by RankTenants itself.
const (
	rankSnapshotKey = "healthscore:rank:latest"
	rankSnapshotTTL = 60 * time.Second
)

// HealthScoreAggregator folds academic, attendance, and fee-collection
// signals into one composite 0-100 score per tenant. Recomputation is always
// full; there is no incremental state, so concurrent calls for different
// tenants are safe.
type HealthScoreAggregator struct {
	store  store.Store
	logger *logrus.Logger
}

func NewHealthScoreAggregator(st store.Store, logger *logrus.Logger) *HealthScoreAggregator {
	return &HealthScoreAggregator{store: st, logger: logger}
}

// ComputeScore = 0.5*academic + 0.3*attendance + 0.2*(collectionRate*100).
// Collection rate is paid/billed, defined as 1.0 when nothing was billed so a
// tenant without billable activity is not penalized; a rate above 1.0
// (overcollection) is capped so the composite stays within [0,100].
func (w *HealthScoreAggregator) ComputeScore(ctx context.Context, branchId int) (*models.TenantHealthScore, error) {
	if _, err := w.store.BranchByID(ctx, branchId); err != nil {
		return nil, fmt.Errorf("%w: branch %d", utils.ErrorRecordNotFound, branchId)
	}

	academic, err := w.store.AvgAcademicScore(ctx, branchId)
	if err != nil {
		config.LogError(w.logger, "healthScoreWorkflow.go", "ComputeScore", "AvgAcademicScore", branchId, err)
		return nil, err
	}
	attendance, err := w.store.AttendancePercent(ctx, branchId)
	if err != nil {
		config.LogError(w.logger, "healthScoreWorkflow.go", "ComputeScore", "AttendancePercent", branchId, err)
		return nil, err
	}
	billed, paid, err := w.store.FeeTotals(ctx, branchId)
	if err != nil {
		config.LogError(w.logger, "healthScoreWorkflow.go", "ComputeScore", "FeeTotals", branchId, err)
		return nil, err
	}

	academic = clampPercent(academic)
	attendance = clampPercent(attendance)

	rate := decimal.NewFromInt(1)
	if billed != 0 {
		rate = decimal.NewFromInt(paid).Div(decimal.NewFromInt(billed))
	}
	rate = clampUnit(rate)

	score := weightAcademic.Mul(academic).
		Add(weightAttendance.Mul(attendance)).
		Add(weightCollection.Mul(rate.Mul(oneHundred))).
		Round(2)

	return &models.TenantHealthScore{
		BranchId: branchId,
		Score:    score,
		Input: models.HealthScoreInput{
			BranchId:             branchId,
			AvgAcademicScore:     academic,
			AttendancePercentage: attendance,
			FeeCollectionRate:    rate,
		},
	}, nil
}

// RankTenants recomputes every requested tenant's score from current data on
// every call and orders them score descending, ties broken by branch id
// ascending, so dashboards are reproducible. The result is published to redis
// as a short-lived snapshot for LatestRanking.
func (w *HealthScoreAggregator) RankTenants(ctx context.Context, branchIds []int) ([]*models.TenantHealthScore, error) {
	ids := utils.UniqueInts(branchIds)

	scores := make([]*models.TenantHealthScore, 0, len(ids))
	for _, id := range ids {
		s, err := w.ComputeScore(ctx, id)
		if err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}

	sort.SliceStable(scores, func(i, j int) bool {
		cmp := scores[i].Score.Cmp(scores[j].Score)
		if cmp != 0 {
			return cmp > 0
		}
		return scores[i].BranchId < scores[j].BranchId
	})

	if err := config.SetRedisObject(rankSnapshotKey, scores, rankSnapshotTTL); err != nil {
		config.LogError(w.logger, "healthScoreWorkflow.go", "RankTenants", "SetRedisObject", rankSnapshotKey, err)
	}
	return scores, nil
}

// LatestRanking returns the last ranking published by RankTenants, if the
// snapshot is still live. It never computes anything; callers wanting fresh
// scores use RankTenants.
func (w *HealthScoreAggregator) LatestRanking() ([]*models.TenantHealthScore, bool, error) {
	var snapshot []*models.TenantHealthScore
	found, err := config.GetRedisObject(rankSnapshotKey, &snapshot)
	if err != nil || !found {
		return nil, false, err
	}
	return snapshot, true, nil
}

func clampPercent(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(oneHundred) {
		return oneHundred
	}
	return d
}

func clampUnit(d decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(one) {
		return one
	}
	return d
}
