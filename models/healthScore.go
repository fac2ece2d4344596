package models

import "github.com/shopspring/decimal"

// HealthScoreInput is the derived, read-only composite that feeds the score:
// academic and attendance are 0-100 percentages, collection rate is 0-1.
type HealthScoreInput struct {
	BranchId             int             `json:"branch_id"`
	AvgAcademicScore     decimal.Decimal `json:"avg_academic_score"`
	AttendancePercentage decimal.Decimal `json:"attendance_percentage"`
	FeeCollectionRate    decimal.Decimal `json:"fee_collection_rate"`
}

// TenantHealthScore is one ranked entry: the composite 0-100 score plus the
// inputs it was blended from.
type TenantHealthScore struct {
	BranchId int              `json:"branch_id"`
	Score    decimal.Decimal  `json:"score"`
	Input    HealthScoreInput `json:"input"`
}
