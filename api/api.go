package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/listen443aditya/Verticx-Backend-sub003/models"
	"github.com/listen443aditya/Verticx-Backend-sub003/utils"
	"github.com/listen443aditya/Verticx-Backend-sub003/workflow"
	"github.com/sirupsen/logrus"
)

// Handler exposes the settlement engines as JSON endpoints. It binds, calls a
// workflow, and maps error kinds to status codes; all business rules live in
// the workflow layer.
type Handler struct {
	fees    *workflow.FeeLedger
	payroll *workflow.PayrollCalculator
	billing *workflow.SubscriptionBilling
	scores  *workflow.HealthScoreAggregator
	clock   workflow.Clock
	logger  *logrus.Logger
}

func NewHandler(
	fees *workflow.FeeLedger,
	payroll *workflow.PayrollCalculator,
	billing *workflow.SubscriptionBilling,
	scores *workflow.HealthScoreAggregator,
	clock workflow.Clock,
	logger *logrus.Logger,
) *Handler {
	return &Handler{fees: fees, payroll: payroll, billing: billing, scores: scores, clock: clock, logger: logger}
}

func (h *Handler) Register(r *gin.Engine) {
	v1 := r.Group("/v1")

	fees := v1.Group("/fees")
	fees.POST("/adjustments", h.applyFeeAdjustment)
	fees.POST("/adjustments/:id/reverse", h.reverseFeeAdjustment)
	fees.POST("/payments", h.recordFeePayment)
	fees.GET("/students/:studentId/balance", h.feeBalance)
	fees.POST("/students/:studentId/reconcile", h.reconcileStudent)
	fees.POST("/branches/:branchId/reconcile", h.reconcileBranch)

	payroll := v1.Group("/payroll")
	payroll.POST("/branches/:branchId/compute", h.computePayroll)
	payroll.POST("/process", h.processPayroll)

	billing := v1.Group("/billing")
	billing.GET("/branches/:branchId/owed", h.subscriptionOwed)
	billing.GET("/branches/:branchId/current", h.subscriptionCurrent)
	billing.POST("/payments", h.recordSubscriptionPayment)

	scores := v1.Group("/health-scores")
	scores.GET("/branches/:branchId", h.healthScore)
	scores.POST("/rank", h.rankTenants)
	scores.GET("/rank/latest", h.latestRanking)
}

// statusFor maps the workflow error kinds onto HTTP statuses. Anything
// unmatched is an infrastructure failure (raw DB or redis errors reach the
// handler unwrapped) and surfaces as a server fault.
func statusFor(err error) int {
	switch {
	case errors.Is(err, utils.ErrorRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, utils.ErrorInvalidState):
		return http.StatusConflict
	case errors.Is(err, utils.ErrorInconsistentLedger):
		return http.StatusConflict
	case errors.Is(err, utils.ErrorInvalidAmount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a positive integer"})
		return 0, false
	}
	return v, true
}

// asOfQuery parses an optional ?as_of=YYYY-MM-DD, defaulting to today.
func (h *Handler) asOfQuery(c *gin.Context) (time.Time, bool) {
	raw := c.Query("as_of")
	if raw == "" {
		return h.clock.Now(), true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "as_of must be YYYY-MM-DD"})
		return time.Time{}, false
	}
	return t, true
}

// ---- fee ledger ----

func (h *Handler) applyFeeAdjustment(c *gin.Context) {
	var input models.NewFeeAdjustment
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	adj, err := h.fees.ApplyAdjustment(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, adj)
}

func (h *Handler) reverseFeeAdjustment(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	adj, err := h.fees.ReverseAdjustment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, adj)
}

func (h *Handler) recordFeePayment(c *gin.Context) {
	var input models.NewFeePayment
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	p, err := h.fees.RecordPayment(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) feeBalance(c *gin.Context) {
	studentId, ok := intParam(c, "studentId")
	if !ok {
		return
	}
	balance, err := h.fees.GetBalance(c.Request.Context(), studentId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

func (h *Handler) reconcileStudent(c *gin.Context) {
	studentId, ok := intParam(c, "studentId")
	if !ok {
		return
	}
	report, err := h.fees.ReconcileFeeRecord(c.Request.Context(), studentId)
	if err != nil {
		if report != nil {
			// Drift was found and corrected; the inconsistency still
			// surfaces as a conflict, with the report as the body.
			c.JSON(statusFor(err), report)
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) reconcileBranch(c *gin.Context) {
	branchId, ok := intParam(c, "branchId")
	if !ok {
		return
	}
	reports, err := h.fees.ReconcileBranchFees(c.Request.Context(), branchId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"branch_id": branchId, "drift_count": len(reports), "reports": reports})
}

// ---- payroll ----

type computePayrollRequest struct {
	Month models.Month `json:"month" binding:"required"`
}

func (h *Handler) computePayroll(c *gin.Context) {
	branchId, ok := intParam(c, "branchId")
	if !ok {
		return
	}
	var req computePayrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	records, err := h.payroll.ComputeForMonth(c.Request.Context(), branchId, req.Month)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"branch_id": branchId, "month": req.Month, "records": records})
}

type processPayrollRequest struct {
	RecordIds []int `json:"record_ids" binding:"required"`
}

func (h *Handler) processPayroll(c *gin.Context) {
	var req processPayrollRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.RecordIds) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "record_ids are required"})
		return
	}
	actor, _ := utils.GetUserIdFromContext(c.Request.Context())
	paid, err := h.payroll.ProcessPayroll(c.Request.Context(), req.RecordIds, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requested": len(req.RecordIds), "paid": paid})
}

// ---- subscription billing ----

func (h *Handler) subscriptionOwed(c *gin.Context) {
	branchId, ok := intParam(c, "branchId")
	if !ok {
		return
	}
	asOf, ok := h.asOfQuery(c)
	if !ok {
		return
	}
	due, err := h.billing.ComputeOwed(c.Request.Context(), branchId, asOf)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, due)
}

func (h *Handler) subscriptionCurrent(c *gin.Context) {
	branchId, ok := intParam(c, "branchId")
	if !ok {
		return
	}
	asOf, ok := h.asOfQuery(c)
	if !ok {
		return
	}
	current, err := h.billing.IsCurrent(c.Request.Context(), branchId, asOf)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"branch_id": branchId, "current": current})
}

func (h *Handler) recordSubscriptionPayment(c *gin.Context) {
	var input models.NewSubscriptionPayment
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	p, err := h.billing.RecordPayment(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// ---- health scores ----

func (h *Handler) healthScore(c *gin.Context) {
	branchId, ok := intParam(c, "branchId")
	if !ok {
		return
	}
	score, err := h.scores.ComputeScore(c.Request.Context(), branchId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, score)
}

type rankTenantsRequest struct {
	BranchIds []int `json:"branch_ids" binding:"required"`
}

func (h *Handler) rankTenants(c *gin.Context) {
	var req rankTenantsRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.BranchIds) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "branch_ids are required"})
		return
	}
	ranked, err := h.scores.RankTenants(c.Request.Context(), req.BranchIds)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ranked)
}

// latestRanking serves the last snapshot published by a ranking sweep. It is
// a display convenience only; POST /rank is the computing endpoint.
func (h *Handler) latestRanking(c *gin.Context) {
	ranked, found, err := h.scores.LatestRanking()
	if err != nil {
		respondError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "no ranking snapshot"})
		return
	}
	c.JSON(http.StatusOK, ranked)
}
