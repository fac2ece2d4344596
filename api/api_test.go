package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/listen443aditya/Verticx-Backend-sub003/models"
	"github.com/listen443aditya/Verticx-Backend-sub003/store"
	"github.com/listen443aditya/Verticx-Backend-sub003/utils"
	"github.com/listen443aditya/Verticx-Backend-sub003/workflow"
	"github.com/sirupsen/logrus"
)

func newTestRouter(mem *store.MemStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	clock := workflow.FixedClock{T: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)}
	locks := workflow.NewEntityLocker(nil)
	h := NewHandler(
		workflow.NewFeeLedger(mem, clock, locks, logger),
		workflow.NewPayrollCalculator(mem, clock, locks, logger),
		workflow.NewSubscriptionBilling(mem, clock, locks, logger),
		workflow.NewHealthScoreAggregator(mem, logger),
		clock,
		logger,
	)
	r := gin.New()
	h.Register(r)
	return r
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: student 1", utils.ErrorRecordNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: already reversed", utils.ErrorInvalidState), http.StatusConflict},
		{fmt.Errorf("%w: drift", utils.ErrorInconsistentLedger), http.StatusConflict},
		{fmt.Errorf("%w: amount must be positive", utils.ErrorInvalidAmount), http.StatusBadRequest},
		// Raw infrastructure errors are server faults, not client mistakes.
		{errors.New("driver: bad connection"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusFor(tc.err); got != tc.want {
			t.Fatalf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestReconcileStudent_DriftIsConflictWithReport(t *testing.T) {
	mem := store.NewMemStore()
	mem.PutFeeRecord(models.FeeRecord{
		BranchId: 1, StudentId: 5, TemplateAmount: 1000, TotalAmount: 1200,
	})
	r := newTestRouter(mem)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/fees/students/5/reconcile", nil))

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"resolved":true`) || !strings.Contains(body, `"delta":200`) {
		t.Fatalf("body missing corrected report: %s", body)
	}

	// The sweep corrected the record, so a second pass is clean and a 200.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/fees/students/5/reconcile", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status after correction = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"delta":0`) {
		t.Fatalf("second report not clean: %s", w.Body.String())
	}
}

func TestLatestRanking_NoSnapshot(t *testing.T) {
	r := newTestRouter(store.NewMemStore())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/health-scores/rank/latest", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 when no snapshot was published", w.Code)
	}
}
