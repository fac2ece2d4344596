package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/listen443aditya/Verticx-Backend-sub003/config"
	"github.com/listen443aditya/Verticx-Backend-sub003/models"
	"github.com/listen443aditya/Verticx-Backend-sub003/store"
	"github.com/listen443aditya/Verticx-Backend-sub003/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var oneHundred = decimal.NewFromInt(100)

// SubscriptionBilling computes what a tenant owes under its recurring
// contract and advances the due date on payment.
type SubscriptionBilling struct {
	store  store.BillingStore
	clock  Clock
	locks  *EntityLocker
	logger *logrus.Logger
}

func NewSubscriptionBilling(st store.BillingStore, clock Clock, locks *EntityLocker, logger *logrus.Logger) *SubscriptionBilling {
	return &SubscriptionBilling{store: st, clock: clock, locks: locks, logger: logger}
}

// ComputeOwed bills at month granularity: only COMPLETED calendar months
// since the session start count; partial months are not billed. The pending
// amount is floored at zero. Surplus subscription payment is not reported
// as negative pending (the per-student fee ledger intentionally differs).
func (w *SubscriptionBilling) ComputeOwed(ctx context.Context, branchId int, asOf time.Time) (*models.SubscriptionDue, error) {
	c, err := w.store.ContractByBranch(ctx, branchId)
	if err != nil {
		return nil, fmt.Errorf("%w: no billing contract for branch %d", utils.ErrorRecordNotFound, branchId)
	}
	units, err := w.store.ActiveStudentCount(ctx, branchId)
	if err != nil {
		config.LogError(w.logger, "subscriptionBillingWorkflow.go", "ComputeOwed", "ActiveStudentCount", branchId, err)
		return nil, err
	}

	months := utils.MonthsElapsed(c.SessionStartDate, asOf)
	gross := decimal.NewFromInt(int64(months)).
		Mul(decimal.NewFromInt(units)).
		Mul(decimal.NewFromInt(c.PricePerActiveUnit))
	factor := decimal.NewFromInt(1).Sub(c.ConcessionPercent.Div(oneHundred))
	billed := utils.RoundToMinorUnit(gross.Mul(factor))

	paid, err := w.store.SubscriptionPaymentsTotal(ctx, branchId)
	if err != nil {
		config.LogError(w.logger, "subscriptionBillingWorkflow.go", "ComputeOwed", "SubscriptionPaymentsTotal", branchId, err)
		return nil, err
	}

	pending := billed - paid
	if pending < 0 {
		pending = 0
	}
	return &models.SubscriptionDue{
		BranchId:      branchId,
		TotalBilled:   billed,
		TotalPaid:     paid,
		PendingAmount: pending,
	}, nil
}

// RecordPayment appends a subscription payment and advances NextDueDate by
// exactly one billing cycle from its current stored value, not from the
// payment date, so on-time payments keep the due calendar anchored instead
// of drifting with payment timing. A retry with an already-recorded
// transaction ref returns the stored payment unchanged.
func (w *SubscriptionBilling) RecordPayment(ctx context.Context, input models.NewSubscriptionPayment) (*models.SubscriptionPayment, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if input.Amount <= 0 {
		return nil, fmt.Errorf("%w: payment amount must be positive, got %d", utils.ErrorInvalidAmount, input.Amount)
	}

	release, err := w.locks.Lock(ctx, billingLockKey(input.BranchId))
	if err != nil {
		return nil, err
	}
	defer release()

	if existing, err := w.store.SubscriptionPaymentByRef(ctx, input.TransactionRef); err == nil {
		return existing, nil
	}

	c, err := w.store.ContractByBranch(ctx, input.BranchId)
	if err != nil {
		return nil, fmt.Errorf("%w: no billing contract for branch %d", utils.ErrorRecordNotFound, input.BranchId)
	}

	p := &models.SubscriptionPayment{
		BranchId:       input.BranchId,
		Amount:         input.Amount,
		PaymentDate:    utils.DateOnly(input.PaymentDate),
		TransactionRef: input.TransactionRef,
	}
	newDue := addBillingCycle(utils.DateOnly(c.NextDueDate), c.BillingCycle)
	if err := w.store.AppendSubscriptionPayment(ctx, p, newDue); err != nil {
		if errors.Is(err, utils.ErrorInvalidState) {
			// Lost a duplicate-ref race; the stored row is authoritative.
			return w.store.SubscriptionPaymentByRef(ctx, input.TransactionRef)
		}
		config.LogError(w.logger, "subscriptionBillingWorkflow.go", "RecordPayment", "AppendSubscriptionPayment", input, err)
		return nil, err
	}
	return p, nil
}

// IsCurrent reports whether the tenant's subscription is paid up as of the
// given date. This engine only computes the boolean; enforcement is the
// authorization layer's concern.
func (w *SubscriptionBilling) IsCurrent(ctx context.Context, branchId int, asOf time.Time) (bool, error) {
	c, err := w.store.ContractByBranch(ctx, branchId)
	if err != nil {
		return false, fmt.Errorf("%w: no billing contract for branch %d", utils.ErrorRecordNotFound, branchId)
	}
	return !utils.DateOnly(asOf).After(utils.DateOnly(c.NextDueDate)), nil
}

// addBillingCycle advances a date by one cycle, clamping the day to the
// target month's length so a day-31 anchor does not spill into the next
// month the way naive AddDate arithmetic would.
func addBillingCycle(t time.Time, cycle models.BillingCycle) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(cycle.Months()), 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, time.UTC)
}
