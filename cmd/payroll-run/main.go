package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/listen443aditya/Verticx-Backend-sub003/config"
	"github.com/listen443aditya/Verticx-Backend-sub003/models"
	"github.com/listen443aditya/Verticx-Backend-sub003/store"
	"github.com/listen443aditya/Verticx-Backend-sub003/utils"
	"github.com/listen443aditya/Verticx-Backend-sub003/workflow"
)

func main() {
	branchID := flag.Int("branch", 0, "Required: branch id")
	monthStr := flag.String("month", "", "Required: payroll month (YYYY-MM)")
	process := flag.Bool("process", false, "Mark the computed Pending records as Paid")
	processedBy := flag.Int("processed-by", 0, "User id recorded on paid records (required with -process)")
	flag.Parse()

	if *branchID <= 0 {
		fmt.Fprintln(os.Stderr, "--branch is required")
		os.Exit(1)
	}
	month, err := models.ParseMonth(strings.TrimSpace(*monthStr))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid month: %v\n", err)
		os.Exit(1)
	}
	if *process && *processedBy <= 0 {
		fmt.Fprintln(os.Stderr, "--processed-by is required with --process")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}
	config.ConnectRedisWithRetry()
	logger := config.GetLogger()

	calc := workflow.NewPayrollCalculator(
		store.NewGormStore(db),
		workflow.SystemClock{},
		workflow.NewEntityLocker(config.GetRedisLock()),
		logger,
	)

	ctx := utils.SetIsAdminInContext(context.Background(), true)
	ctx = utils.SetUserNameInContext(ctx, "payroll-run")

	records, err := calc.ComputeForMonth(ctx, *branchID, month)
	if err != nil {
		fmt.Fprintf(os.Stderr, "compute failed: %v\n", err)
		os.Exit(1)
	}

	var pendingIds []int
	for _, rec := range records {
		switch rec.Status {
		case models.PayrollStatusPending:
			pendingIds = append(pendingIds, rec.ID)
			fmt.Printf("staff=%d base=%d leaveDays=%s deduction=%d manual=%d net=%d status=%s\n",
				rec.StaffId, *rec.BaseSalary, rec.UnpaidLeaveDays, *rec.LeaveDeductions,
				*rec.ManualAdjustmentsTotal, *rec.NetPayable, rec.Status)
		case models.PayrollStatusPaid:
			fmt.Printf("staff=%d net=%d status=%s (frozen)\n", rec.StaffId, *rec.NetPayable, rec.Status)
		default:
			fmt.Printf("staff=%d status=%s\n", rec.StaffId, rec.Status)
		}
	}
	fmt.Printf("branch=%d month=%s records=%d pending=%d\n", *branchID, month, len(records), len(pendingIds))

	if *process && len(pendingIds) > 0 {
		paid, err := calc.ProcessPayroll(ctx, pendingIds, *processedBy)
		if err != nil {
			fmt.Fprintf(os.Stderr, "process failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("paid=%d\n", paid)
	}
}
