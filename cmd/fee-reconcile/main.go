package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/listen443aditya/Verticx-Backend-sub003/config"
	"github.com/listen443aditya/Verticx-Backend-sub003/store"
	"github.com/listen443aditya/Verticx-Backend-sub003/utils"
	"github.com/listen443aditya/Verticx-Backend-sub003/workflow"
)

// Sweeps every fee record of a branch, re-deriving totals from the adjustment
// trail. Drifted records are corrected and reported; run it after any manual
// data surgery or on a schedule.
func main() {
	branchID := flag.Int("branch", 0, "Required: branch id")
	flag.Parse()

	if *branchID <= 0 {
		fmt.Fprintln(os.Stderr, "--branch is required")
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

	ledger := workflow.NewFeeLedger(
		store.NewGormStore(db),
		workflow.SystemClock{},
		workflow.NewEntityLocker(config.GetRedisLock()),
		logger,
	)

	ctx := utils.SetIsAdminInContext(context.Background(), true)
	ctx = utils.SetUserNameInContext(ctx, "fee-reconcile")

	reports, err := ledger.ReconcileBranchFees(ctx, *branchID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reconcile failed: %v\n", err)
		os.Exit(1)
	}
	for _, rep := range reports {
		fmt.Printf("student=%d stored=%d derived=%d delta=%d\n",
			rep.StudentId, rep.StoredTotal, rep.DerivedTotal, rep.Delta)
	}
	fmt.Printf("branch=%d drift=%d\n", *branchID, len(reports))
}
