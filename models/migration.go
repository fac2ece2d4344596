package models

import "github.com/listen443aditya/Verticx-Backend-sub003/config"

// MigrateTable auto-migrates every table the settlement engine reads or owns.
func MigrateTable() {
	db := config.GetDB()
	err := db.AutoMigrate(
		&Branch{},
		&Student{},
		&StaffProfile{},
		&LeaveApplication{},
		&FeeRecord{},
		&FeeAdjustment{},
		&FeePayment{},
		&PayrollRecord{},
		&ManualSalaryAdjustment{},
		&TenantBillingContract{},
		&SubscriptionPayment{},
		&AttendanceRecord{},
		&ExamResult{},
		&ReconciliationReport{},
	)
	if err != nil {
		config.LogError(config.GetLogger(), "migration.go", "MigrateTable", "AutoMigrate", nil, err)
	}
}
