package models

// FeeAdjustmentType says which direction an adjustment moves the billed total.
// The stored Amount is always the signed delta: concession negative, charge positive.
type FeeAdjustmentType string

const (
	FeeAdjustmentTypeConcession FeeAdjustmentType = "concession"
	FeeAdjustmentTypeCharge     FeeAdjustmentType = "charge"
)

func (t FeeAdjustmentType) Valid() bool {
	switch t {
	case FeeAdjustmentTypeConcession, FeeAdjustmentTypeCharge:
		return true
	default:
		return false
	}
}

type PayrollStatus string

const (
	PayrollStatusSalaryNotSet PayrollStatus = "SalaryNotSet"
	PayrollStatusPending      PayrollStatus = "Pending"
	PayrollStatusPaid         PayrollStatus = "Paid"
)

func (s PayrollStatus) Valid() bool {
	switch s {
	case PayrollStatusSalaryNotSet, PayrollStatusPending, PayrollStatusPaid:
		return true
	default:
		return false
	}
}

type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "Pending"
	LeaveStatusApproved LeaveStatus = "Approved"
	LeaveStatusRejected LeaveStatus = "Rejected"
)

func (s LeaveStatus) Valid() bool {
	switch s {
	case LeaveStatusPending, LeaveStatusApproved, LeaveStatusRejected:
		return true
	default:
		return false
	}
}

type BillingCycle string

const (
	BillingCycleMonthly    BillingCycle = "monthly"
	BillingCycleQuarterly  BillingCycle = "quarterly"
	BillingCycleHalfYearly BillingCycle = "half_yearly"
	BillingCycleYearly     BillingCycle = "yearly"
)

func (c BillingCycle) Valid() bool {
	switch c {
	case BillingCycleMonthly, BillingCycleQuarterly, BillingCycleHalfYearly, BillingCycleYearly:
		return true
	default:
		return false
	}
}

// Months returns the length of one billing cycle in calendar months.
func (c BillingCycle) Months() int {
	switch c {
	case BillingCycleQuarterly:
		return 3
	case BillingCycleHalfYearly:
		return 6
	case BillingCycleYearly:
		return 12
	default:
		return 1
	}
}

type StaffRole string

const (
	StaffRolePrincipal    StaffRole = "Principal"
	StaffRoleTeacher      StaffRole = "Teacher"
	StaffRoleAccountant   StaffRole = "Accountant"
	StaffRoleLibrarian    StaffRole = "Librarian"
	StaffRoleSupportStaff StaffRole = "SupportStaff"
)

func (r StaffRole) Valid() bool {
	switch r {
	case StaffRolePrincipal, StaffRoleTeacher, StaffRoleAccountant, StaffRoleLibrarian, StaffRoleSupportStaff:
		return true
	default:
		return false
	}
}

type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "Present"
	AttendanceStatusAbsent  AttendanceStatus = "Absent"
	AttendanceStatusLeave   AttendanceStatus = "Leave"
	AttendanceStatusHalfDay AttendanceStatus = "HalfDay"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLeave, AttendanceStatusHalfDay:
		return true
	default:
		return false
	}
}
