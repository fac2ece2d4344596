package models

import (
	"fmt"
	"time"
)

// Month is a calendar month key in YYYY-MM form. Payroll records and manual
// salary adjustments are keyed by it.
type Month string

func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return "", fmt.Errorf("invalid month %q, want YYYY-MM", s)
	}
	return Month(t.Format("2006-01")), nil
}

func MonthOf(t time.Time) Month {
	return Month(t.Format("2006-01"))
}

func (m Month) String() string { return string(m) }

// Start returns the first day of the month at UTC midnight.
func (m Month) Start() time.Time {
	t, err := time.Parse("2006-01", string(m))
	if err != nil {
		return time.Time{}
	}
	return t
}

// End returns the last day of the month at UTC midnight.
func (m Month) End() time.Time {
	return m.Start().AddDate(0, 1, -1)
}

func (m Month) Valid() bool {
	_, err := time.Parse("2006-01", string(m))
	return err == nil
}
