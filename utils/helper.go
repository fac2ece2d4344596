package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateOnly strips the time-of-day component. All calendar arithmetic in the
// settlement engine works on UTC midnights.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysInclusive counts calendar days between two date-only values, both ends
// included. Returns 0 when to is before from.
func DaysInclusive(from, to time.Time) int {
	from, to = DateOnly(from), DateOnly(to)
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours()/24) + 1
}

func MaxDate(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func MinDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// RoundToMinorUnit rounds a decimal amount half away from zero to whole minor
// currency units (paise).
func RoundToMinorUnit(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}

// MonthsElapsed counts the number of COMPLETED calendar months between start
// and asOf. A partially elapsed month does not count; asOf before start is 0.
func MonthsElapsed(start, asOf time.Time) int {
	start, asOf = DateOnly(start), DateOnly(asOf)
	if asOf.Before(start) {
		return 0
	}
	months := (asOf.Year()-start.Year())*12 + int(asOf.Month()) - int(start.Month())
	if asOf.Day() < start.Day() {
		months--
	}
	if months < 0 {
		months = 0
	}
	return months
}

func UniqueInts(in []int) []int {
	seen := make(map[int]struct{}, len(in))
	out := make([]int, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
