// Package report holds the pure filtering, aggregation and pagination
// functions applied to expense lists after they are read from storage.
package report

import (
	"fmt"
	"strings"
	"time"

	"expensetracker/internal/core"
)

type Period string

const (
	PeriodWeek   Period = "week"
	PeriodMonth  Period = "month"
	PeriodCustom Period = "custom"
)

// DateRange bounds are inclusive. A nil bound is open.
type DateRange struct {
	From *core.Date `json:"from"`
	To   *core.Date `json:"to"`
}

func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodWeek, PeriodMonth, PeriodCustom:
		return p, nil
	case "":
		return PeriodMonth, nil
	default:
		return "", fmt.Errorf("unknown period %q", s)
	}
}

// IsOpen reports whether both bounds are unset.
func (r DateRange) IsOpen() bool {
	return r.From == nil && r.To == nil
}

// Contains reports whether d falls inside the range. The To bound covers its
// whole day.
func (r DateRange) Contains(d core.Date) bool {
	if r.IsOpen() {
		return true
	}
	if r.From != nil && d.Before(r.From.Time) {
		return false
	}
	if r.To != nil && d.After(r.To.EndOfDay()) {
		return false
	}
	return true
}

// RangeForPeriod derives the range of a period as of now, using now's
// calendar day. Weeks start on Monday. Custom ranges start empty.
func RangeForPeriod(p Period, now time.Time) DateRange {
	today := core.DateOf(now)
	switch p {
	case PeriodWeek:
		offset := (int(today.Weekday()) + 6) % 7
		from := core.DateOf(today.AddDate(0, 0, -offset))
		to := core.DateOf(from.AddDate(0, 0, 6))
		return DateRange{From: &from, To: &to}
	case PeriodMonth:
		from := core.NewDate(today.Year(), int(today.Month()), 1)
		to := core.DateOf(from.AddDate(0, 1, -1))
		return DateRange{From: &from, To: &to}
	default:
		return DateRange{}
	}
}

// PeriodLabel renders "March 2024" for a month and "Week 2, March" for a week.
func PeriodLabel(p Period, now time.Time) string {
	switch p {
	case PeriodMonth:
		return fmt.Sprintf("%s %d", now.Month(), now.Year())
	case PeriodWeek:
		week := (now.Day() + 6) / 7
		return fmt.Sprintf("Week %d, %s", week, now.Month())
	default:
		return ""
	}
}
