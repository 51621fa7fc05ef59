package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
)

func datePtr(y, m, d int) *core.Date {
	v := core.NewDate(y, m, d)
	return &v
}

func TestDateRangeContains(t *testing.T) {
	r := DateRange{From: datePtr(2024, 3, 1), To: datePtr(2024, 3, 31)}

	cases := []struct {
		date core.Date
		want bool
	}{
		{core.NewDate(2024, 2, 29), false},
		{core.NewDate(2024, 3, 1), true},
		{core.NewDate(2024, 3, 15), true},
		{core.NewDate(2024, 3, 31), true},
		{core.NewDate(2024, 4, 1), false},
	}
	for _, tc := range cases {
		if got := r.Contains(tc.date); got != tc.want {
			t.Fatalf("Contains(%s) = %v, want %v", tc.date, got, tc.want)
		}
	}

	require.True(t, DateRange{}.Contains(core.NewDate(1999, 1, 1)))
	require.True(t, DateRange{From: datePtr(2024, 3, 1)}.Contains(core.NewDate(2030, 1, 1)))
	require.False(t, DateRange{To: datePtr(2024, 3, 1)}.Contains(core.NewDate(2024, 3, 2)))
}

func TestRangeForPeriod(t *testing.T) {
	// Wednesday
	now := time.Date(2024, 3, 13, 15, 4, 5, 0, time.UTC)

	week := RangeForPeriod(PeriodWeek, now)
	require.Equal(t, "2024-03-11", week.From.String())
	require.Equal(t, "2024-03-17", week.To.String())

	month := RangeForPeriod(PeriodMonth, now)
	require.Equal(t, "2024-03-01", month.From.String())
	require.Equal(t, "2024-03-31", month.To.String())

	feb := RangeForPeriod(PeriodMonth, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC))
	require.Equal(t, "2024-02-29", feb.To.String())

	require.True(t, RangeForPeriod(PeriodCustom, now).IsOpen())
}

func TestRangeForPeriodSundayBelongsToPreviousWeek(t *testing.T) {
	sunday := time.Date(2024, 3, 17, 9, 0, 0, 0, time.UTC)
	week := RangeForPeriod(PeriodWeek, sunday)
	require.Equal(t, "2024-03-11", week.From.String())
	require.Equal(t, "2024-03-17", week.To.String())
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("Week")
	require.NoError(t, err)
	require.Equal(t, PeriodWeek, p)

	p, err = ParsePeriod("")
	require.NoError(t, err)
	require.Equal(t, PeriodMonth, p)

	_, err = ParsePeriod("year")
	require.Error(t, err)
}

func TestPeriodLabel(t *testing.T) {
	now := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)
	require.Equal(t, "March 2024", PeriodLabel(PeriodMonth, now))
	require.Equal(t, "Week 2, March", PeriodLabel(PeriodWeek, now))
	require.Equal(t, "", PeriodLabel(PeriodCustom, now))
}
