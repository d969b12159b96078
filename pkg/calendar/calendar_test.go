package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestStartOfDay(t *testing.T) {
	loc := mustLoc(t, "Asia/Kolkata")

	// 03:00 UTC = 08:30 IST，同一天
	in := time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC)
	got := StartOfDay(in, loc)

	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, loc), got)
	assert.Equal(t, 0, got.Nanosecond())

	// 20:00 UTC = 次日 01:30 IST
	late := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, loc), StartOfDay(late, loc))
}

func TestMonthRange(t *testing.T) {
	loc := time.UTC

	tests := []struct {
		name      string
		year      int
		month     time.Month
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"普通月份", 2026, time.April, time.Date(2026, 4, 1, 0, 0, 0, 0, loc), time.Date(2026, 5, 1, 0, 0, 0, 0, loc)},
		{"闰年二月", 2024, time.February, time.Date(2024, 2, 1, 0, 0, 0, 0, loc), time.Date(2024, 3, 1, 0, 0, 0, 0, loc)},
		{"十二月跨年", 2025, time.December, time.Date(2025, 12, 1, 0, 0, 0, 0, loc), time.Date(2026, 1, 1, 0, 0, 0, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := MonthRange(tt.year, tt.month, loc)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestMonthRange_LastInstantIncluded(t *testing.T) {
	loc := time.UTC
	start, end := MonthRange(2026, time.January, loc)

	lastMoment := time.Date(2026, 1, 31, 23, 59, 59, 999_999_999, loc)
	assert.False(t, lastMoment.Before(start))
	assert.True(t, lastMoment.Before(end))
	assert.False(t, end.Before(end), "end 为开区间")
}

func TestDayRange(t *testing.T) {
	loc := time.UTC
	from := time.Date(2026, 5, 1, 15, 0, 0, 0, loc)
	to := time.Date(2026, 5, 3, 8, 0, 0, 0, loc)

	start, end := DayRange(from, to, loc)
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2026, 5, 4, 0, 0, 0, 0, loc), end)
}

func TestLastNDays(t *testing.T) {
	loc := time.UTC
	today := time.Date(2026, 3, 2, 14, 0, 0, 0, loc)

	days := LastNDays(today, 7, loc)
	require.Len(t, days, 7)
	assert.Equal(t, "2026-02-24", Key(days[0]))
	assert.Equal(t, "2026-03-02", Key(days[6]))
	for i := 1; i < len(days); i++ {
		assert.True(t, days[i-1].Before(days[i]), "应按升序排列")
	}

	assert.Nil(t, LastNDays(today, 0, loc))
}

func TestParseDay(t *testing.T) {
	loc := mustLoc(t, "Asia/Kolkata")

	got, err := ParseDay("2026-07-15", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 7, 15, 0, 0, 0, 0, loc), got)

	_, err = ParseDay("15/07/2026", loc)
	assert.Error(t, err)
}

func TestIsWeekend(t *testing.T) {
	assert.True(t, IsWeekend(time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)))  // 周六
	assert.True(t, IsWeekend(time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)))  // 周日
	assert.False(t, IsWeekend(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC))) // 周一
}
