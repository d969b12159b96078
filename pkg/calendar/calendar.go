// Package calendar 提供考勤用的日历工具：日期键归一化与半开区间构造。
//
// 所有区间均为 [start, end)，避免 23:59:59.999 一类的月末边界问题。
package calendar

import (
	"fmt"
	"time"

	"github.com/jinzhu/now"
)

// DayLayout 日期键的文本格式
const DayLayout = "2006-01-02"

func nowIn(t time.Time, loc *time.Location) *now.Now {
	cfg := &now.Config{WeekStartDay: time.Monday, TimeLocation: loc}
	return cfg.With(t.In(loc))
}

// StartOfDay 返回 t 在 loc 时区内当天 00:00:00.000（即日期键）
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	return nowIn(t, loc).BeginningOfDay()
}

// NextDay 返回 day 之后一天的零点
func NextDay(day time.Time) time.Time {
	return day.AddDate(0, 0, 1)
}

// MonthRange 返回 [当月 1 日零点, 次月 1 日零点)
func MonthRange(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	start := nowIn(time.Date(year, month, 1, 12, 0, 0, 0, loc), loc).BeginningOfMonth()
	return start, start.AddDate(0, 1, 0)
}

// CurrentMonth 返回 t 所在月份的半开区间
func CurrentMonth(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := nowIn(t, loc).BeginningOfMonth()
	return start, start.AddDate(0, 1, 0)
}

// DayRange 将闭区间日期 [from, to] 转为半开区间 [from 零点, to 次日零点)
func DayRange(from, to time.Time, loc *time.Location) (time.Time, time.Time) {
	return StartOfDay(from, loc), NextDay(StartOfDay(to, loc))
}

// LastNDays 返回截至 today（含）的最近 n 天日期键，按时间升序
func LastNDays(today time.Time, n int, loc *time.Location) []time.Time {
	if n <= 0 {
		return nil
	}
	end := StartOfDay(today, loc)
	days := make([]time.Time, n)
	for i := 0; i < n; i++ {
		days[i] = end.AddDate(0, 0, i-(n-1))
	}
	return days
}

// ParseDay 按 2006-01-02 解析 loc 时区内的日期
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DayLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("日期格式无效 %q: %w", s, err)
	}
	return t, nil
}

// Key 返回日期键文本
func Key(t time.Time) string {
	return t.Format(DayLayout)
}

// IsWeekend 判断是否为周六或周日
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
