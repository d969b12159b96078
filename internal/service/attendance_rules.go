package service

import (
	"fmt"
	"math"
	"time"

	"attendance-tracker/backend/config"
	"attendance-tracker/backend/internal/model"
)

// Rules 考勤判定规则：迟到分界、半天阈值与业务时区
type Rules struct {
	Location     *time.Location
	LateHour     int
	LateMinute   int
	HalfDayHours float64
}

// DefaultRules 默认规则：09:30 之后签到为迟到，工时不足 4 小时为半天
func DefaultRules(loc *time.Location) Rules {
	return Rules{Location: loc, LateHour: 9, LateMinute: 30, HalfDayHours: 4}
}

// NewRules 从配置构造规则
func NewRules(cfg *config.AttendanceConfig) (Rules, error) {
	loc, err := cfg.Location()
	if err != nil {
		return Rules{}, fmt.Errorf("解析业务时区失败: %w", err)
	}
	hour, minute, err := cfg.LateCutoff()
	if err != nil {
		return Rules{}, fmt.Errorf("解析迟到分界失败: %w", err)
	}
	return Rules{Location: loc, LateHour: hour, LateMinute: minute, HalfDayHours: cfg.HalfDayHours}, nil
}

// Classify 根据签到时刻判定状态，只比较时和分，秒数忽略
func (r Rules) Classify(checkIn time.Time) string {
	local := checkIn.In(r.Location)
	h, m := local.Hour(), local.Minute()
	if h > r.LateHour || (h == r.LateHour && m > r.LateMinute) {
		return model.StatusLate
	}
	return model.StatusPresent
}

// ApplyCheckOut 写入签退时间并重算工时；工时低于半天阈值时状态改为 half-day
func (r Rules) ApplyCheckOut(rec *model.Attendance, checkOut time.Time) {
	rec.CheckOutTime = &checkOut
	rec.TotalHours = RoundHours(checkOut.Sub(*rec.CheckInTime))
	if rec.TotalHours < r.HalfDayHours {
		rec.Status = model.StatusHalfDay
	}
}

// RoundHours 毫秒换算为小时并四舍五入到两位小数，负值按 0 计
func RoundHours(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return round2(float64(d.Milliseconds()) / float64(time.Hour/time.Millisecond))
}

func round2(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}
