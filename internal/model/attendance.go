package model

import (
	"time"

	"gorm.io/datatypes"
)

// 考勤状态
const (
	StatusPresent = "present"
	StatusLate    = "late"
	StatusHalfDay = "half-day"
	StatusAbsent  = "absent"
)

// Statuses 全部合法状态
var Statuses = []string{StatusPresent, StatusLate, StatusHalfDay, StatusAbsent}

// Attendance 考勤记录表 对应 attendances
// (user_id, date) 唯一：每名员工每天至多一条
type Attendance struct {
	AttendanceID string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"attendance_id"`
	UserID       string         `gorm:"type:uuid;not null;uniqueIndex:uk_attendances_user_date,priority:1" json:"user_id"`
	Date         datatypes.Date `gorm:"type:date;not null;uniqueIndex:uk_attendances_user_date,priority:2"  json:"date"` // 业务时区零点
	CheckInTime  *time.Time     `json:"check_in_time,omitempty"`
	CheckOutTime *time.Time     `json:"check_out_time,omitempty"`
	Status       string         `gorm:"type:varchar(20);not null;default:'present'" json:"status"`
	TotalHours   float64        `gorm:"type:numeric(5,2);not null;default:0"       json:"total_hours"`
	BaseModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Attendance) TableName() string { return "attendances" }

// Day 返回日期键对应的 time.Time
func (a *Attendance) Day() time.Time {
	return time.Time(a.Date)
}

// DayKey 返回 2006-01-02 格式的日期
func (a *Attendance) DayKey() string {
	return time.Time(a.Date).Format("2006-01-02")
}

// CheckedIn 是否已签到
func (a *Attendance) CheckedIn() bool { return a.CheckInTime != nil }

// CheckedOut 是否已签退
func (a *Attendance) CheckedOut() bool { return a.CheckOutTime != nil }
