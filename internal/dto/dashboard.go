package dto

// ── 仪表盘 ──

// TodayFlags 员工今日签到状态
type TodayFlags struct {
	CheckedIn  bool                `json:"checked_in"`
	CheckedOut bool                `json:"checked_out"`
	Status     string              `json:"status,omitempty"`
	Record     *AttendanceResponse `json:"record,omitempty"`
}

// EmployeeDashboardResponse 员工仪表盘
type EmployeeDashboardResponse struct {
	Today        TodayFlags           `json:"today"`
	MonthSummary SummaryResponse      `json:"month_summary"`
	Recent       []AttendanceResponse `json:"recent"`
}

// TodayStats 今日统计
type TodayStats struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
}

// TrendPoint 周趋势中的一天
type TrendPoint struct {
	Date    string `json:"date"`
	Present int    `json:"present"`
	Absent  int    `json:"absent"`
}

// DepartmentStat 部门月度统计
type DepartmentStat struct {
	Department string `json:"department"`
	StatusCounts
	Total int `json:"total"`
}

// LateEmployee 今日迟到员工
type LateEmployee struct {
	EmployeeBrief
	CheckInTime string `json:"check_in_time"`
}

// ManagerDashboardResponse 管理员仪表盘
type ManagerDashboardResponse struct {
	TotalEmployees    int              `json:"total_employees"`
	Today             TodayStats       `json:"today"`
	LateEmployees     []LateEmployee   `json:"late_employees"`
	AbsentEmployees   []EmployeeBrief  `json:"absent_employees"`
	WeeklyTrend       []TrendPoint     `json:"weekly_trend"`
	DepartmentSummary []DepartmentStat `json:"department_summary"`
}
