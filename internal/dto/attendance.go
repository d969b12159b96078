package dto

// ── 考勤查询参数 ──

// MonthQuery 月份筛选；汇总缺省为当月
// 历史查询仅在 month 与 year 同时给出时按月过滤
type MonthQuery struct {
	Month int `form:"month" binding:"omitempty,min=1,max=12"`
	Year  int `form:"year"  binding:"omitempty,min=2000,max=2100"`
}

// RecordFilter 管理员查询全部考勤记录
type RecordFilter struct {
	PaginationRequest
	StartDate  string `form:"start_date"  binding:"omitempty,datetime=2006-01-02"`
	EndDate    string `form:"end_date"    binding:"omitempty,datetime=2006-01-02"`
	EmployeeID string `form:"employee_id" binding:"omitempty,max=20"`
	Status     string `form:"status"      binding:"omitempty,attstatus"`
}

// ExportQuery 导出参数
type ExportQuery struct {
	StartDate  string `form:"start_date"  binding:"omitempty,datetime=2006-01-02"`
	EndDate    string `form:"end_date"    binding:"omitempty,datetime=2006-01-02"`
	EmployeeID string `form:"employee_id" binding:"omitempty,max=20"`
	Format     string `form:"format"      binding:"omitempty,oneof=csv xlsx"`
}

// CalendarQuery ICS 日历导出参数；employee_id 仅管理员可用
type CalendarQuery struct {
	MonthQuery
	EmployeeID string `form:"employee_id" binding:"omitempty,max=20"`
}

// ── 考勤响应 ──

// AttendanceResponse 单条考勤记录
type AttendanceResponse struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Date         string         `json:"date"`
	CheckInTime  *string        `json:"check_in_time"`
	CheckOutTime *string        `json:"check_out_time"`
	Status       string         `json:"status"`
	TotalHours   float64        `json:"total_hours"`
	Employee     *EmployeeBrief `json:"employee,omitempty"`
}

// StatusCounts 各状态计数
type StatusCounts struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
	HalfDay int `json:"half_day"`
}

// SummaryResponse 个人月度汇总
type SummaryResponse struct {
	StatusCounts
	TotalHours float64 `json:"total_hours"`
	Month      int     `json:"month"`
	Year       int     `json:"year"`
}

// TeamSummaryResponse 团队月度汇总
type TeamSummaryResponse struct {
	Month          int                     `json:"month"`
	Year           int                     `json:"year"`
	Total          StatusCounts            `json:"total"`
	DepartmentWise map[string]StatusCounts `json:"department_wise"`
}

// EmployeeRecordsResponse 单个员工的考勤记录
type EmployeeRecordsResponse struct {
	Employee EmployeeBrief        `json:"employee"`
	Records  []AttendanceResponse `json:"records"`
}

// TodayStatusResponse 今日出勤状态
type TodayStatusResponse struct {
	Date           string          `json:"date"`
	TotalEmployees int             `json:"total_employees"`
	PresentCount   int             `json:"present_count"`
	LateCount      int             `json:"late_count"`
	AbsentCount    int             `json:"absent_count"`
	Present        []EmployeeBrief `json:"present"`
	Late           []EmployeeBrief `json:"late"`
	Absent         []EmployeeBrief `json:"absent"`
}
