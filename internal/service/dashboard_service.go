package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"attendance-tracker/backend/internal/dto"
	"attendance-tracker/backend/internal/model"
	"attendance-tracker/backend/internal/repository"
	"attendance-tracker/backend/pkg/calendar"
)

// trendDays 周趋势天数（含今天）
const trendDays = 7

// DashboardService 仪表盘业务接口
type DashboardService interface {
	Employee(ctx context.Context, userID string) (*dto.EmployeeDashboardResponse, error)
	Manager(ctx context.Context) (*dto.ManagerDashboardResponse, error)
}

type dashboardService struct {
	att *attendanceService
}

// NewDashboardService 创建 DashboardService 实例
func NewDashboardService(
	repo *repository.Repository,
	rules Rules,
	logger *zap.Logger,
) DashboardService {
	return &dashboardService{att: newAttendanceService(repo, rules, nil, time.Now, logger)}
}

// ────────────────────── 员工仪表盘 ──────────────────────

func (s *dashboardService) Employee(ctx context.Context, userID string) (*dto.EmployeeDashboardResponse, error) {
	a := s.att
	loc := a.rules.Location
	today := calendar.StartOfDay(a.now(), loc)

	out := &dto.EmployeeDashboardResponse{}

	todayRec, err := a.Today(ctx, userID)
	if err != nil {
		return nil, err
	}
	if todayRec != nil {
		out.Today = dto.TodayFlags{
			CheckedIn:  todayRec.CheckInTime != nil,
			CheckedOut: todayRec.CheckOutTime != nil,
			Status:     todayRec.Status,
			Record:     todayRec,
		}
	}

	summary, err := a.MySummary(ctx, userID, nil)
	if err != nil {
		return nil, err
	}
	out.MonthSummary = *summary

	days := calendar.LastNDays(today, trendDays, loc)
	recent, err := a.repo.Attendance.ListByUser(ctx, userID, days[0], calendar.NextDay(today))
	if err != nil {
		return nil, a.storeErr("查询近期考勤失败", err)
	}
	out.Recent = toAttendanceResponses(recent, loc)

	return out, nil
}

// ────────────────────── 管理员仪表盘 ──────────────────────

func (s *dashboardService) Manager(ctx context.Context) (*dto.ManagerDashboardResponse, error) {
	a := s.att
	loc := a.rules.Location
	now := a.now()
	today := calendar.StartOfDay(now, loc)

	snap, err := a.todaySnapshot(ctx, today)
	if err != nil {
		return nil, err
	}

	out := &dto.ManagerDashboardResponse{
		TotalEmployees:  len(snap.employees),
		LateEmployees:   make([]dto.LateEmployee, 0),
		AbsentEmployees: make([]dto.EmployeeBrief, 0),
	}

	for i := range snap.records {
		rec := &snap.records[i]
		if isPresentLike(rec.Status) {
			out.Today.Present++
		}
		if rec.Status == model.StatusLate {
			out.Today.Late++
			late := dto.LateEmployee{EmployeeBrief: recordEmployee(rec)}
			if ts := formatTimestamp(rec.CheckInTime, loc); ts != nil {
				late.CheckInTime = *ts
			}
			out.LateEmployees = append(out.LateEmployees, late)
		}
	}
	out.Today.Absent = out.TotalEmployees - out.Today.Present
	if out.Today.Absent < 0 {
		out.Today.Absent = 0
	}
	for i := range snap.absent {
		out.AbsentEmployees = append(out.AbsentEmployees, toEmployeeBrief(&snap.absent[i]))
	}

	trend, err := s.weeklyTrend(ctx, today)
	if err != nil {
		return nil, err
	}
	out.WeeklyTrend = trend

	depts, err := s.departmentSummary(ctx, now)
	if err != nil {
		return nil, err
	}
	out.DepartmentSummary = depts

	return out, nil
}

// weeklyTrend 最近 7 天（含今天）每日出勤，无记录的日期补零，按日期升序
func (s *dashboardService) weeklyTrend(ctx context.Context, today time.Time) ([]dto.TrendPoint, error) {
	a := s.att
	days := calendar.LastNDays(today, trendDays, a.rules.Location)
	from, to := days[0], calendar.NextDay(today)

	recs, err := a.repo.Attendance.ListAll(ctx, repository.AttendanceFilter{From: &from, To: &to})
	if err != nil {
		return nil, a.storeErr("查询周趋势失败", err)
	}

	points := make([]dto.TrendPoint, len(days))
	index := make(map[string]int, len(days))
	for i, d := range days {
		points[i] = dto.TrendPoint{Date: calendar.Key(d)}
		index[points[i].Date] = i
	}

	for i := range recs {
		idx, ok := index[recs[i].DayKey()]
		if !ok {
			continue
		}
		switch {
		case isPresentLike(recs[i].Status):
			points[idx].Present++
		case recs[i].Status == model.StatusAbsent:
			points[idx].Absent++
		}
	}
	return points, nil
}

// departmentSummary 当月各部门考勤统计，按部门名排序
func (s *dashboardService) departmentSummary(ctx context.Context, now time.Time) ([]dto.DepartmentStat, error) {
	a := s.att
	from, to := calendar.CurrentMonth(now, a.rules.Location)

	rows, err := a.repo.Attendance.DepartmentCounts(ctx, from, to)
	if err != nil {
		return nil, a.storeErr("查询部门统计失败", err)
	}

	byDept := make(map[string]*dto.DepartmentStat)
	for _, row := range rows {
		stat, ok := byDept[row.Department]
		if !ok {
			stat = &dto.DepartmentStat{Department: row.Department}
			byDept[row.Department] = stat
		}
		addStatus(&stat.StatusCounts, row.Status, int(row.Count))
		stat.Total += int(row.Count)
	}

	out := make([]dto.DepartmentStat, 0, len(byDept))
	for _, stat := range byDept {
		out = append(out, *stat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Department < out[j].Department })
	return out, nil
}

func isPresentLike(status string) bool {
	return status == model.StatusPresent || status == model.StatusLate || status == model.StatusHalfDay
}
