package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"attendance-tracker/backend/internal/dto"
	"attendance-tracker/backend/internal/model"
	"attendance-tracker/backend/internal/repository"
	"attendance-tracker/backend/pkg/calendar"
	pkgerrors "attendance-tracker/backend/pkg/errors"
	"attendance-tracker/backend/pkg/notify"
)

// ── 考勤模块业务错误 ──

var (
	ErrAlreadyCheckedIn  = errors.New("今日已签到")
	ErrNotCheckedIn      = errors.New("今日尚未签到")
	ErrAlreadyCheckedOut = errors.New("今日已签退")
	ErrEmployeeNotFound  = errors.New("员工不存在")
	ErrStoreUnavailable  = errors.New("数据存储不可用")
	ErrInvalidDateRange  = errors.New("日期范围无效")
)

// AttendanceService 考勤业务接口
type AttendanceService interface {
	CheckIn(ctx context.Context, userID string) (*dto.AttendanceResponse, error)
	CheckOut(ctx context.Context, userID string) (*dto.AttendanceResponse, error)
	Today(ctx context.Context, userID string) (*dto.AttendanceResponse, error)
	MyHistory(ctx context.Context, userID string, q *dto.MonthQuery) ([]dto.AttendanceResponse, error)
	MySummary(ctx context.Context, userID string, q *dto.MonthQuery) (*dto.SummaryResponse, error)
	ListAll(ctx context.Context, req *dto.RecordFilter) ([]dto.AttendanceResponse, int64, error)
	EmployeeRecords(ctx context.Context, employeeID string, q *dto.MonthQuery) (*dto.EmployeeRecordsResponse, error)
	TeamSummary(ctx context.Context, q *dto.MonthQuery) (*dto.TeamSummaryResponse, error)
	TodayStatus(ctx context.Context) (*dto.TodayStatusResponse, error)
}

type attendanceService struct {
	repo     *repository.Repository
	rules    Rules
	notifier notify.Notifier
	now      func() time.Time
	logger   *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(
	repo *repository.Repository,
	rules Rules,
	notifier notify.Notifier,
	logger *zap.Logger,
) AttendanceService {
	return newAttendanceService(repo, rules, notifier, time.Now, logger)
}

func newAttendanceService(
	repo *repository.Repository,
	rules Rules,
	notifier notify.Notifier,
	now func() time.Time,
	logger *zap.Logger,
) *attendanceService {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &attendanceService{repo: repo, rules: rules, notifier: notifier, now: now, logger: logger}
}

// ────────────────────── CheckIn ──────────────────────

func (s *attendanceService) CheckIn(ctx context.Context, userID string) (*dto.AttendanceResponse, error) {
	now := s.now()
	day := calendar.StartOfDay(now, s.rules.Location)

	existing, err := s.repo.Attendance.GetByUserAndDate(ctx, userID, day)
	switch {
	case err == nil && existing.CheckedIn():
		return nil, ErrAlreadyCheckedIn
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, s.storeErr("查询今日考勤失败", err)
	}

	rec := &model.Attendance{
		UserID:      userID,
		Date:        datatypes.Date(day),
		CheckInTime: &now,
		Status:      s.rules.Classify(now),
	}
	if err := s.repo.Attendance.UpsertCheckIn(ctx, rec); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateRecord) {
			return nil, ErrAlreadyCheckedIn
		}
		return nil, s.storeErr("写入签到记录失败", err)
	}

	s.logger.Info("员工签到",
		zap.String("user_id", userID),
		zap.String("date", calendar.Key(day)),
		zap.String("status", rec.Status),
	)

	if rec.Status == model.StatusLate {
		s.notifyLate(userID, now)
	}

	return toAttendanceResponse(rec, s.rules.Location), nil
}

// notifyLate 异步发送迟到提醒，失败只记录日志
func (s *attendanceService) notifyLate(userID string, checkIn time.Time) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		user, err := s.repo.User.GetByID(ctx, userID)
		if err != nil {
			s.logger.Warn("迟到提醒：查询员工失败", zap.String("user_id", userID), zap.Error(err))
			return
		}
		ev := notify.LateArrival{
			Name:        user.Name,
			EmployeeID:  user.EmployeeID,
			Department:  user.DepartmentName(),
			CheckInTime: checkIn,
		}
		if err := s.notifier.NotifyLate(ctx, ev); err != nil {
			s.logger.Warn("发送迟到提醒失败", zap.String("user_id", userID), zap.Error(err))
		}
	}()
}

// ────────────────────── CheckOut ──────────────────────

func (s *attendanceService) CheckOut(ctx context.Context, userID string) (*dto.AttendanceResponse, error) {
	now := s.now()
	day := calendar.StartOfDay(now, s.rules.Location)

	rec, err := s.repo.Attendance.GetByUserAndDate(ctx, userID, day)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotCheckedIn
		}
		return nil, s.storeErr("查询今日考勤失败", err)
	}
	if !rec.CheckedIn() {
		return nil, ErrNotCheckedIn
	}
	if rec.CheckedOut() {
		return nil, ErrAlreadyCheckedOut
	}

	s.rules.ApplyCheckOut(rec, now)

	if err := s.repo.Attendance.UpdateCheckOut(ctx, rec); err != nil {
		if errors.Is(err, pkgerrors.ErrStaleRecord) {
			return nil, ErrAlreadyCheckedOut
		}
		return nil, s.storeErr("写入签退记录失败", err)
	}

	s.logger.Info("员工签退",
		zap.String("user_id", userID),
		zap.String("date", calendar.Key(day)),
		zap.Float64("total_hours", rec.TotalHours),
		zap.String("status", rec.Status),
	)

	return toAttendanceResponse(rec, s.rules.Location), nil
}

// ────────────────────── Today ──────────────────────

// Today 返回当天记录，未签到时返回 nil
func (s *attendanceService) Today(ctx context.Context, userID string) (*dto.AttendanceResponse, error) {
	day := calendar.StartOfDay(s.now(), s.rules.Location)

	rec, err := s.repo.Attendance.GetByUserAndDate(ctx, userID, day)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, s.storeErr("查询今日考勤失败", err)
	}
	return toAttendanceResponse(rec, s.rules.Location), nil
}

// ────────────────────── History / Summary ──────────────────────

func (s *attendanceService) MyHistory(ctx context.Context, userID string, q *dto.MonthQuery) ([]dto.AttendanceResponse, error) {
	filter := s.historyFilter(userID, q)

	recs, err := s.repo.Attendance.ListAll(ctx, filter)
	if err != nil {
		return nil, s.storeErr("查询考勤历史失败", err)
	}
	return toAttendanceResponses(recs, s.rules.Location), nil
}

// historyFilter 仅在 month 与 year 同时给出时按月过滤，否则返回全部历史
func (s *attendanceService) historyFilter(userID string, q *dto.MonthQuery) repository.AttendanceFilter {
	filter := repository.AttendanceFilter{UserID: userID}
	if q != nil && q.Month != 0 && q.Year != 0 {
		from, to := s.monthRange(q)
		filter.From, filter.To = &from, &to
	}
	return filter
}

func (s *attendanceService) MySummary(ctx context.Context, userID string, q *dto.MonthQuery) (*dto.SummaryResponse, error) {
	from, to := s.monthRange(q)

	recs, err := s.repo.Attendance.ListByUser(ctx, userID, from, to)
	if err != nil {
		return nil, s.storeErr("查询月度考勤失败", err)
	}

	summary := Summarize(recs)
	summary.Year, summary.Month = from.Year(), int(from.Month())
	return &summary, nil
}

// Summarize 统计各状态数量与总工时；总工时在求和后统一保留两位小数
func Summarize(recs []model.Attendance) dto.SummaryResponse {
	var out dto.SummaryResponse
	var hours float64
	for i := range recs {
		countStatus(&out.StatusCounts, recs[i].Status)
		hours += recs[i].TotalHours
	}
	out.TotalHours = round2(hours)
	return out
}

func countStatus(c *dto.StatusCounts, status string) {
	addStatus(c, status, 1)
}

func addStatus(c *dto.StatusCounts, status string, n int) {
	switch status {
	case model.StatusPresent:
		c.Present += n
	case model.StatusAbsent:
		c.Absent += n
	case model.StatusLate:
		c.Late += n
	case model.StatusHalfDay:
		c.HalfDay += n
	}
}

// ────────────────────── 管理员查询 ──────────────────────

func (s *attendanceService) ListAll(ctx context.Context, req *dto.RecordFilter) ([]dto.AttendanceResponse, int64, error) {
	filter, err := s.buildFilter(ctx, req.StartDate, req.EndDate, req.EmployeeID)
	if err != nil {
		return nil, 0, err
	}
	filter.Status = req.Status

	recs, total, err := s.repo.Attendance.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, s.storeErr("查询考勤记录失败", err)
	}
	return toAttendanceResponses(recs, s.rules.Location), total, nil
}

// buildFilter 将闭区间日期与工号转换为仓储筛选条件
// 工号不存在时不按员工过滤
func (s *attendanceService) buildFilter(ctx context.Context, startDate, endDate, employeeID string) (repository.AttendanceFilter, error) {
	var filter repository.AttendanceFilter
	loc := s.rules.Location

	from, err := parseBound(startDate, loc)
	if err != nil {
		return filter, err
	}
	to, err := parseBound(endDate, loc)
	if err != nil {
		return filter, err
	}

	switch {
	case from != nil && to != nil:
		start, end := calendar.DayRange(*from, *to, loc)
		if !start.Before(end) {
			return filter, ErrInvalidDateRange
		}
		filter.From, filter.To = &start, &end
	case from != nil:
		filter.From = from
	case to != nil:
		end := calendar.NextDay(*to)
		filter.To = &end
	}

	if employeeID != "" {
		user, err := s.repo.User.GetByEmployeeID(ctx, employeeID)
		switch {
		case err == nil:
			filter.UserID = user.UserID
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return filter, s.storeErr("查询员工失败", err)
		}
	}
	return filter, nil
}

// parseBound 解析可选的 YYYY-MM-DD 日期，空串返回 nil
func parseBound(value string, loc *time.Location) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	day, err := calendar.ParseDay(value, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDateRange, err)
	}
	return &day, nil
}

func (s *attendanceService) EmployeeRecords(ctx context.Context, employeeID string, q *dto.MonthQuery) (*dto.EmployeeRecordsResponse, error) {
	user, err := s.findEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	filter := s.historyFilter(user.UserID, q)

	recs, err := s.repo.Attendance.ListAll(ctx, filter)
	if err != nil {
		return nil, s.storeErr("查询员工考勤失败", err)
	}

	return &dto.EmployeeRecordsResponse{
		Employee: toEmployeeBrief(user),
		Records:  toAttendanceResponses(recs, s.rules.Location),
	}, nil
}

func (s *attendanceService) findEmployee(ctx context.Context, employeeID string) (*model.User, error) {
	user, err := s.repo.User.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, s.storeErr("查询员工失败", err)
	}
	return user, nil
}

func (s *attendanceService) TeamSummary(ctx context.Context, q *dto.MonthQuery) (*dto.TeamSummaryResponse, error) {
	from, to := s.monthRange(q)

	recs, err := s.repo.Attendance.ListAll(ctx, repository.AttendanceFilter{From: &from, To: &to})
	if err != nil {
		return nil, s.storeErr("查询团队考勤失败", err)
	}

	out := &dto.TeamSummaryResponse{
		Year:           from.Year(),
		Month:          int(from.Month()),
		DepartmentWise: make(map[string]dto.StatusCounts),
	}
	for i := range recs {
		countStatus(&out.Total, recs[i].Status)

		dept := recs[i].User.DepartmentName()
		if dept == "" {
			continue
		}
		bucket := out.DepartmentWise[dept]
		countStatus(&bucket, recs[i].Status)
		out.DepartmentWise[dept] = bucket
	}
	return out, nil
}

// ────────────────────── TodayStatus ──────────────────────

func (s *attendanceService) TodayStatus(ctx context.Context) (*dto.TodayStatusResponse, error) {
	day := calendar.StartOfDay(s.now(), s.rules.Location)

	snap, err := s.todaySnapshot(ctx, day)
	if err != nil {
		return nil, err
	}

	out := &dto.TodayStatusResponse{
		Date:           calendar.Key(day),
		TotalEmployees: len(snap.employees),
		Present:        make([]dto.EmployeeBrief, 0),
		Late:           make([]dto.EmployeeBrief, 0),
		Absent:         make([]dto.EmployeeBrief, 0),
	}
	for i := range snap.records {
		rec := &snap.records[i]
		switch rec.Status {
		case model.StatusPresent, model.StatusLate:
			out.Present = append(out.Present, recordEmployee(rec))
			if rec.Status == model.StatusLate {
				out.Late = append(out.Late, recordEmployee(rec))
			}
		}
	}
	for i := range snap.absent {
		out.Absent = append(out.Absent, toEmployeeBrief(&snap.absent[i]))
	}

	out.PresentCount = len(out.Present)
	out.LateCount = len(out.Late)
	out.AbsentCount = len(out.Absent)
	return out, nil
}

// todaySnapshot 当天记录与缺勤员工集合
// 缺勤 = 角色为 employee 且当天无任何记录，与有记录的员工天然不相交
type todaySnapshot struct {
	employees []model.User
	records   []model.Attendance
	absent    []model.User
}

func (s *attendanceService) todaySnapshot(ctx context.Context, day time.Time) (*todaySnapshot, error) {
	employees, err := s.repo.User.ListByRole(ctx, model.RoleEmployee)
	if err != nil {
		return nil, s.storeErr("查询员工列表失败", err)
	}

	next := calendar.NextDay(day)
	recs, err := s.repo.Attendance.ListAll(ctx, repository.AttendanceFilter{From: &day, To: &next})
	if err != nil {
		return nil, s.storeErr("查询今日考勤失败", err)
	}

	seen := make(map[string]struct{}, len(recs))
	for i := range recs {
		seen[recs[i].UserID] = struct{}{}
	}

	var absent []model.User
	for _, emp := range employees {
		if _, ok := seen[emp.UserID]; !ok {
			absent = append(absent, emp)
		}
	}

	return &todaySnapshot{employees: employees, records: recs, absent: absent}, nil
}

func (s *attendanceService) currentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, s.storeErr("查询用户失败", err)
	}
	return user, nil
}

// ── 内部工具 ──

// monthRange 解析月份参数，缺省取当前年月
func (s *attendanceService) monthRange(q *dto.MonthQuery) (time.Time, time.Time) {
	now := s.now().In(s.rules.Location)
	year, month := now.Year(), now.Month()
	if q != nil {
		if q.Year != 0 {
			year = q.Year
		}
		if q.Month != 0 {
			month = time.Month(q.Month)
		}
	}
	return calendar.MonthRange(year, month, s.rules.Location)
}

// storeErr 记录存储层错误并包装为 ErrStoreUnavailable
func (s *attendanceService) storeErr(msg string, err error) error {
	s.logger.Error(msg, zap.Error(err))
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

// ── DTO 转换 ──

func toAttendanceResponse(rec *model.Attendance, loc *time.Location) *dto.AttendanceResponse {
	resp := &dto.AttendanceResponse{
		ID:           rec.AttendanceID,
		UserID:       rec.UserID,
		Date:         rec.DayKey(),
		CheckInTime:  formatTimestamp(rec.CheckInTime, loc),
		CheckOutTime: formatTimestamp(rec.CheckOutTime, loc),
		Status:       rec.Status,
		TotalHours:   rec.TotalHours,
	}
	if rec.User != nil {
		brief := toEmployeeBrief(rec.User)
		resp.Employee = &brief
	}
	return resp
}

func toAttendanceResponses(recs []model.Attendance, loc *time.Location) []dto.AttendanceResponse {
	out := make([]dto.AttendanceResponse, 0, len(recs))
	for i := range recs {
		out = append(out, *toAttendanceResponse(&recs[i], loc))
	}
	return out
}

func formatTimestamp(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	v := t.In(loc).Format(time.RFC3339)
	return &v
}

func toEmployeeBrief(u *model.User) dto.EmployeeBrief {
	return dto.EmployeeBrief{
		ID:         u.UserID,
		Name:       u.Name,
		Email:      u.Email,
		EmployeeID: u.EmployeeID,
		Department: u.DepartmentName(),
	}
}

// recordEmployee 记录关联的员工信息，未加载关联时仅返回 ID
func recordEmployee(rec *model.Attendance) dto.EmployeeBrief {
	if rec.User == nil {
		return dto.EmployeeBrief{ID: rec.UserID}
	}
	return toEmployeeBrief(rec.User)
}
