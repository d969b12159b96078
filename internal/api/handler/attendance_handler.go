package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"attendance-tracker/backend/internal/dto"
	"attendance-tracker/backend/internal/service"
	"attendance-tracker/backend/pkg/response"
)

// AttendanceHandler 考勤模块 HTTP 处理器
type AttendanceHandler struct {
	attSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attSvc: attSvc}
}

// CheckIn 签到
// POST /api/v1/attendance/checkin
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	rec, err := h.attSvc.CheckIn(c.Request.Context(), userID)
	if err != nil {
		handleAttendanceError(c, err)
		return
	}

	response.Created(c, rec)
}

// CheckOut 签退
// POST /api/v1/attendance/checkout
func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	rec, err := h.attSvc.CheckOut(c.Request.Context(), userID)
	if err != nil {
		handleAttendanceError(c, err)
		return
	}

	response.OK(c, rec)
}

// Today 当天考勤，未签到时 data 为 null
// GET /api/v1/attendance/today
func (h *AttendanceHandler) Today(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	rec, err := h.attSvc.Today(c.Request.Context(), userID)
	if err != nil {
		handleAttendanceError(c, err)
		return
	}

	response.OK(c, rec)
}

// MyHistory 本人考勤历史
// GET /api/v1/attendance/my-history?month=&year=
func (h *AttendanceHandler) MyHistory(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var q dto.MonthQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.attSvc.MyHistory(c.Request.Context(), userID, &q)
	if err != nil {
		handleAttendanceError(c, err)
		return
	}

	response.OK(c, list)
}

// MySummary 本人月度汇总，缺省为当月
// GET /api/v1/attendance/my-summary?month=&year=
func (h *AttendanceHandler) MySummary(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var q dto.MonthQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	summary, err := h.attSvc.MySummary(c.Request.Context(), userID, &q)
	if err != nil {
		handleAttendanceError(c, err)
		return
	}

	response.OK(c, summary)
}

// ListAll 全部考勤记录（管理员）
// GET /api/v1/attendance/all?start_date=&end_date=&employee_id=&status=&page=&page_size=
func (h *AttendanceHandler) ListAll(c *gin.Context) {
	var req dto.RecordFilter
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.attSvc.ListAll(c.Request.Context(), &req)
	if err != nil {
		handleAttendanceError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// EmployeeRecords 指定员工的考勤记录（管理员）
// GET /api/v1/attendance/employee/:employeeId?month=&year=
func (h *AttendanceHandler) EmployeeRecords(c *gin.Context) {
	employeeID := c.Param("employeeId")
	if employeeID == "" {
		response.BadRequest(c, 10001, "employeeId 不能为空")
		return
	}
	var q dto.MonthQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.attSvc.EmployeeRecords(c.Request.Context(), employeeID, &q)
	if err != nil {
		handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// TeamSummary 团队月度汇总（管理员）
// GET /api/v1/attendance/summary?month=&year=
func (h *AttendanceHandler) TeamSummary(c *gin.Context) {
	var q dto.MonthQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.attSvc.TeamSummary(c.Request.Context(), &q)
	if err != nil {
		handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// TodayStatus 今日出勤概况（管理员）
// GET /api/v1/attendance/today-status
func (h *AttendanceHandler) TodayStatus(c *gin.Context) {
	result, err := h.attSvc.TodayStatus(c.Request.Context())
	if err != nil {
		handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// handleAttendanceError 考勤、仪表盘、导出共用的错误映射
func handleAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAlreadyCheckedIn):
		response.Conflict(c, 12001, "今日已签到")
	case errors.Is(err, service.ErrNotCheckedIn):
		response.BadRequest(c, 12002, "今日尚未签到")
	case errors.Is(err, service.ErrAlreadyCheckedOut):
		response.Conflict(c, 12003, "今日已签退")
	case errors.Is(err, service.ErrEmployeeNotFound), errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12004, "员工不存在")
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 10001, "日期范围无效")
	case errors.Is(err, service.ErrStoreUnavailable):
		response.ServiceUnavailable(c, 12005, "数据存储暂不可用，请稍后重试")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 13001, "生成导出文件失败")
	default:
		response.InternalError(c)
	}
}
