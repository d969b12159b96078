package handler

import (
	"github.com/gin-gonic/gin"

	"attendance-tracker/backend/internal/dto"
	"attendance-tracker/backend/internal/service"
	"attendance-tracker/backend/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportRecords 导出考勤记录（管理员）
// GET /api/v1/attendance/export?start_date=&end_date=&employee_id=&format=csv|xlsx
func (h *ExportHandler) ExportRecords(c *gin.Context) {
	var req dto.ExportQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	file, err := h.exportSvc.ExportRecords(c.Request.Context(), &req)
	if err != nil {
		handleAttendanceError(c, err)
		return
	}

	response.Attachment(c, file.Filename, file.ContentType, file.Data.Bytes())
}

// Calendar 导出月度考勤日历（iCalendar）
// GET /api/v1/attendance/calendar.ics?month=&year=&employee_id=
// employee_id 仅管理员可指定，缺省导出本人
func (h *ExportHandler) Calendar(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var q dto.CalendarQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if q.EmployeeID != "" && !IsManager(c) {
		response.Forbidden(c, 10003, "无权限导出他人考勤")
		return
	}

	file, err := h.exportSvc.Calendar(c.Request.Context(), userID, q.EmployeeID, &q.MonthQuery)
	if err != nil {
		handleAttendanceError(c, err)
		return
	}

	response.Attachment(c, file.Filename, file.ContentType, file.Data.Bytes())
}
