package handler

import (
	"github.com/gin-gonic/gin"

	"attendance-tracker/backend/internal/service"
	"attendance-tracker/backend/pkg/response"
)

// DashboardHandler 仪表盘 HTTP 处理器
type DashboardHandler struct {
	dashSvc service.DashboardService
}

// NewDashboardHandler 创建 DashboardHandler
func NewDashboardHandler(dashSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashSvc: dashSvc}
}

// Employee 员工仪表盘
// GET /api/v1/dashboard/employee
func (h *DashboardHandler) Employee(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.dashSvc.Employee(c.Request.Context(), userID)
	if err != nil {
		handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// Manager 管理员仪表盘
// GET /api/v1/dashboard/manager
func (h *DashboardHandler) Manager(c *gin.Context) {
	result, err := h.dashSvc.Manager(c.Request.Context())
	if err != nil {
		handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}
