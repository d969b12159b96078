package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"attendance-tracker/backend/config"
	"attendance-tracker/backend/internal/api/handler"
	"attendance-tracker/backend/internal/api/middleware"
	"attendance-tracker/backend/internal/model"
	"attendance-tracker/backend/pkg/jwt"
)

// maxBodyBytes JSON 请求体上限
const maxBodyBytes = 1 << 20

// Setup 初始化并返回 Gin 路由引擎
// blacklist 与 limiter 为 nil 时（Redis 不可用）分别跳过黑名单与限流
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	jwtMgr *jwt.Manager,
	blacklist middleware.Blacklist,
	limiter middleware.Limiter,
	db *gorm.DB,
	logger *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	if err := middleware.RegisterValidators(); err != nil {
		logger.Error("注册校验规则失败", zap.Error(err))
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
	})

	authRateLimit := middleware.RateLimit(limiter, cfg.Server.RateLimit, time.Minute)
	managerOnly := middleware.RoleAuth(model.RoleManager)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authRateLimit, h.Auth.Login)
			auth.POST("/register", authRateLimit, h.Auth.Register)
			auth.POST("/refresh", authRateLimit, h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 考勤模块
			attendance := authorized.Group("/attendance")
			{
				attendance.POST("/checkin", h.Attendance.CheckIn)
				attendance.POST("/checkout", h.Attendance.CheckOut)
				attendance.GET("/today", h.Attendance.Today)
				attendance.GET("/my-history", h.Attendance.MyHistory)
				attendance.GET("/my-summary", h.Attendance.MySummary)
				attendance.GET("/calendar.ics", h.Export.Calendar) // employee_id 仅管理员（Handler 层鉴权）

				attendance.GET("/all", managerOnly, h.Attendance.ListAll)
				attendance.GET("/employee/:employeeId", managerOnly, h.Attendance.EmployeeRecords)
				attendance.GET("/summary", managerOnly, h.Attendance.TeamSummary)
				attendance.GET("/today-status", managerOnly, h.Attendance.TodayStatus)
				attendance.GET("/export", managerOnly, h.Export.ExportRecords)
			}

			// 仪表盘模块
			dashboard := authorized.Group("/dashboard")
			{
				dashboard.GET("/employee", h.Dashboard.Employee)
				dashboard.GET("/manager", managerOnly, h.Dashboard.Manager)
			}

			// 员工目录
			authorized.GET("/users", managerOnly, h.User.ListEmployees)
		}
	}

	return r
}
