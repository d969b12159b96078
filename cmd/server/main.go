package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"attendance-tracker/backend/config"
	"attendance-tracker/backend/internal/api/handler"
	"attendance-tracker/backend/internal/api/middleware"
	"attendance-tracker/backend/internal/api/router"
	"attendance-tracker/backend/internal/repository"
	"attendance-tracker/backend/internal/service"
	"attendance-tracker/backend/pkg/database"
	"attendance-tracker/backend/pkg/jwt"
	applogger "attendance-tracker/backend/pkg/logger"
	"attendance-tracker/backend/pkg/notify"
	"attendance-tracker/backend/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("timezone", cfg.Attendance.Timezone),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	// 接口变量保持 nil，避免把 nil 指针装进接口
	var (
		rdb       *redis.Client
		blacklist service.TokenBlacklist
		limiter   middleware.Limiter
	)
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单与限流将不可用", zap.Error(err))
		rdb = nil
	} else {
		blacklist = rdb
		limiter = rdb
	}

	// 5. 初始化 JWT 管理器与考勤规则
	jwtMgr := jwt.NewManager(&cfg.Auth)

	rules, err := service.NewRules(&cfg.Attendance)
	if err != nil {
		logger.Fatal("考勤规则配置无效", zap.Error(err))
	}

	// 6. 迟到通知（可选）
	notifier, err := notify.New(&cfg.Notify, rules.Location, logger)
	if err != nil {
		logger.Warn("迟到通知初始化失败，已禁用", zap.Error(err))
		notifier = notify.Nop{}
	}

	// 7. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc, err := service.NewService(cfg, repo, jwtMgr, blacklist, notifier, logger)
	if err != nil {
		logger.Fatal("初始化业务层失败", zap.Error(err))
	}
	h := handler.NewHandler(svc)

	// 7.1 缺勤落库任务（可选）
	if cfg.Feature.AbsentJobEnabled {
		if err := svc.AbsenceJob.Start(cfg.Feature.AbsentJobCron); err != nil {
			logger.Fatal("启动缺勤落库任务失败", zap.Error(err))
		}
		defer svc.AbsenceJob.Stop()
	}

	// 8. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, blacklist, limiter, db, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	if err := sqlDB.Close(); err != nil {
		logger.Warn("关闭数据库连接失败", zap.Error(err))
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
