package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"attendance-tracker/backend/config"
	"attendance-tracker/backend/internal/repository"
	"attendance-tracker/backend/internal/seed"
	"attendance-tracker/backend/internal/service"
	"attendance-tracker/backend/pkg/database"
	applogger "attendance-tracker/backend/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	days := flag.Int("days", seed.DefaultDaysBack, "生成的历史天数")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
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

	rules, err := service.NewRules(&cfg.Attendance)
	if err != nil {
		logger.Fatal("考勤规则配置无效", zap.Error(err))
	}

	// 3. 连接数据库并迁移
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 写入种子数据
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	res, err := seed.Run(ctx, repository.NewRepository(db), *days, rules.Location, logger)
	if err != nil {
		logger.Fatal("写入种子数据失败", zap.Error(err))
	}

	logger.Info("演示账号已就绪",
		zap.Int("users", res.Users),
		zap.Int("attendances", res.Attendances),
		zap.String("manager", "manager@company.com"),
		zap.String("password", seed.DefaultPassword),
	)
}
