package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"attendance-tracker/backend/internal/repository"
	"attendance-tracker/backend/pkg/calendar"
)

// AbsenceJob 定时为当天无记录的员工写入 absent 记录
// 默认关闭；实时视图（今日状态、仪表盘）不依赖该任务
type AbsenceJob struct {
	repo   *repository.Repository
	rules  Rules
	now    func() time.Time
	logger *zap.Logger
	cron   *cron.Cron
}

// NewAbsenceJob 创建 AbsenceJob 实例
func NewAbsenceJob(repo *repository.Repository, rules Rules, logger *zap.Logger) *AbsenceJob {
	return &AbsenceJob{repo: repo, rules: rules, now: time.Now, logger: logger}
}

// Start 按 cron 表达式（业务时区）启动任务；上一次未结束时跳过本次
func (j *AbsenceJob) Start(schedule string) error {
	clog := cronLogger{sugar: j.logger.Sugar()}
	j.cron = cron.New(
		cron.WithLocation(j.rules.Location),
		cron.WithLogger(clog),
		cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)),
	)

	if _, err := j.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := j.Run(ctx); err != nil {
			j.logger.Error("缺勤记录生成失败", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("注册缺勤任务失败: %w", err)
	}

	j.cron.Start()
	j.logger.Info("缺勤记录任务已启动", zap.String("schedule", schedule))
	return nil
}

// Stop 停止调度并等待正在执行的任务结束
func (j *AbsenceJob) Stop() {
	if j.cron == nil {
		return
	}
	<-j.cron.Stop().Done()
}

// Run 为当天写入缺勤记录，周末不处理；返回写入条数
func (j *AbsenceJob) Run(ctx context.Context) (int64, error) {
	day := calendar.StartOfDay(j.now(), j.rules.Location)
	if calendar.IsWeekend(day) {
		return 0, nil
	}

	n, err := j.repo.Attendance.MaterializeAbsent(ctx, day)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	j.logger.Info("缺勤记录已生成", zap.String("date", calendar.Key(day)), zap.Int64("count", n))
	return n, nil
}

// cronLogger 将 cron 日志接入 zap
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
