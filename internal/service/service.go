package service

import (
	"go.uber.org/zap"

	"attendance-tracker/backend/config"
	"attendance-tracker/backend/internal/repository"
	"attendance-tracker/backend/pkg/jwt"
	"attendance-tracker/backend/pkg/notify"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	User       UserService
	Attendance AttendanceService
	Dashboard  DashboardService
	Export     ExportService
	AbsenceJob *AbsenceJob
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	notifier notify.Notifier,
	logger *zap.Logger,
) (*Service, error) {
	rules, err := NewRules(&cfg.Attendance)
	if err != nil {
		return nil, err
	}

	return &Service{
		Auth:       NewAuthService(repo, jwtMgr, blacklist, logger),
		User:       NewUserService(repo, logger),
		Attendance: NewAttendanceService(repo, rules, notifier, logger),
		Dashboard:  NewDashboardService(repo, rules, logger),
		Export:     NewExportService(repo, rules, logger),
		AbsenceJob: NewAbsenceJob(repo, rules, logger),
	}, nil
}
