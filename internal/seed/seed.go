// Package seed 生成演示用的员工与考勤历史数据。
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"

	"attendance-tracker/backend/internal/model"
	"attendance-tracker/backend/internal/repository"
	"attendance-tracker/backend/internal/service"
	"attendance-tracker/backend/pkg/calendar"
)

// DefaultPassword 所有演示账号的初始密码
const DefaultPassword = "password123"

// DefaultDaysBack 默认生成的历史天数
const DefaultDaysBack = 30

// Fixture 演示账号定义
type Fixture struct {
	Name       string
	Email      string
	Role       string
	EmployeeID string
	Department string
}

// Fixtures 1 名管理员 + 5 名员工
var Fixtures = []Fixture{
	{"John Manager", "manager@company.com", model.RoleManager, "EMP001", "Management"},
	{"Alice Johnson", "alice@company.com", model.RoleEmployee, "EMP002", "Engineering"},
	{"Bob Smith", "bob@company.com", model.RoleEmployee, "EMP003", "Engineering"},
	{"Carol Williams", "carol@company.com", model.RoleEmployee, "EMP004", "Marketing"},
	{"David Brown", "david@company.com", model.RoleEmployee, "EMP005", "HR"},
	{"Eva Davis", "eva@company.com", model.RoleEmployee, "EMP006", "Engineering"},
}

// Users 由 Fixtures 构造用户，主键在本地生成以便考勤记录引用
func Users(passwordHash string) []model.User {
	users := make([]model.User, 0, len(Fixtures))
	for _, f := range Fixtures {
		dept := f.Department
		users = append(users, model.User{
			UserID:       uuid.NewString(),
			Name:         f.Name,
			Email:        f.Email,
			PasswordHash: passwordHash,
			Role:         f.Role,
			EmployeeID:   f.EmployeeID,
			Department:   &dept,
		})
	}
	return users
}

// Generate 为每名 employee 生成 now 之前 daysBack 天的考勤记录（不含当天，跳过周末）
//
// 分布：5% absent，5% half-day（09:00-09:29 签到，约 3 小时），
// 10% late（10 点签到，18 点签退），80% present（09:00-09:19 签到，18 点签退）。
// 工时由签到签退时间经 RoundHours 计算，状态与判定规则一致。
func Generate(users []model.User, daysBack int, now time.Time, loc *time.Location, rng *rand.Rand) []model.Attendance {
	today := calendar.StartOfDay(now, loc)

	var out []model.Attendance
	for _, u := range users {
		if u.Role != model.RoleEmployee {
			continue
		}
		for i := 1; i <= daysBack; i++ {
			day := today.AddDate(0, 0, -i)
			if calendar.IsWeekend(day) {
				continue
			}
			out = append(out, generateDay(u.UserID, day, rng))
		}
	}
	return out
}

func generateDay(userID string, day time.Time, rng *rand.Rand) model.Attendance {
	rec := model.Attendance{
		AttendanceID: uuid.NewString(),
		UserID:       userID,
		Date:         datatypes.Date(day),
	}

	at := func(hour, minute int) time.Time {
		return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
	}

	var in, out time.Time
	switch r := rng.Float64(); {
	case r < 0.05:
		rec.Status = model.StatusAbsent
		return rec
	case r < 0.10:
		rec.Status = model.StatusHalfDay
		in = at(9, rng.Intn(30))
		out = at(12, rng.Intn(60))
	case r < 0.20:
		rec.Status = model.StatusLate
		in = at(10, rng.Intn(60))
		out = at(18, rng.Intn(60))
	default:
		rec.Status = model.StatusPresent
		in = at(9, rng.Intn(20))
		out = at(18, rng.Intn(60))
	}

	rec.CheckInTime = &in
	rec.CheckOutTime = &out
	rec.TotalHours = service.RoundHours(out.Sub(in))
	return rec
}

// Result 种子数据写入结果
type Result struct {
	Users       int
	Attendances int
}

// Run 清空 users 与 attendances 后写入演示数据，整个过程在一个事务内完成
func Run(ctx context.Context, repo *repository.Repository, daysBack int, loc *time.Location, logger *zap.Logger) (*Result, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("密码加密失败: %w", err)
	}

	users := Users(string(hash))
	recs := Generate(users, daysBack, time.Now(), loc, rand.New(rand.NewSource(time.Now().UnixNano())))

	err = repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Attendance.DeleteAll(ctx); err != nil {
			return fmt.Errorf("清空考勤记录失败: %w", err)
		}
		if err := tx.User.DeleteAll(ctx); err != nil {
			return fmt.Errorf("清空用户失败: %w", err)
		}
		if err := tx.User.BatchCreate(ctx, users); err != nil {
			return fmt.Errorf("写入用户失败: %w", err)
		}
		if err := tx.Attendance.BatchCreate(ctx, recs); err != nil {
			return fmt.Errorf("写入考勤记录失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("种子数据写入完成",
		zap.Int("users", len(users)),
		zap.Int("attendances", len(recs)),
	)
	return &Result{Users: len(users), Attendances: len(recs)}, nil
}
