package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"attendance-tracker/backend/internal/model"
	pkgerrors "attendance-tracker/backend/pkg/errors"
)

// AttendanceFilter 考勤记录筛选条件
// 日期区间为半开区间 [From, To)，为 nil 时不限制
type AttendanceFilter struct {
	From   *time.Time
	To     *time.Time
	UserID string
	Status string
}

// DepartmentCount 部门 × 状态 聚合行
type DepartmentCount struct {
	Department string
	Status     string
	Count      int64
}

// AttendanceRepository 考勤记录数据访问接口
type AttendanceRepository interface {
	GetByUserAndDate(ctx context.Context, userID string, day time.Time) (*model.Attendance, error)
	UpsertCheckIn(ctx context.Context, rec *model.Attendance) error
	UpdateCheckOut(ctx context.Context, rec *model.Attendance) error
	ListByUser(ctx context.Context, userID string, from, to time.Time) ([]model.Attendance, error)
	List(ctx context.Context, filter AttendanceFilter, offset, limit int) ([]model.Attendance, int64, error)
	ListAll(ctx context.Context, filter AttendanceFilter) ([]model.Attendance, error)
	DepartmentCounts(ctx context.Context, from, to time.Time) ([]DepartmentCount, error)
	BatchCreate(ctx context.Context, recs []model.Attendance) error
	MaterializeAbsent(ctx context.Context, day time.Time) (int64, error)
	DeleteAll(ctx context.Context) error
}

// attendanceRepo AttendanceRepository 的 GORM 实现
type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) GetByUserAndDate(ctx context.Context, userID string, day time.Time) (*model.Attendance, error) {
	var rec model.Attendance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, day).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpsertCheckIn 单条语句完成签到写入
// (user_id, date) 冲突时仅覆盖尚未签到的占位记录（如 absent 行），否则返回 ErrDuplicateRecord
func (r *attendanceRepo) UpsertCheckIn(ctx context.Context, rec *model.Attendance) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "attendances.check_in_time IS NULL"},
			}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"check_in_time":  rec.CheckInTime,
				"check_out_time": nil,
				"status":         rec.Status,
				"total_hours":    0,
				"updated_at":     gorm.Expr("CURRENT_TIMESTAMP"),
			}),
		}).
		Create(rec)
	if result.Error != nil {
		if pkgerrors.IsUniqueViolation(result.Error) {
			return pkgerrors.ErrDuplicateRecord
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrDuplicateRecord
	}
	return nil
}

// UpdateCheckOut 写入签退时间、工时与状态
// 条件更新保证同一记录只会被签退一次
func (r *attendanceRepo) UpdateCheckOut(ctx context.Context, rec *model.Attendance) error {
	result := r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Where("attendance_id = ? AND check_in_time IS NOT NULL AND check_out_time IS NULL", rec.AttendanceID).
		Updates(map[string]interface{}{
			"check_out_time": rec.CheckOutTime,
			"total_hours":    rec.TotalHours,
			"status":         rec.Status,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrStaleRecord
	}
	return nil
}

func (r *attendanceRepo) ListByUser(ctx context.Context, userID string, from, to time.Time) ([]model.Attendance, error) {
	var recs []model.Attendance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date < ?", userID, from, to).
		Order("date DESC").
		Find(&recs).Error
	return recs, err
}

func (r *attendanceRepo) List(ctx context.Context, filter AttendanceFilter, offset, limit int) ([]model.Attendance, int64, error) {
	var recs []model.Attendance
	var total int64

	db := r.applyFilter(r.db.WithContext(ctx).Model(&model.Attendance{}), filter)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("User").
		Offset(offset).Limit(limit).
		Order("date DESC").Order("created_at DESC").
		Find(&recs).Error; err != nil {
		return nil, 0, err
	}

	return recs, total, nil
}

func (r *attendanceRepo) ListAll(ctx context.Context, filter AttendanceFilter) ([]model.Attendance, error) {
	var recs []model.Attendance
	err := r.applyFilter(r.db.WithContext(ctx), filter).
		Preload("User").
		Order("date DESC").Order("created_at DESC").
		Find(&recs).Error
	return recs, err
}

func (r *attendanceRepo) applyFilter(db *gorm.DB, filter AttendanceFilter) *gorm.DB {
	if filter.From != nil {
		db = db.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("date < ?", *filter.To)
	}
	if filter.UserID != "" {
		db = db.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	return db
}

// DepartmentCounts 按部门与状态聚合 [from, to) 内的记录，未设置部门的员工不计入
func (r *attendanceRepo) DepartmentCounts(ctx context.Context, from, to time.Time) ([]DepartmentCount, error) {
	var rows []DepartmentCount
	err := r.db.WithContext(ctx).
		Table("attendances AS a").
		Select("u.department AS department, a.status AS status, COUNT(*) AS count").
		Joins("JOIN users u ON u.user_id = a.user_id").
		Where("a.date >= ? AND a.date < ? AND u.department IS NOT NULL", from, to).
		Group("u.department, a.status").
		Order("u.department ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *attendanceRepo) BatchCreate(ctx context.Context, recs []model.Attendance) error {
	if len(recs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(recs, 500).Error
}

// MaterializeAbsent 为当天没有任何记录的员工写入 absent 记录，返回写入条数
func (r *attendanceRepo) MaterializeAbsent(ctx context.Context, day time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Exec(`
		INSERT INTO attendances (user_id, date, status, total_hours)
		SELECT u.user_id, ?::date, ?, 0
		FROM users u
		WHERE u.role = ?
		ON CONFLICT (user_id, date) DO NOTHING`,
		day, model.StatusAbsent, model.RoleEmployee,
	)
	return result.RowsAffected, result.Error
}

// DeleteAll 清空考勤表（仅供种子数据重置使用）
func (r *attendanceRepo) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.Attendance{}).Error
}
