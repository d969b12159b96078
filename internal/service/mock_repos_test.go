package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"attendance-tracker/backend/internal/model"
	"attendance-tracker/backend/internal/repository"
	pkgerrors "attendance-tracker/backend/pkg/errors"
	"attendance-tracker/backend/pkg/notify"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // key: user_id
	seq   int

	// beforeCreate 在唯一性检查前执行，用于模拟并发注册
	beforeCreate func()
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if m.beforeCreate != nil {
		m.beforeCreate()
	}
	for _, u := range m.users {
		switch {
		case u.Email == user.Email:
			return &pkgerrors.DuplicateError{Constraint: repository.UserEmailConstraint}
		case u.EmployeeID == user.EmployeeID:
			return &pkgerrors.DuplicateError{Constraint: repository.UserEmployeeIDConstraint}
		}
	}
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%03d", m.seq)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) BatchCreate(ctx context.Context, users []model.User) error {
	for i := range users {
		if err := m.Create(ctx, &users[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmployeeID(_ context.Context, employeeID string) (*model.User, error) {
	for _, u := range m.users {
		if u.EmployeeID == employeeID {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByRole(_ context.Context, role string) ([]model.User, error) {
	var result []model.User
	for _, u := range m.sorted() {
		if u.Role == role {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) List(_ context.Context, filter repository.UserFilter, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.sorted() {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Department != "" && u.DepartmentName() != filter.Department {
			continue
		}
		all = append(all, *u)
	}
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockUserRepo) DeleteAll(_ context.Context) error {
	m.users = make(map[string]*model.User)
	return nil
}

// sorted 按工号排序，保证断言稳定
func (m *mockUserRepo) sorted() []*model.User {
	out := make([]*model.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	users   *mockUserRepo
	records map[string]*model.Attendance // key: user_id|date
	seq     int
	err     error // 非 nil 时所有调用返回该错误，模拟存储不可用
}

func newMockAttendanceRepo(users *mockUserRepo) *mockAttendanceRepo {
	return &mockAttendanceRepo{users: users, records: make(map[string]*model.Attendance)}
}

func attKey(userID string, day time.Time) string {
	return userID + "|" + day.Format("2006-01-02")
}

// withUser 模拟 Preload("User")
func (m *mockAttendanceRepo) withUser(rec model.Attendance) model.Attendance {
	if u, ok := m.users.users[rec.UserID]; ok {
		rec.User = u
	}
	return rec
}

func (m *mockAttendanceRepo) GetByUserAndDate(_ context.Context, userID string, day time.Time) (*model.Attendance, error) {
	if m.err != nil {
		return nil, m.err
	}
	if rec, ok := m.records[attKey(userID, day)]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) UpsertCheckIn(_ context.Context, rec *model.Attendance) error {
	if m.err != nil {
		return m.err
	}
	key := attKey(rec.UserID, rec.Day())
	if existing, ok := m.records[key]; ok {
		if existing.CheckInTime != nil {
			return pkgerrors.ErrDuplicateRecord
		}
		rec.AttendanceID = existing.AttendanceID
	} else {
		m.seq++
		rec.AttendanceID = fmt.Sprintf("att-%04d", m.seq)
	}
	rec.CheckOutTime = nil
	rec.TotalHours = 0
	cp := *rec
	m.records[key] = &cp
	return nil
}

func (m *mockAttendanceRepo) UpdateCheckOut(_ context.Context, rec *model.Attendance) error {
	if m.err != nil {
		return m.err
	}
	existing, ok := m.records[attKey(rec.UserID, rec.Day())]
	if !ok || existing.CheckInTime == nil || existing.CheckOutTime != nil {
		return pkgerrors.ErrStaleRecord
	}
	existing.CheckOutTime = rec.CheckOutTime
	existing.TotalHours = rec.TotalHours
	existing.Status = rec.Status
	return nil
}

func (m *mockAttendanceRepo) ListByUser(ctx context.Context, userID string, from, to time.Time) ([]model.Attendance, error) {
	recs, err := m.ListAll(ctx, repository.AttendanceFilter{From: &from, To: &to, UserID: userID})
	for i := range recs {
		recs[i].User = nil
	}
	return recs, err
}

func (m *mockAttendanceRepo) List(ctx context.Context, filter repository.AttendanceFilter, offset, limit int) ([]model.Attendance, int64, error) {
	all, err := m.ListAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockAttendanceRepo) ListAll(_ context.Context, filter repository.AttendanceFilter) ([]model.Attendance, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []model.Attendance
	for _, rec := range m.records {
		day := rec.Day()
		if filter.From != nil && day.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !day.Before(*filter.To) {
			continue
		}
		if filter.UserID != "" && rec.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		out = append(out, m.withUser(*rec))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Day().Equal(out[j].Day()) {
			return out[i].Day().After(out[j].Day())
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (m *mockAttendanceRepo) DepartmentCounts(ctx context.Context, from, to time.Time) ([]repository.DepartmentCount, error) {
	recs, err := m.ListAll(ctx, repository.AttendanceFilter{From: &from, To: &to})
	if err != nil {
		return nil, err
	}
	counts := make(map[[2]string]int64)
	for i := range recs {
		dept := recs[i].User.DepartmentName()
		if dept == "" {
			continue
		}
		counts[[2]string{dept, recs[i].Status}]++
	}
	var out []repository.DepartmentCount
	for k, n := range counts {
		out = append(out, repository.DepartmentCount{Department: k[0], Status: k[1], Count: n})
	}
	return out, nil
}

func (m *mockAttendanceRepo) BatchCreate(_ context.Context, recs []model.Attendance) error {
	for i := range recs {
		m.put(recs[i])
	}
	return nil
}

func (m *mockAttendanceRepo) MaterializeAbsent(_ context.Context, day time.Time) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for _, u := range m.users.users {
		if u.Role != model.RoleEmployee {
			continue
		}
		if _, ok := m.records[attKey(u.UserID, day)]; ok {
			continue
		}
		m.put(model.Attendance{UserID: u.UserID, Date: dateOf(day), Status: model.StatusAbsent})
		n++
	}
	return n, nil
}

func (m *mockAttendanceRepo) DeleteAll(_ context.Context) error {
	m.records = make(map[string]*model.Attendance)
	return nil
}

// put 直接写入一条记录（测试准备数据用）
func (m *mockAttendanceRepo) put(rec model.Attendance) *model.Attendance {
	if rec.AttendanceID == "" {
		m.seq++
		rec.AttendanceID = fmt.Sprintf("att-%04d", m.seq)
	}
	cp := rec
	m.records[attKey(rec.UserID, rec.Day())] = &cp
	return &cp
}

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	mu   sync.Mutex
	jtis map[string]time.Duration
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{jtis: make(map[string]time.Duration)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jtis[jti] = ttl
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.jtis[jti]
	return ok, nil
}

// ── Mock Notifier ──

type recordingNotifier struct {
	events chan notify.LateArrival
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{events: make(chan notify.LateArrival, 8)}
}

func (n *recordingNotifier) NotifyLate(_ context.Context, ev notify.LateArrival) error {
	n.events <- ev
	return nil
}
