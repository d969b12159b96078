package model

// 角色
const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
)

// User 员工表 对应 users
// 由用户管理模块维护，考勤模块只读
type User struct {
	UserID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string  `gorm:"type:varchar(255);not null;uniqueIndex:uk_users_email"       json:"email"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string  `gorm:"type:varchar(20);not null;default:'employee'"   json:"role"`
	EmployeeID   string  `gorm:"type:varchar(20);not null;uniqueIndex:uk_users_employee_id" json:"employee_id"`
	Department   *string `gorm:"type:varchar(100)"                              json:"department,omitempty"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// DepartmentName 部门名，未设置时返回空串
func (u *User) DepartmentName() string {
	if u == nil || u.Department == nil {
		return ""
	}
	return *u.Department
}
