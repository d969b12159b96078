package dto

// UserListRequest 员工列表查询参数
type UserListRequest struct {
	PaginationRequest
	Department string `form:"department" binding:"omitempty,max=100"`
}

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	EmployeeID string `json:"employee_id"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// EmployeeBrief 考勤记录中关联的员工信息
type EmployeeBrief struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	EmployeeID string `json:"employee_id"`
	Department string `json:"department,omitempty"`
}
