package middleware

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"attendance-tracker/backend/internal/model"
)

// RegisterValidators 向 gin 的校验引擎注册业务校验规则
//   - attstatus: 考勤状态取值（present / late / half-day / absent）
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("attstatus", validAttendanceStatus)
}

func validAttendanceStatus(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	for _, st := range model.Statuses {
		if s == st {
			return true
		}
	}
	return false
}
