package errors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateRecord 唯一约束冲突：同一员工同一天已存在考勤记录等
var ErrDuplicateRecord = errors.New("记录已存在")

// pgUniqueViolation PostgreSQL unique_violation 错误码
const pgUniqueViolation = "23505"

// IsUniqueViolation 判断底层驱动错误是否为唯一约束冲突
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return errors.Is(err, ErrDuplicateRecord)
}

// DuplicateError 携带冲突约束名的唯一约束错误
// errors.Is(err, ErrDuplicateRecord) 仍然成立
type DuplicateError struct {
	Constraint string
}

func (e *DuplicateError) Error() string {
	if e.Constraint == "" {
		return ErrDuplicateRecord.Error()
	}
	return ErrDuplicateRecord.Error() + ": " + e.Constraint
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicateRecord }

// AsDuplicate 将驱动层唯一约束冲突转为 *DuplicateError，其余错误原样返回
func AsDuplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return &DuplicateError{Constraint: pgErr.ConstraintName}
	}
	return err
}

// DuplicateConstraint 返回冲突的约束名；非 DuplicateError 返回空串
func DuplicateConstraint(err error) string {
	var dup *DuplicateError
	if errors.As(err, &dup) {
		return dup.Constraint
	}
	return ""
}

// ErrStaleRecord 条件更新未命中任何行：记录已被并发修改
var ErrStaleRecord = errors.New("记录已被并发修改")
