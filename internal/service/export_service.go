package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"attendance-tracker/backend/internal/dto"
	"attendance-tracker/backend/internal/model"
	"attendance-tracker/backend/internal/repository"
	"attendance-tracker/backend/pkg/calendar"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成导出文件失败")

// 导出格式
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// notAvailable 缺失值占位
const notAvailable = "N/A"

// exportHeader 导出文件固定列
var exportHeader = []string{"EmployeeID", "Name", "Department", "Date", "CheckIn", "CheckOut", "Status", "TotalHours"}

// ExportFile 导出结果，由 Handler 层设置响应头后写出
type ExportFile struct {
	Data        *bytes.Buffer
	Filename    string
	ContentType string
}

// ExportService 导出业务接口
type ExportService interface {
	// ExportRecords 按筛选条件导出考勤记录（CSV 或 XLSX）
	ExportRecords(ctx context.Context, req *dto.ExportQuery) (*ExportFile, error)
	// Calendar 导出某员工某月的考勤为 iCalendar；employeeID 为空时导出本人
	Calendar(ctx context.Context, userID, employeeID string, q *dto.MonthQuery) (*ExportFile, error)
}

type exportService struct {
	att *attendanceService
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, rules Rules, logger *zap.Logger) ExportService {
	return &exportService{att: newAttendanceService(repo, rules, nil, time.Now, logger)}
}

// ────────────────────── ExportRecords ──────────────────────

func (s *exportService) ExportRecords(ctx context.Context, req *dto.ExportQuery) (*ExportFile, error) {
	a := s.att

	filter, err := a.buildFilter(ctx, req.StartDate, req.EndDate, req.EmployeeID)
	if err != nil {
		return nil, err
	}

	recs, err := a.repo.Attendance.ListAll(ctx, filter)
	if err != nil {
		return nil, a.storeErr("查询导出数据失败", err)
	}

	rows := ExportRows(recs, a.rules.Location)

	if req.Format == FormatXLSX {
		buf, err := writeXLSX(exportSheet, rows)
		if err != nil {
			a.logger.Error("写入 Excel 失败", zap.Error(err))
			return nil, ErrExportGenerateFail
		}
		return &ExportFile{
			Data:        buf,
			Filename:    "attendance-report.xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		}, nil
	}

	buf, err := writeCSV(rows)
	if err != nil {
		a.logger.Error("写入 CSV 失败", zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	return &ExportFile{
		Data:        buf,
		Filename:    "attendance-report.csv",
		ContentType: "text/csv; charset=utf-8",
	}, nil
}

// ExportRows 将考勤记录转换为导出行（不含表头）
// 缺失的员工信息、部门、签到或签退时间以 N/A 填充
func ExportRows(recs []model.Attendance, loc *time.Location) [][]string {
	rows := make([][]string, 0, len(recs))
	for i := range recs {
		rec := &recs[i]

		employeeID, name, dept := notAvailable, notAvailable, notAvailable
		if rec.User != nil {
			employeeID, name = rec.User.EmployeeID, rec.User.Name
			if d := rec.User.DepartmentName(); d != "" {
				dept = d
			}
		}

		rows = append(rows, []string{
			employeeID,
			name,
			dept,
			rec.DayKey(),
			clockOrNA(rec.CheckInTime, loc),
			clockOrNA(rec.CheckOutTime, loc),
			rec.Status,
			fmt.Sprintf("%.2f", rec.TotalHours),
		})
	}
	return rows
}

func clockOrNA(t *time.Time, loc *time.Location) string {
	if t == nil {
		return notAvailable
	}
	return t.In(loc).Format("15:04:05")
}

func writeCSV(rows [][]string) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf, nil
}

// exportSheet Excel 工作表名
const exportSheet = "Attendance"

// writeXLSX 生成单工作表的 Excel 文件，首行为加粗表头
func writeXLSX(sheet string, rows [][]string) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("创建工作表失败: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("删除默认工作表失败: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("创建表头样式失败: %w", err)
	}

	for i, title := range exportHeader {
		c, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, c, title); err != nil {
			return nil, fmt.Errorf("写入表头失败: %w", err)
		}
		if err := f.SetCellStyle(sheet, c, c, headerStyle); err != nil {
			return nil, fmt.Errorf("设置表头样式失败: %w", err)
		}
	}
	if err := f.SetColWidth(sheet, "A", "C", 16); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "D", "G", 12); err != nil {
		return nil, err
	}

	for r, row := range rows {
		for i, v := range row {
			c, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return nil, fmt.Errorf("第 %d 行: %w", r+1, err)
			}
			if err := f.SetCellValue(sheet, c, v); err != nil {
				return nil, fmt.Errorf("写入 %s 失败: %w", c, err)
			}
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ────────────────────── Calendar ──────────────────────

func (s *exportService) Calendar(ctx context.Context, userID, employeeID string, q *dto.MonthQuery) (*ExportFile, error) {
	a := s.att

	var owner *model.User
	var err error
	if employeeID != "" {
		owner, err = a.findEmployee(ctx, employeeID)
	} else {
		owner, err = a.currentUser(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	from, to := a.monthRange(q)
	recs, err := a.repo.Attendance.ListByUser(ctx, owner.UserID, from, to)
	if err != nil {
		return nil, a.storeErr("查询月度考勤失败", err)
	}

	body := BuildCalendar(owner, recs, a.now())
	return &ExportFile{
		Data:        bytes.NewBufferString(body),
		Filename:    fmt.Sprintf("attendance-%s-%04d-%02d.ics", owner.EmployeeID, from.Year(), int(from.Month())),
		ContentType: "text/calendar; charset=utf-8",
	}, nil
}

// BuildCalendar 生成 iCalendar 文本
// 已签到记录以签到、签退时间为事件区间；无签到的记录（如 absent）为全天事件
func BuildCalendar(owner *model.User, recs []model.Attendance, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//attendance-tracker//attendance//EN")
	cal.SetXWRCalName(fmt.Sprintf("%s (%s) attendance", owner.Name, owner.EmployeeID))

	for i := range recs {
		rec := &recs[i]

		uid := rec.AttendanceID
		if uid == "" {
			uid = owner.UserID + "-" + rec.DayKey()
		}
		event := cal.AddEvent(uid + "@attendance-tracker")
		event.SetDtStampTime(stamp)
		event.SetSummary(fmt.Sprintf("%s: %s", owner.Name, rec.Status))
		event.SetDescription(fmt.Sprintf("Total hours: %.2f", rec.TotalHours))

		if rec.CheckInTime == nil {
			day := rec.Day()
			event.SetAllDayStartAt(day)
			event.SetAllDayEndAt(calendar.NextDay(day))
			continue
		}
		event.SetStartAt(*rec.CheckInTime)
		if rec.CheckOutTime != nil {
			event.SetEndAt(*rec.CheckOutTime)
		}
	}

	return cal.Serialize()
}
