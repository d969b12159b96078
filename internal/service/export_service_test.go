package service

import (
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"attendance-tracker/backend/internal/dto"
	"attendance-tracker/backend/internal/model"
)

// ── 测试辅助 ──

func setupExportTest() (*exportService, *attendanceFixture) {
	f := setupAttendanceTest()
	return &exportService{att: f.svc}, f
}

func readCSV(t *testing.T, file *ExportFile) [][]string {
	t.Helper()
	rows, err := csv.NewReader(strings.NewReader(file.Data.String())).ReadAll()
	if err != nil {
		t.Fatalf("解析 CSV 失败: %v", err)
	}
	return rows
}

// ── ExportRecords 测试 ──

func TestExportRecords_CSV(t *testing.T) {
	svc, f := setupExportTest()
	f.seedRecord("u-alice", testDay.AddDate(0, 0, -1), model.StatusPresent, 8.5)

	file, err := svc.ExportRecords(context.Background(), &dto.ExportQuery{})
	if err != nil {
		t.Fatalf("ExportRecords 应成功: %v", err)
	}
	if file.Filename != "attendance-report.csv" {
		t.Errorf("期望文件名 attendance-report.csv，实际 %s", file.Filename)
	}

	rows := readCSV(t, file)
	if len(rows) != 2 {
		t.Fatalf("期望表头 + 1 行，实际 %d 行", len(rows))
	}
	if strings.Join(rows[0], ",") != "EmployeeID,Name,Department,Date,CheckIn,CheckOut,Status,TotalHours" {
		t.Errorf("表头不符: %v", rows[0])
	}
	want := []string{"EMP002", "Alice Johnson", "Engineering", "2026-10-13", "09:00:00", "17:30:00", "present", "8.50"}
	if strings.Join(rows[1], ",") != strings.Join(want, ",") {
		t.Errorf("期望 %v，实际 %v", want, rows[1])
	}
}

func TestExportRows_NotAvailable(t *testing.T) {
	in := time.Date(2026, 10, 14, 9, 5, 0, 0, time.UTC)
	recs := []model.Attendance{
		// 无关联员工、无签退
		{UserID: "ghost", Date: dateOf(testDay), CheckInTime: &in, Status: model.StatusPresent},
		// 有员工但无部门
		{UserID: "u-carol", Date: dateOf(testDay), Status: model.StatusAbsent, User: &model.User{EmployeeID: "EMP004", Name: "Carol Williams"}},
	}

	rows := ExportRows(recs, time.UTC)

	if got := strings.Join(rows[0], ","); got != "N/A,N/A,N/A,2026-10-14,09:05:00,N/A,present,0.00" {
		t.Errorf("缺失员工与签退时应填 N/A，实际 %s", got)
	}
	if got := strings.Join(rows[1], ","); got != "EMP004,Carol Williams,N/A,2026-10-14,N/A,N/A,absent,0.00" {
		t.Errorf("缺失部门与签到时应填 N/A，实际 %s", got)
	}
}

func TestExportRecords_EmployeeFilter(t *testing.T) {
	svc, f := setupExportTest()
	f.seedRecord("u-alice", testDay.AddDate(0, 0, -1), model.StatusPresent, 8)
	f.seedRecord("u-bob", testDay.AddDate(0, 0, -1), model.StatusPresent, 8)

	file, err := svc.ExportRecords(context.Background(), &dto.ExportQuery{EmployeeID: "EMP003", StartDate: "2026-10-13", EndDate: "2026-10-13"})
	if err != nil {
		t.Fatalf("ExportRecords 应成功: %v", err)
	}
	rows := readCSV(t, file)
	if len(rows) != 2 || rows[1][0] != "EMP003" {
		t.Errorf("期望只导出 EMP003，实际 %v", rows)
	}
}

func TestExportRecords_XLSX(t *testing.T) {
	svc, f := setupExportTest()
	f.seedRecord("u-alice", testDay.AddDate(0, 0, -1), model.StatusLate, 7.25)

	file, err := svc.ExportRecords(context.Background(), &dto.ExportQuery{Format: FormatXLSX})
	if err != nil {
		t.Fatalf("ExportRecords(xlsx) 应成功: %v", err)
	}
	if !strings.HasSuffix(file.Filename, ".xlsx") {
		t.Errorf("期望 .xlsx 文件名，实际 %s", file.Filename)
	}

	xf, err := excelize.OpenReader(file.Data)
	if err != nil {
		t.Fatalf("打开 Excel 失败: %v", err)
	}
	defer xf.Close()

	rows, err := xf.GetRows("Attendance")
	if err != nil {
		t.Fatalf("读取 Sheet 失败: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("期望 2 行，实际 %d", len(rows))
	}
	if rows[1][0] != "EMP002" || rows[1][7] != "7.25" {
		t.Errorf("数据行不符: %v", rows[1])
	}
}

func TestWriteXLSX_Errors(t *testing.T) {
	// 工作表名超过 31 个字符
	if _, err := writeXLSX(strings.Repeat("x", 32), nil); err == nil {
		t.Error("非法工作表名应返回错误")
	}

	// 列数超过 Excel 上限
	wide := [][]string{make([]string, excelize.MaxColumns+1)}
	if _, err := writeXLSX(exportSheet, wide); err == nil {
		t.Error("超出列上限应返回错误")
	}

	buf, err := writeXLSX(exportSheet, [][]string{{"EMP002", "Alice"}})
	if err != nil {
		t.Fatalf("正常数据应成功: %v", err)
	}
	xf, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("打开 Excel 失败: %v", err)
	}
	defer xf.Close()
	if sheets := xf.GetSheetList(); len(sheets) != 1 || sheets[0] != exportSheet {
		t.Errorf("期望仅含 %s 工作表，实际 %v", exportSheet, sheets)
	}
	header, _ := xf.GetCellValue(exportSheet, "H1")
	if header != "TotalHours" {
		t.Errorf("表头 H1 期望 TotalHours，实际 %q", header)
	}
}

func TestExportRecords_StoreUnavailable(t *testing.T) {
	svc, f := setupExportTest()
	f.atts.err = errors.New("timeout")

	_, err := svc.ExportRecords(context.Background(), &dto.ExportQuery{})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("期望 ErrStoreUnavailable，实际: %v", err)
	}
}

// ── Calendar 测试 ──

func TestCalendar_Own(t *testing.T) {
	svc, f := setupExportTest()
	f.seedRecord("u-alice", testDay.AddDate(0, 0, -1), model.StatusPresent, 8)
	f.atts.put(model.Attendance{UserID: "u-alice", Date: dateOf(testDay.AddDate(0, 0, -2)), Status: model.StatusAbsent})

	file, err := svc.Calendar(context.Background(), "u-alice", "", nil)
	if err != nil {
		t.Fatalf("Calendar 应成功: %v", err)
	}
	body := file.Data.String()
	if n := strings.Count(body, "BEGIN:VEVENT"); n != 2 {
		t.Errorf("期望 2 个事件，实际 %d", n)
	}
	if !strings.Contains(body, "Alice Johnson: present") {
		t.Error("事件摘要应包含状态")
	}
	if file.Filename != "attendance-EMP002-2026-10.ics" {
		t.Errorf("文件名不符: %s", file.Filename)
	}
}

func TestCalendar_UnknownEmployee(t *testing.T) {
	svc, _ := setupExportTest()

	_, err := svc.Calendar(context.Background(), "u-mgr", "EMP999", nil)
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Errorf("期望 ErrEmployeeNotFound，实际: %v", err)
	}
}
