package service

import (
	"context"
	"testing"

	"attendance-tracker/backend/internal/model"
)

func setupDashboardTest() (*dashboardService, *attendanceFixture) {
	f := setupAttendanceTest()
	return &dashboardService{att: f.svc}, f
}

func TestDashboard_WeeklyTrend(t *testing.T) {
	svc, f := setupDashboardTest()
	f.seedRecord("u-alice", testDay, model.StatusPresent, 8)
	f.seedRecord("u-bob", testDay, model.StatusHalfDay, 3)
	f.seedRecord("u-alice", testDay.AddDate(0, 0, -2), model.StatusLate, 8)
	f.atts.put(model.Attendance{UserID: "u-bob", Date: dateOf(testDay.AddDate(0, 0, -2)), Status: model.StatusAbsent})
	// 窗口之外
	f.seedRecord("u-alice", testDay.AddDate(0, 0, -7), model.StatusPresent, 8)

	trend, err := svc.weeklyTrend(context.Background(), testDay)
	if err != nil {
		t.Fatalf("weeklyTrend 应成功: %v", err)
	}
	if len(trend) != 7 {
		t.Fatalf("期望 7 个桶，实际 %d", len(trend))
	}
	if trend[0].Date != "2026-10-08" || trend[6].Date != "2026-10-14" {
		t.Errorf("期望 2026-10-08 ~ 2026-10-14 升序，实际 %s ~ %s", trend[0].Date, trend[6].Date)
	}
	if trend[6].Present != 2 || trend[6].Absent != 0 {
		t.Errorf("今天应为 present=2 absent=0，实际 %+v", trend[6])
	}
	if trend[4].Present != 1 || trend[4].Absent != 1 {
		t.Errorf("10-12 应为 present=1 absent=1，实际 %+v", trend[4])
	}
	if trend[1].Present != 0 || trend[1].Absent != 0 {
		t.Errorf("无记录的日期应补零，实际 %+v", trend[1])
	}
}

func TestDashboard_Manager(t *testing.T) {
	svc, f := setupDashboardTest()
	ctx := context.Background()

	f.clock.set(9, 10)
	_, _ = f.svc.CheckIn(ctx, "u-alice")
	f.clock.set(9, 50)
	_, _ = f.svc.CheckIn(ctx, "u-bob")
	<-f.notifier.events
	f.seedRecord("u-carol", testDay.AddDate(0, 0, -1), model.StatusPresent, 8)

	resp, err := svc.Manager(ctx)
	if err != nil {
		t.Fatalf("Manager 应成功: %v", err)
	}
	if resp.TotalEmployees != 3 {
		t.Errorf("期望员工总数 3，实际 %d", resp.TotalEmployees)
	}
	if resp.Today.Present != 2 || resp.Today.Late != 1 || resp.Today.Absent != 1 {
		t.Errorf("今日统计不符: %+v", resp.Today)
	}
	if len(resp.LateEmployees) != 1 || resp.LateEmployees[0].EmployeeID != "EMP003" {
		t.Errorf("迟到名单不符: %+v", resp.LateEmployees)
	}
	if resp.LateEmployees[0].CheckInTime == "" {
		t.Error("迟到名单应包含签到时间")
	}
	if len(resp.AbsentEmployees) != 1 || resp.AbsentEmployees[0].EmployeeID != "EMP004" {
		t.Errorf("缺勤名单不符: %+v", resp.AbsentEmployees)
	}
	if len(resp.WeeklyTrend) != 7 {
		t.Errorf("周趋势应有 7 天，实际 %d", len(resp.WeeklyTrend))
	}
	// carol 无部门，不进入部门统计
	if len(resp.DepartmentSummary) != 1 || resp.DepartmentSummary[0].Department != "Engineering" {
		t.Fatalf("部门统计不符: %+v", resp.DepartmentSummary)
	}
	if eng := resp.DepartmentSummary[0]; eng.Present != 1 || eng.Late != 1 || eng.Total != 2 {
		t.Errorf("Engineering 统计不符: %+v", eng)
	}
}

func TestDashboard_Employee(t *testing.T) {
	svc, f := setupDashboardTest()
	ctx := context.Background()

	for i := 1; i <= 8; i++ {
		f.seedRecord("u-alice", testDay.AddDate(0, 0, -i), model.StatusPresent, 8)
	}
	f.clock.set(9, 0)
	_, _ = f.svc.CheckIn(ctx, "u-alice")

	resp, err := svc.Employee(ctx, "u-alice")
	if err != nil {
		t.Fatalf("Employee 应成功: %v", err)
	}
	if !resp.Today.CheckedIn || resp.Today.CheckedOut {
		t.Errorf("今日状态不符: %+v", resp.Today)
	}
	if resp.Today.Status != model.StatusPresent {
		t.Errorf("期望 present，实际 %s", resp.Today.Status)
	}
	// 近 7 天（含今天）
	if len(resp.Recent) != 7 {
		t.Errorf("期望近期 7 条，实际 %d", len(resp.Recent))
	}
	if resp.Recent[0].Date != "2026-10-14" {
		t.Errorf("近期记录应按日期倒序，首条 %s", resp.Recent[0].Date)
	}
	// 10 月 1 日至今：8 条历史 + 今天
	if resp.MonthSummary.Present != 9 {
		t.Errorf("期望当月 present=9，实际 %d", resp.MonthSummary.Present)
	}
}

func TestDashboard_EmployeeNotCheckedIn(t *testing.T) {
	svc, _ := setupDashboardTest()

	resp, err := svc.Employee(context.Background(), "u-carol")
	if err != nil {
		t.Fatalf("Employee 应成功: %v", err)
	}
	if resp.Today.CheckedIn || resp.Today.Record != nil {
		t.Error("未签到时不应有今日记录")
	}
	if len(resp.Recent) != 0 {
		t.Errorf("期望无近期记录，实际 %d", len(resp.Recent))
	}
}
