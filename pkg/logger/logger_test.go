package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"attendance-tracker/backend/config"
)

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger(&config.LogConfig{Level: "loud", Format: "json"})
	if err == nil {
		t.Fatal("无效级别应返回错误")
	}
}

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	logger, err := NewLogger(&config.LogConfig{Level: "warn", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("NewLogger 应成功: %v", err)
	}
	logger.Info("被级别过滤")
	logger.Warn("签到异常", zap.String("employee_id", "EMP002"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取日志文件失败: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("期望 1 行日志，实际 %d: %q", len(lines), data)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("日志应为 JSON: %v", err)
	}
	if entry["service"] != serviceName || entry["employee_id"] != "EMP002" {
		t.Errorf("字段不符: %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Error("缺少 ts 字段")
	}
}

func TestNewLogger_BadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "app.log")
	if _, err := NewLogger(&config.LogConfig{Level: "info", Output: path}); err == nil {
		t.Error("不存在的目录应返回错误")
	}
}
