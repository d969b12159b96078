// Package notify 发送迟到提醒。未配置 Telegram 时使用 Nop，不影响签到流程。
package notify

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"attendance-tracker/backend/config"
)

// LateArrival 一次迟到签到的通知内容
type LateArrival struct {
	Name        string
	EmployeeID  string
	Department  string
	CheckInTime time.Time
}

// Notifier 迟到通知接口
type Notifier interface {
	NotifyLate(ctx context.Context, ev LateArrival) error
}

// Nop 空实现
type Nop struct{}

// NotifyLate 不做任何事
func (Nop) NotifyLate(context.Context, LateArrival) error { return nil }

// Telegram 通过 Telegram Bot 向管理群推送迟到提醒
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	loc    *time.Location
	logger *zap.Logger
}

// New 根据配置创建通知器；token 或 chat id 为空时返回 Nop
func New(cfg *config.NotifyConfig, loc *time.Location, logger *zap.Logger) (Notifier, error) {
	if cfg.TelegramToken == "" || cfg.TelegramChatID == 0 {
		return Nop{}, nil
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("初始化 Telegram Bot 失败: %w", err)
	}

	logger.Info("Telegram 迟到通知已启用", zap.String("bot", bot.Self.UserName))
	return &Telegram{bot: bot, chatID: cfg.TelegramChatID, loc: loc, logger: logger}, nil
}

// NotifyLate 发送迟到提醒
func (t *Telegram) NotifyLate(_ context.Context, ev LateArrival) error {
	msg := tgbotapi.NewMessage(t.chatID, FormatLateMessage(ev, t.loc))
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("发送 Telegram 消息失败: %w", err)
	}
	return nil
}

// FormatLateMessage 生成迟到提醒文本
func FormatLateMessage(ev LateArrival, loc *time.Location) string {
	dept := ev.Department
	if dept == "" {
		dept = "N/A"
	}
	return fmt.Sprintf("⚠️ *Late arrival*\n👤 `%s` (%s)\n🏢 %s\n🕐 `%s`",
		ev.Name, ev.EmployeeID, dept, ev.CheckInTime.In(loc).Format("15:04:05"))
}
