package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"icbcwatch/internal/monitor"
)

type TelegramConfig struct {
	Token  string
	ChatID int64
}

// Telegram delivers notifications to a single chat. The bot is
// send-only; no poller is started.
type Telegram struct {
	bot        *tele.Bot
	chatID     int64
	bookingURL string
}

func NewTelegram(cfg TelegramConfig, bookingURL string) (*Telegram, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if cfg.ChatID == 0 {
		return nil, errors.New("telegram chat_id is required")
	}
	b, err := tele.NewBot(tele.Settings{Token: cfg.Token})
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &Telegram{bot: b, chatID: cfg.ChatID, bookingURL: bookingURL}, nil
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Send(ctx context.Context, ev monitor.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.bot.Send(tele.ChatID(t.chatID), textBody(ev, t.bookingURL)); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
