// Package dispatch delivers appointment events through one configured
// notification channel. The channel set is closed: console, email, sms
// and telegram, selected by configuration — this is not a plugin
// surface.
package dispatch

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"

	"icbcwatch/internal/monitor"
)

// Channel is one notification transport. Send makes exactly one
// delivery attempt and returns any transport error; it must not retry.
type Channel interface {
	Name() string
	Send(ctx context.Context, ev monitor.Event) error
}

// Dispatcher wraps the configured channel and converts every transport
// failure (or panic) into a false result at the boundary, so delivery
// problems never propagate into the cycle loop. It makes no retries
// and guarantees no idempotence: calling it twice sends twice. The
// novelty tracker upstream is what keeps events from repeating.
type Dispatcher struct {
	ch  Channel
	log zerolog.Logger
}

func New(ch Channel, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{ch: ch, log: log.With().Str("component", "dispatch").Str("channel", ch.Name()).Logger()}
}

// Dispatch delivers one event and reports whether delivery succeeded.
func (d *Dispatcher) Dispatch(ctx context.Context, ev monitor.Event) (delivered bool) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Interface("panic", r).Str("stack", string(debug.Stack())).Msg("panic in notification channel")
			delivered = false
		}
	}()

	if err := d.ch.Send(ctx, ev); err != nil {
		d.log.Warn().Err(err).Str("date", ev.Date).Str("time", ev.Time).Msg("notification delivery failed")
		return false
	}
	d.log.Info().Str("date", ev.Date).Str("time", ev.Time).Str("location", ev.Location).Msg("notification delivered")
	return true
}

// Config selects and configures the notification channel.
type Config struct {
	Method     string
	BookingURL string

	Email    *EmailConfig
	SMS      *SMSConfig
	Telegram *TelegramConfig
}

// NewFromConfig builds the dispatcher for the configured method.
func NewFromConfig(cfg Config, log zerolog.Logger) (*Dispatcher, error) {
	var (
		ch  Channel
		err error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Method)) {
	case "", "console":
		ch = NewConsole(nil)
	case "email":
		if cfg.Email == nil {
			return nil, fmt.Errorf("notify method email requires an email section")
		}
		ch = NewEmail(*cfg.Email, cfg.BookingURL)
	case "sms":
		if cfg.SMS == nil {
			return nil, fmt.Errorf("notify method sms requires an sms section")
		}
		ch = NewSMS(*cfg.SMS, cfg.BookingURL)
	case "telegram":
		if cfg.Telegram == nil {
			return nil, fmt.Errorf("notify method telegram requires a telegram section")
		}
		ch, err = NewTelegram(*cfg.Telegram, cfg.BookingURL)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown notify method %q", cfg.Method)
	}
	return New(ch, log), nil
}
