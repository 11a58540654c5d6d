package dispatch

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"icbcwatch/internal/monitor"
)

type EmailConfig struct {
	Sender     string
	Password   string
	Recipient  string
	SMTPServer string
	SMTPPort   int
}

// Email delivers notifications over SMTP with STARTTLS.
type Email struct {
	cfg        EmailConfig
	bookingURL string
}

func NewEmail(cfg EmailConfig, bookingURL string) *Email {
	if cfg.SMTPServer == "" {
		cfg.SMTPServer = "smtp.gmail.com"
	}
	if cfg.SMTPPort == 0 {
		cfg.SMTPPort = 587
	}
	return &Email{cfg: cfg, bookingURL: bookingURL}
}

func (e *Email) Name() string { return "email" }

func (e *Email) Send(_ context.Context, ev monitor.Event) error {
	m := gomail.NewMessage()
	m.SetHeader("From", e.cfg.Sender)
	m.SetHeader("To", e.cfg.Recipient)
	m.SetHeader("Subject", subjectLine)
	m.SetBody("text/html", htmlBody(ev, e.bookingURL))

	d := gomail.NewDialer(e.cfg.SMTPServer, e.cfg.SMTPPort, e.cfg.Sender, e.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
