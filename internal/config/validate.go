package config

import (
	"fmt"
	"strings"

	"icbcwatch/internal/monitor"
)

// Validate checks everything the process needs before the first cycle.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Login.LastName) == "" {
		missing = append(missing, "login.last_name (or ICBC_LAST_NAME)")
	}
	if strings.TrimSpace(c.Login.LicenceNumber) == "" {
		missing = append(missing, "login.licence_number (or ICBC_LICENCE_NUMBER)")
	}
	if strings.TrimSpace(c.Login.Keyword) == "" {
		missing = append(missing, "login.keyword (or ICBC_KEYWORD)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if len(c.PreferredCenters()) == 0 {
		return fmt.Errorf("booking.preferred_centers: at least one center is required")
	}
	if _, err := c.EarliestDate(); err != nil {
		return err
	}
	if _, err := monitor.ParseSchedule(c.Check.Schedule); err != nil {
		return fmt.Errorf("check.schedule: %w", err)
	}
	if _, err := ParseDurationField("browser.timeout", c.Browser.Timeout); err != nil {
		return err
	}
	if c.Browser.ActionsPerMinute < 0 {
		return fmt.Errorf("browser.actions_per_minute must be >= 0")
	}

	if err := c.validateNotify(); err != nil {
		return err
	}

	if c.Storage != nil {
		switch strings.ToLower(strings.TrimSpace(c.Storage.Driver)) {
		case "", "memory":
		case "sqlite", "sqlite3":
			if strings.TrimSpace(c.Storage.Path) == "" {
				return fmt.Errorf("storage.path is required for the sqlite driver")
			}
			if _, err := ParseDurationField("storage.busy_timeout", c.Storage.BusyTimeout); err != nil {
				return err
			}
		default:
			return fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver)
		}
	}
	return nil
}

func (c *Config) validateNotify() error {
	switch strings.ToLower(strings.TrimSpace(c.Notify.Method)) {
	case "console":
		return nil
	case "email":
		e := c.Notify.Email
		if e == nil {
			return fmt.Errorf("notify.email section is required for method email")
		}
		for _, f := range []struct{ name, val string }{
			{"notify.email.sender", e.Sender},
			{"notify.email.password (or EMAIL_PASSWORD)", e.Password},
			{"notify.email.recipient", e.Recipient},
		} {
			if strings.TrimSpace(f.val) == "" {
				return fmt.Errorf("email notification requires %s", f.name)
			}
		}
		return nil
	case "sms":
		s := c.Notify.SMS
		if s == nil {
			return fmt.Errorf("notify.sms section is required for method sms")
		}
		for _, f := range []struct{ name, val string }{
			{"notify.sms.account_sid", s.AccountSID},
			{"notify.sms.auth_token (or TWILIO_AUTH_TOKEN)", s.AuthToken},
			{"notify.sms.from", s.From},
			{"notify.sms.to", s.To},
		} {
			if strings.TrimSpace(f.val) == "" {
				return fmt.Errorf("sms notification requires %s", f.name)
			}
		}
		return nil
	case "telegram":
		t := c.Notify.Telegram
		if t == nil {
			return fmt.Errorf("notify.telegram section is required for method telegram")
		}
		if strings.TrimSpace(t.Token) == "" {
			return fmt.Errorf("telegram notification requires notify.telegram.token (or TELEGRAM_TOKEN)")
		}
		if t.ChatID == 0 {
			return fmt.Errorf("telegram notification requires notify.telegram.chat_id")
		}
		return nil
	default:
		return fmt.Errorf("notify.method: unknown method %q (use console, email, sms or telegram)", c.Notify.Method)
	}
}
