// Package config loads and validates the watcher configuration.
//
// Config files may be JSON or YAML; YAML is coerced to JSON so both
// formats share one strict decoder (unknown keys are errors). Secrets
// can be supplied or overridden from the environment instead of the
// file.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	Logging LoggingConfig  `json:"logging"`
	Login   LoginConfig    `json:"login"`
	Booking BookingConfig  `json:"booking"`
	Browser BrowserConfig  `json:"browser"`
	Check   CheckConfig    `json:"check"`
	Notify  NotifyConfig   `json:"notify"`
	Storage *StorageConfig `json:"storage,omitempty"`
}

type LoggingConfig struct {
	Level  string `json:"level,omitempty"`
	Pretty bool   `json:"pretty,omitempty"`
}

// LoginConfig holds the ICBC driver-licence login. All three fields are
// required; each can come from the environment (ICBC_LAST_NAME,
// ICBC_LICENCE_NUMBER, ICBC_KEYWORD) instead of the file.
type LoginConfig struct {
	LastName      string `json:"last_name,omitempty"`
	LicenceNumber string `json:"licence_number,omitempty"`
	Keyword       string `json:"keyword,omitempty"`
}

type BookingConfig struct {
	LicenseType string `json:"license_type,omitempty"`
	// PreferredCenters is an ordered, comma-separated list of test
	// center names, matched as case-insensitive substrings.
	PreferredCenters string `json:"preferred_centers,omitempty"`
	// EarliestDate is the inclusive ISO lower bound ("2006-01-02").
	EarliestDate string `json:"earliest_date"`
	LoginURL     string `json:"login_url,omitempty"`
	BookingURL   string `json:"booking_url,omitempty"`
}

type BrowserConfig struct {
	Headless *bool `json:"headless,omitempty"`
	// Timeout is a Go duration string (e.g. "30s") bounding page loads.
	Timeout   string `json:"timeout,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	// ActionsPerMinute paces page interactions. 0 keeps the default.
	ActionsPerMinute int `json:"actions_per_minute,omitempty"`
}

type CheckConfig struct {
	// Schedule accepts a Go duration ("10m"), bare minutes ("10"),
	// HH:MM ("01:30") or a cron expression ("*/10 * * * *").
	Schedule string `json:"schedule,omitempty"`
}

type NotifyConfig struct {
	// Method selects the channel: console (default), email, sms or
	// telegram.
	Method   string          `json:"method,omitempty"`
	Email    *EmailConfig    `json:"email,omitempty"`
	SMS      *SMSConfig      `json:"sms,omitempty"`
	Telegram *TelegramConfig `json:"telegram,omitempty"`
}

type EmailConfig struct {
	Sender string `json:"sender"`
	// Password can come from EMAIL_PASSWORD instead of the file.
	Password   string `json:"password,omitempty"`
	Recipient  string `json:"recipient"`
	SMTPServer string `json:"smtp_server,omitempty"` // default smtp.gmail.com
	SMTPPort   int    `json:"smtp_port,omitempty"`   // default 587
}

type SMSConfig struct {
	AccountSID string `json:"account_sid"`
	// AuthToken can come from TWILIO_AUTH_TOKEN instead of the file.
	AuthToken string `json:"auth_token,omitempty"`
	From      string `json:"from"`
	To        string `json:"to"`
}

type TelegramConfig struct {
	// Token can come from TELEGRAM_TOKEN instead of the file.
	Token  string `json:"token,omitempty"`
	ChatID int64  `json:"chat_id"`
}

type StorageConfig struct {
	Driver string `json:"driver,omitempty"` // memory (default) | sqlite
	Path   string `json:"path,omitempty"`
	// BusyTimeout is a Go duration string (sqlite only).
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

const (
	defaultLoginURL    = "https://onlinebusiness.icbc.com/webdeas-ui/login;type=driver"
	defaultBookingURL  = "https://onlinebusiness.icbc.com/web/guest/road-test-booking"
	defaultLicenseType = "N"
	defaultCenters     = "Downtown,Richmond,Burnaby,Victoria"
	defaultSchedule    = "10m"
)

// Load reads, decodes, applies environment overrides and defaults, and
// validates the configuration. Any failure here is fatal to startup;
// the polling loop never runs on a bad config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	jsonBytes, format, err := coerceToJSONBytes(path, data)
	if err != nil {
		return nil, fmt.Errorf("decode %s config: %w", format, err)
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(jsonBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode %s config: %w", format, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	override(&c.Login.LastName, "ICBC_LAST_NAME")
	override(&c.Login.LicenceNumber, "ICBC_LICENCE_NUMBER")
	override(&c.Login.Keyword, "ICBC_KEYWORD")
	if c.Notify.Email != nil {
		override(&c.Notify.Email.Password, "EMAIL_PASSWORD")
	}
	if c.Notify.SMS != nil {
		override(&c.Notify.SMS.AuthToken, "TWILIO_AUTH_TOKEN")
	}
	if c.Notify.Telegram != nil {
		override(&c.Notify.Telegram.Token, "TELEGRAM_TOKEN")
	}
}

func override(dst *string, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		*dst = v
	}
}

func (c *Config) applyDefaults() {
	if c.Booking.LicenseType == "" {
		c.Booking.LicenseType = defaultLicenseType
	}
	if strings.TrimSpace(c.Booking.PreferredCenters) == "" {
		c.Booking.PreferredCenters = defaultCenters
	}
	if c.Booking.LoginURL == "" {
		c.Booking.LoginURL = defaultLoginURL
	}
	if c.Booking.BookingURL == "" {
		c.Booking.BookingURL = defaultBookingURL
	}
	if strings.TrimSpace(c.Check.Schedule) == "" {
		c.Check.Schedule = defaultSchedule
	}
	if c.Notify.Method == "" {
		c.Notify.Method = "console"
	}
}

// PreferredCenters returns the ordered center list parsed from its
// comma-separated raw form.
func (c *Config) PreferredCenters() []string {
	parts := strings.Split(c.Booking.PreferredCenters, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// EarliestDate returns the parsed inclusive lower bound.
func (c *Config) EarliestDate() (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(c.Booking.EarliestDate))
	if err != nil {
		return time.Time{}, fmt.Errorf("booking.earliest_date: invalid date %q (want YYYY-MM-DD)", c.Booking.EarliestDate)
	}
	return t, nil
}
