package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"icbcwatch/internal/config"
	"icbcwatch/internal/dispatch"
	"icbcwatch/internal/extractor"
	"icbcwatch/internal/logging"
	"icbcwatch/internal/monitor"
	"icbcwatch/internal/seenstore"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "./config.yaml", "path to config yaml/json")
	once := flag.Bool("once", false, "run a single check cycle and exit")
	test := flag.Bool("test", false, "send a sample notification and exit")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}

	log := logging.New(logging.Config{Level: cfg.Logging.Level, Pretty: cfg.Logging.Pretty})

	dispatcher, err := dispatch.NewFromConfig(dispatch.Config{
		Method:     cfg.Notify.Method,
		BookingURL: cfg.Booking.BookingURL,
		Email:      emailConfig(cfg),
		SMS:        smsConfig(cfg),
		Telegram:   telegramConfig(cfg),
	}, log)
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}

	if *test {
		runTest(ctx, cfg, dispatcher)
		return
	}

	// Validated at config load; errors are impossible here.
	earliest, _ := cfg.EarliestDate()
	schedule, _ := monitor.ParseSchedule(cfg.Check.Schedule)
	pageTimeout, _ := config.ParseDurationOrDefault("browser.timeout", cfg.Browser.Timeout, 30*time.Second)

	log.Info().
		Str("license_type", cfg.Booking.LicenseType).
		Strs("centers", cfg.PreferredCenters()).
		Str("earliest_date", cfg.Booking.EarliestDate).
		Str("method", cfg.Notify.Method).
		Str("schedule", cfg.Check.Schedule).
		Msg("starting appointment watcher")

	store, err := seenstore.Open(storeConfig(cfg), log)
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}
	defer store.Close()

	headless := true
	if cfg.Browser.Headless != nil {
		headless = *cfg.Browser.Headless
	}
	browser := extractor.NewBrowser(extractor.Config{
		LoginURL:         cfg.Booking.LoginURL,
		BookingURL:       cfg.Booking.BookingURL,
		LastName:         cfg.Login.LastName,
		LicenceNumber:    cfg.Login.LicenceNumber,
		Keyword:          cfg.Login.Keyword,
		LicenseType:      cfg.Booking.LicenseType,
		PreferredCenters: cfg.PreferredCenters(),
		Headless:         headless,
		Timeout:          pageTimeout,
		UserAgent:        cfg.Browser.UserAgent,
		ActionsPerMinute: cfg.Browser.ActionsPerMinute,
	}, log)

	policy := monitor.Policy{PreferredLocations: cfg.PreferredCenters(), EarliestDate: earliest}
	filter := monitor.NewFilter(policy, log)
	tracker := monitor.NewTracker(store, log)
	checker := monitor.NewChecker(browser, filter, tracker, dispatcher, schedule, log)

	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	defer func() { _, _ = daemon.SdNotify(false, daemon.SdNotifyStopping) }()

	if *once {
		sum := checker.RunOnce(ctx)
		if sum.ExtractFailed {
			os.Exit(1)
		}
		return
	}

	_ = checker.Run(ctx)
}

// runTest pushes a sample event through the configured channel without
// touching the booking site.
func runTest(ctx context.Context, cfg *config.Config, dispatcher *dispatch.Dispatcher) {
	ev := monitor.Event{
		Appointment: monitor.Appointment{
			Date:        "Thursday, January 22nd, 2026",
			Time:        "10:30 AM",
			Location:    "Downtown ICBC Office",
			LicenseType: cfg.Booking.LicenseType,
		},
		FoundAt: time.Now(),
	}
	if !dispatcher.Dispatch(ctx, ev) {
		fmt.Println("test notification failed")
		os.Exit(1)
	}
	fmt.Println("test notification sent")
}

func emailConfig(cfg *config.Config) *dispatch.EmailConfig {
	e := cfg.Notify.Email
	if e == nil {
		return nil
	}
	return &dispatch.EmailConfig{
		Sender:     e.Sender,
		Password:   e.Password,
		Recipient:  e.Recipient,
		SMTPServer: e.SMTPServer,
		SMTPPort:   e.SMTPPort,
	}
}

func smsConfig(cfg *config.Config) *dispatch.SMSConfig {
	s := cfg.Notify.SMS
	if s == nil {
		return nil
	}
	return &dispatch.SMSConfig{AccountSID: s.AccountSID, AuthToken: s.AuthToken, From: s.From, To: s.To}
}

func telegramConfig(cfg *config.Config) *dispatch.TelegramConfig {
	t := cfg.Notify.Telegram
	if t == nil {
		return nil
	}
	return &dispatch.TelegramConfig{Token: t.Token, ChatID: t.ChatID}
}

func storeConfig(cfg *config.Config) seenstore.Config {
	if cfg.Storage == nil {
		return seenstore.Config{Driver: "memory"}
	}
	busy, _ := config.ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout)
	return seenstore.Config{Driver: cfg.Storage.Driver, Path: cfg.Storage.Path, BusyTimeout: busy}
}
