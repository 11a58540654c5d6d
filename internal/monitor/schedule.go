package monitor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Schedule decides how long to wait between check cycles. Two kinds
// are supported: a fixed interval (the delay starts after the previous
// cycle finishes, so slow cycles drift rather than overlap) and a cron
// expression (the next fire time after the previous cycle finishes).
type Schedule struct {
	every time.Duration
	cron  cron.Schedule
	// Source records how the schedule string was interpreted:
	// "duration" | "minutes" | "hhmm" | "cron".
	Source string
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

var (
	reHHMM    = regexp.MustCompile(`^\s*(\d{1,3}):(\d{2})\s*$`)
	reMinutes = regexp.MustCompile(`^\s*(\d+)\s*$`)
)

// ParseSchedule parses a check-schedule string.
//
// Supported forms:
//   - Go duration: "10m", "1h30m"
//   - bare integer minutes: "10"
//   - HH:MM interval: "01:30" (one hour thirty minutes)
//   - cron (crontab.guru-style): "*/10 * * * *", "@hourly"
//
// Cron expressions are validated here so a bad schedule fails at
// startup, not on the first cycle.
func ParseSchedule(raw string) (Schedule, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Schedule{}, fmt.Errorf("schedule required")
	}

	// Whitespace or a leading '@' means cron.
	if strings.ContainsAny(s, " \t") || strings.HasPrefix(s, "@") {
		sched, err := cronParser.Parse(s)
		if err != nil {
			return Schedule{}, fmt.Errorf("invalid cron schedule %q: %w", raw, err)
		}
		return Schedule{cron: sched, Source: "cron"}, nil
	}

	if m := reMinutes.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return Schedule{}, fmt.Errorf("interval minutes must be > 0, got %q", raw)
		}
		return Schedule{every: time.Duration(n) * time.Minute, Source: "minutes"}, nil
	}

	if m := reHHMM.FindStringSubmatch(s); m != nil {
		hh, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		if mm > 59 {
			return Schedule{}, fmt.Errorf("invalid minutes in %q", raw)
		}
		d := time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute
		if d <= 0 {
			return Schedule{}, fmt.Errorf("interval must be > 0")
		}
		return Schedule{every: d, Source: "hhmm"}, nil
	}

	if d, err := time.ParseDuration(s); err == nil {
		if d <= 0 {
			return Schedule{}, fmt.Errorf("interval must be > 0")
		}
		return Schedule{every: d, Source: "duration"}, nil
	}

	return Schedule{}, fmt.Errorf(
		"invalid schedule %q (use a duration like '10m', minutes like '10', HH:MM like '01:30', or cron like '*/10 * * * *')",
		raw,
	)
}

// Wait returns the delay until the next cycle should start, measured
// from now (the end of the previous cycle).
func (s Schedule) Wait(now time.Time) time.Duration {
	if s.cron != nil {
		d := s.cron.Next(now).Sub(now)
		if d < 0 {
			d = 0
		}
		return d
	}
	return s.every
}

func (s Schedule) String() string {
	if s.cron != nil {
		return "cron"
	}
	return s.every.String()
}
