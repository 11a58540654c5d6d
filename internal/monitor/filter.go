package monitor

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Filter decides whether a raw candidate satisfies the acceptance
// policy. The filter is deliberately lenient: when a field cannot be
// parsed with confidence it accepts rather than rejects, so a garbled
// page never hides a real opening. The single hard requirement is a
// usable time of day, because a slot without a time cannot be booked.
type Filter struct {
	policy Policy
	log    zerolog.Logger
}

func NewFilter(policy Policy, log zerolog.Logger) *Filter {
	return &Filter{policy: policy, log: log.With().Str("component", "filter").Logger()}
}

// Evaluate reports whether the candidate is suitable under the policy.
func (f *Filter) Evaluate(c RawCandidate) bool {
	if !looksLikeTime(c.Time) {
		f.log.Debug().Str("time", c.Time).Msg("candidate rejected: no usable time")
		return false
	}

	if loc := strings.TrimSpace(c.Location); loc != "" {
		if !matchesAnyLocation(loc, f.policy.PreferredLocations) {
			f.log.Debug().Str("location", loc).Msg("candidate rejected: location not preferred")
			return false
		}
	}

	switch parsed, outcome := ParseSlotDate(c.Date); outcome {
	case DateParsed:
		if parsed.Before(f.policy.EarliestDate) {
			f.log.Debug().Str("date", c.Date).Time("earliest", f.policy.EarliestDate).Msg("candidate rejected: slot too early")
			return false
		}
	case DateUnparsed:
		// Fail open: an unreadable date must never suppress a real slot.
		f.log.Debug().Str("date", c.Date).Msg("unparsable slot date, accepting")
	case DateAbsent:
	}

	return true
}

// looksLikeTime is the eligibility gate for a candidate's time field:
// non-empty and carrying an am/pm marker.
func looksLikeTime(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return false
	}
	return strings.Contains(s, "am") || strings.Contains(s, "pm")
}

func matchesAnyLocation(location string, preferred []string) bool {
	loc := strings.ToLower(location)
	for _, p := range preferred {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" && strings.Contains(loc, p) {
			return true
		}
	}
	return false
}

// DateOutcome tags the result of parsing a slot's free-text date, so
// "no date present" and "date present but unreadable" stay distinct.
type DateOutcome int

const (
	DateAbsent DateOutcome = iota
	DateParsed
	DateUnparsed
)

// reSlotDate matches the booking page's long date form, e.g.
// "Thursday, January 22nd, 2026". The ordinal suffix is optional.
var reSlotDate = regexp.MustCompile(`^\s*([A-Za-z]+),\s*([A-Za-z]+)\s+(\d{1,2})(?:st|nd|rd|th)?,\s*(\d{4})\s*$`)

var monthNumbers = map[string]time.Month{
	"january":   time.January,
	"february":  time.February,
	"march":     time.March,
	"april":     time.April,
	"may":       time.May,
	"june":      time.June,
	"july":      time.July,
	"august":    time.August,
	"september": time.September,
	"october":   time.October,
	"november":  time.November,
	"december":  time.December,
}

// ParseSlotDate extracts a calendar date from the page's long date
// text. Any shape or month-name mismatch yields DateUnparsed, never an
// error: the caller treats unreadable dates as acceptable.
func ParseSlotDate(raw string) (time.Time, DateOutcome) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, DateAbsent
	}
	m := reSlotDate.FindStringSubmatch(raw)
	if m == nil {
		return time.Time{}, DateUnparsed
	}
	month, ok := monthNumbers[strings.ToLower(m[2])]
	if !ok {
		return time.Time{}, DateUnparsed
	}
	day, err := strconv.Atoi(m[3])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, DateUnparsed
	}
	year, err := strconv.Atoi(m[4])
	if err != nil {
		return time.Time{}, DateUnparsed
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), DateParsed
}
