package monitor

import (
	"strings"
	"time"
)

// RawCandidate is one appointment slot as harvested from the rendered
// booking page. Fields other than LicenseType may be empty, partial or
// malformed; nothing here is normalized. A RawCandidate only lives for
// the duration of the cycle that produced it.
type RawCandidate struct {
	Time        string
	Date        string
	Location    string
	LicenseType string
}

// Appointment is a candidate that passed the suitability filter.
// Immutable once created.
type Appointment struct {
	Date        string
	Time        string
	Location    string
	LicenseType string
}

// Event is the payload handed to the notification channel.
type Event struct {
	Appointment
	FoundAt time.Time
}

// Policy holds the user's booking preferences. Loaded once at startup
// and read-only afterwards.
type Policy struct {
	// PreferredLocations are matched as case-insensitive substrings of a
	// candidate's location text, in order.
	PreferredLocations []string
	// EarliestDate is the inclusive lower bound for acceptable slots.
	EarliestDate time.Time
}

// unknownField stands in for a missing field inside a novelty key.
// A non-empty placeholder keeps "field absent" from colliding with
// "field present but empty".
const unknownField = "unknown"

// Key returns the deterministic identity of a slot. Two appointments
// with the same key are the same slot for notification purposes.
func (a Appointment) Key() string {
	return keyField(a.Date) + "|" + keyField(a.Time) + "|" + keyField(a.Location)
}

func keyField(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return unknownField
	}
	return s
}
