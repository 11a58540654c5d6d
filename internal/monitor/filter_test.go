package monitor

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testPolicy() Policy {
	return Policy{
		PreferredLocations: []string{"Downtown", "Richmond"},
		EarliestDate:       time.Date(2025, time.September, 3, 0, 0, 0, 0, time.UTC),
	}
}

func TestParseSlotDate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		raw     string
		outcome DateOutcome
		want    time.Time
	}{
		{name: "long form with ordinal", raw: "Thursday, January 22nd, 2026", outcome: DateParsed, want: time.Date(2026, time.January, 22, 0, 0, 0, 0, time.UTC)},
		{name: "no ordinal suffix", raw: "Monday, March 3, 2025", outcome: DateParsed, want: time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)},
		{name: "first with st", raw: "Sunday, June 1st, 2025", outcome: DateParsed, want: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)},
		{name: "mixed case month", raw: "friday, OCTOBER 31st, 2025", outcome: DateParsed, want: time.Date(2025, time.October, 31, 0, 0, 0, 0, time.UTC)},
		{name: "empty", raw: "", outcome: DateAbsent},
		{name: "whitespace only", raw: "   ", outcome: DateAbsent},
		{name: "iso date", raw: "2026-01-22", outcome: DateUnparsed},
		{name: "unknown month", raw: "Thursday, Janglember 22nd, 2026", outcome: DateUnparsed},
		{name: "garbage", raw: "next thursday maybe", outcome: DateUnparsed},
		{name: "day out of range", raw: "Thursday, January 99th, 2026", outcome: DateUnparsed},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, outcome := ParseSlotDate(tt.raw)
			if outcome != tt.outcome {
				t.Fatalf("ParseSlotDate(%q) outcome = %v, want %v", tt.raw, outcome, tt.outcome)
			}
			if outcome == DateParsed && !got.Equal(tt.want) {
				t.Fatalf("ParseSlotDate(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestFilterEvaluate(t *testing.T) {
	t.Parallel()
	f := NewFilter(testPolicy(), zerolog.Nop())

	tests := []struct {
		name string
		cand RawCandidate
		want bool
	}{
		{
			name: "suitable slot",
			cand: RawCandidate{Time: "8:35 AM", Date: "Thursday, January 22nd, 2026", Location: "Downtown ICBC Office", LicenseType: "N"},
			want: true,
		},
		{
			name: "missing time rejects",
			cand: RawCandidate{Date: "Thursday, January 22nd, 2026", Location: "Downtown ICBC Office"},
			want: false,
		},
		{
			name: "time without meridiem rejects",
			cand: RawCandidate{Time: "14:30", Location: "Downtown ICBC Office"},
			want: false,
		},
		{
			name: "missing location is not disqualifying",
			cand: RawCandidate{Time: "8:35 AM", Date: "Thursday, January 22nd, 2026"},
			want: true,
		},
		{
			name: "location mismatch rejects",
			cand: RawCandidate{Time: "8:35 AM", Location: "Surrey Office"},
			want: false,
		},
		{
			name: "location match is case-insensitive substring",
			cand: RawCandidate{Time: "8:35 AM", Location: "richmond claim centre"},
			want: true,
		},
		{
			name: "date before earliest rejects",
			cand: RawCandidate{Time: "8:35 AM", Date: "Monday, March 3rd, 2025", Location: "Downtown ICBC Office"},
			want: false,
		},
		{
			name: "earliest date itself is acceptable",
			cand: RawCandidate{Time: "8:35 AM", Date: "Wednesday, September 3rd, 2025", Location: "Downtown ICBC Office"},
			want: true,
		},
		{
			name: "malformed date fails open",
			cand: RawCandidate{Time: "8:35 AM", Date: "sometime soon", Location: "Downtown ICBC Office"},
			want: true,
		},
		{
			name: "missing date is not disqualifying",
			cand: RawCandidate{Time: "8:35 AM", Location: "Downtown ICBC Office"},
			want: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Evaluate(tt.cand); got != tt.want {
				t.Fatalf("Evaluate(%+v) = %v, want %v", tt.cand, got, tt.want)
			}
		})
	}
}

func TestFilterNeverRejectsSolelyOnMissingLocation(t *testing.T) {
	t.Parallel()
	f := NewFilter(testPolicy(), zerolog.Nop())
	// Any candidate with a usable time, acceptable-or-absent date and no
	// location must pass.
	dates := []string{"", "Thursday, January 22nd, 2026", "complete nonsense"}
	for _, d := range dates {
		if !f.Evaluate(RawCandidate{Time: "9:00 am", Date: d}) {
			t.Fatalf("candidate with absent location rejected (date %q)", d)
		}
	}
}
