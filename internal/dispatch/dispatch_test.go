package dispatch

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"icbcwatch/internal/monitor"
)

func sampleEvent() monitor.Event {
	return monitor.Event{
		Appointment: monitor.Appointment{
			Date:        "Thursday, January 22nd, 2026",
			Time:        "8:35 AM",
			Location:    "Downtown ICBC Office",
			LicenseType: "N",
		},
		FoundAt: time.Date(2026, time.January, 20, 9, 0, 0, 0, time.UTC),
	}
}

func TestConsoleAlwaysDelivers(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	d := New(NewConsole(&buf), zerolog.Nop())

	if !d.Dispatch(context.Background(), sampleEvent()) {
		t.Fatal("console dispatch = false, want true")
	}
	out := buf.String()
	for _, want := range []string{"8:35 AM", "Thursday, January 22nd, 2026", "Downtown ICBC Office", "N"} {
		if !strings.Contains(out, want) {
			t.Fatalf("console output missing %q:\n%s", want, out)
		}
	}
}

func TestConsolePrintsUnknownForMissingFields(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	d := New(NewConsole(&buf), zerolog.Nop())

	ev := monitor.Event{Appointment: monitor.Appointment{Time: "8:35 AM"}, FoundAt: time.Now()}
	if !d.Dispatch(context.Background(), ev) {
		t.Fatal("console dispatch = false, want true")
	}
	if !strings.Contains(buf.String(), "unknown") {
		t.Fatalf("missing fields not rendered as unknown:\n%s", buf.String())
	}
}

type stubChannel struct {
	err    error
	panics bool
	sent   int
}

func (s *stubChannel) Name() string { return "stub" }
func (s *stubChannel) Send(context.Context, monitor.Event) error {
	if s.panics {
		panic("transport blew up")
	}
	s.sent++
	return s.err
}

func TestDispatchConvertsTransportErrors(t *testing.T) {
	t.Parallel()
	ch := &stubChannel{err: errors.New("auth rejected")}
	d := New(ch, zerolog.Nop())
	if d.Dispatch(context.Background(), sampleEvent()) {
		t.Fatal("failing channel reported delivered=true")
	}
	// Exactly one attempt, no internal retry.
	if ch.sent != 1 {
		t.Fatalf("channel sent %d times, want 1", ch.sent)
	}
}

func TestDispatchContainsChannelPanics(t *testing.T) {
	t.Parallel()
	d := New(&stubChannel{panics: true}, zerolog.Nop())
	if d.Dispatch(context.Background(), sampleEvent()) {
		t.Fatal("panicking channel reported delivered=true")
	}
}

func TestDispatchSendsTwiceWhenCalledTwice(t *testing.T) {
	t.Parallel()
	ch := &stubChannel{}
	d := New(ch, zerolog.Nop())
	ev := sampleEvent()
	d.Dispatch(context.Background(), ev)
	d.Dispatch(context.Background(), ev)
	// The dispatcher itself is not idempotent; the novelty tracker
	// upstream is what prevents repeats.
	if ch.sent != 2 {
		t.Fatalf("channel sent %d times, want 2", ch.sent)
	}
}

func TestNewFromConfigChannelSelection(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "default console", cfg: Config{}},
		{name: "explicit console", cfg: Config{Method: "console"}},
		{name: "email", cfg: Config{Method: "email", Email: &EmailConfig{Sender: "a@b.c", Password: "x", Recipient: "d@e.f"}}},
		{name: "email without section", cfg: Config{Method: "email"}, wantErr: true},
		{name: "sms", cfg: Config{Method: "sms", SMS: &SMSConfig{AccountSID: "AC1", AuthToken: "t", From: "+1", To: "+2"}}},
		{name: "sms without section", cfg: Config{Method: "sms"}, wantErr: true},
		{name: "telegram without section", cfg: Config{Method: "telegram"}, wantErr: true},
		{name: "unknown method", cfg: Config{Method: "pigeon"}, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFromConfig(tt.cfg, zerolog.Nop())
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewFromConfig error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMessageBodies(t *testing.T) {
	t.Parallel()
	ev := sampleEvent()

	text := textBody(ev, "https://example.com/book")
	for _, want := range []string{"8:35 AM", "Downtown ICBC Office", "https://example.com/book"} {
		if !strings.Contains(text, want) {
			t.Fatalf("text body missing %q:\n%s", want, text)
		}
	}

	html := htmlBody(ev, "https://example.com/book")
	if !strings.Contains(html, "<a href=\"https://example.com/book\"") {
		t.Fatalf("html body missing booking link:\n%s", html)
	}

	// No booking URL configured: bodies omit the link entirely.
	if strings.Contains(textBody(ev, ""), "Book now") {
		t.Fatal("text body rendered a booking line without a URL")
	}
}
