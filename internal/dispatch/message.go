package dispatch

import (
	"fmt"
	"strings"

	"icbcwatch/internal/monitor"
)

const subjectLine = "ICBC appointment available"

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}

// textBody renders the short plain-text form used by sms and telegram.
func textBody(ev monitor.Event, bookingURL string) string {
	var b strings.Builder
	b.WriteString(subjectLine + "\n")
	fmt.Fprintf(&b, "Date: %s\n", orUnknown(ev.Date))
	fmt.Fprintf(&b, "Time: %s\n", orUnknown(ev.Time))
	fmt.Fprintf(&b, "Location: %s\n", orUnknown(ev.Location))
	fmt.Fprintf(&b, "License: %s\n", orUnknown(ev.LicenseType))
	fmt.Fprintf(&b, "Found at: %s\n", ev.FoundAt.Format("2006-01-02 15:04:05"))
	if bookingURL != "" {
		fmt.Fprintf(&b, "Book now: %s\n", bookingURL)
	}
	return b.String()
}

// htmlBody renders the email form.
func htmlBody(ev monitor.Event, bookingURL string) string {
	var b strings.Builder
	b.WriteString("<h2>" + subjectLine + "</h2>\n")
	b.WriteString("<p>A road test appointment has become available:</p>\n<ul>\n")
	fmt.Fprintf(&b, "<li><b>Date:</b> %s</li>\n", orUnknown(ev.Date))
	fmt.Fprintf(&b, "<li><b>Time:</b> %s</li>\n", orUnknown(ev.Time))
	fmt.Fprintf(&b, "<li><b>Location:</b> %s</li>\n", orUnknown(ev.Location))
	fmt.Fprintf(&b, "<li><b>License type:</b> %s</li>\n", orUnknown(ev.LicenseType))
	b.WriteString("</ul>\n")
	fmt.Fprintf(&b, "<p>Found at %s.</p>\n", ev.FoundAt.Format("2006-01-02 15:04:05"))
	if bookingURL != "" {
		fmt.Fprintf(&b, "<p><a href=%q>Book the appointment</a> before it is taken.</p>\n", bookingURL)
	}
	return b.String()
}
