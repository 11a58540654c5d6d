package dispatch

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"icbcwatch/internal/monitor"
)

// Console writes the notification to local output. It is the one
// channel that can never fail.
type Console struct {
	out io.Writer
}

// NewConsole builds the console channel. A nil writer means stdout.
func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out}
}

func (c *Console) Name() string { return "console" }

func (c *Console) Send(_ context.Context, ev monitor.Event) error {
	rule := strings.Repeat("=", 50)
	fmt.Fprintln(c.out, rule)
	fmt.Fprintln(c.out, strings.ToUpper(subjectLine))
	fmt.Fprintln(c.out, rule)
	fmt.Fprintf(c.out, "Date:         %s\n", orUnknown(ev.Date))
	fmt.Fprintf(c.out, "Time:         %s\n", orUnknown(ev.Time))
	fmt.Fprintf(c.out, "Location:     %s\n", orUnknown(ev.Location))
	fmt.Fprintf(c.out, "License type: %s\n", orUnknown(ev.LicenseType))
	fmt.Fprintf(c.out, "Found at:     %s\n", ev.FoundAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(c.out, rule)
	return nil
}
