package monitor

import (
	"context"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// Extractor produces the raw candidates for one cycle. It may return
// an error when the booking site cannot be reached or read; the
// checker treats that as an empty cycle, never as a fatal condition.
type Extractor interface {
	Extract(ctx context.Context) ([]RawCandidate, error)
}

// Dispatcher delivers one event and reports whether delivery
// succeeded. It must not panic and must not retry.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev Event) bool
}

// CycleSummary is the observable outcome of one check cycle.
type CycleSummary struct {
	// Found counts candidates the filter accepted.
	Found int
	// New counts accepted candidates not seen before.
	New int
	// Notified counts confirmed deliveries.
	Notified int
	// ExtractFailed marks a cycle where the extractor errored and the
	// cycle proceeded with zero candidates.
	ExtractFailed bool
}

// Checker drives the poll-filter-dedup-notify loop. It is either idle
// (waiting out the inter-cycle delay) or running exactly one cycle;
// cycles never overlap and a stop request is only honored between
// cycles, so an in-flight cycle always finishes its notifications and
// bookkeeping.
type Checker struct {
	extractor  Extractor
	filter     *Filter
	tracker    *Tracker
	dispatcher Dispatcher
	schedule   Schedule
	clock      Clock
	log        zerolog.Logger
}

func NewChecker(extractor Extractor, filter *Filter, tracker *Tracker, dispatcher Dispatcher, schedule Schedule, log zerolog.Logger) *Checker {
	return &Checker{
		extractor:  extractor,
		filter:     filter,
		tracker:    tracker,
		dispatcher: dispatcher,
		schedule:   schedule,
		clock:      SystemClock(),
		log:        log.With().Str("component", "checker").Logger(),
	}
}

// WithClock replaces the checker's clock. Intended for tests.
func (c *Checker) WithClock(clock Clock) *Checker {
	c.clock = clock
	return c
}

// Run executes cycles until ctx is cancelled. The cancellation check
// sits at the cycle boundary only.
func (c *Checker) Run(ctx context.Context) error {
	for {
		c.RunOnce(ctx)

		wait := c.schedule.Wait(c.clock.Now())
		c.log.Debug().Dur("wait", wait).Msg("cycle complete, waiting")
		select {
		case <-ctx.Done():
			c.log.Info().Msg("stop requested, checker halting")
			return nil
		case <-c.clock.After(wait):
		}
	}
}

// RunOnce performs a single check cycle and returns its summary. A
// failing extractor or a misbehaving candidate never aborts the cycle;
// faults are contained at candidate granularity.
func (c *Checker) RunOnce(ctx context.Context) CycleSummary {
	var sum CycleSummary

	candidates, err := c.extractor.Extract(ctx)
	if err != nil {
		// The collaborator could not produce candidates this cycle.
		// Proceed as an empty result.
		c.log.Warn().Err(err).Msg("extraction failed, treating cycle as empty")
		sum.ExtractFailed = true
		candidates = nil
	}
	c.log.Debug().Int("candidates", len(candidates)).Msg("cycle extracted")

	for _, cand := range candidates {
		accepted, isNew, delivered := c.processCandidate(ctx, cand)
		if accepted {
			sum.Found++
		}
		if isNew {
			sum.New++
		}
		if delivered {
			sum.Notified++
		}
	}

	c.log.Info().
		Int("found", sum.Found).
		Int("new", sum.New).
		Int("notified", sum.Notified).
		Bool("extract_failed", sum.ExtractFailed).
		Msg("cycle summary")
	return sum
}

// processCandidate runs one candidate through filter, tracker and
// dispatcher. A panic anywhere in that path is logged and contained so
// the remaining candidates in the cycle still get processed.
func (c *Checker) processCandidate(ctx context.Context, cand RawCandidate) (accepted, isNew, delivered bool) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Str("time", cand.Time).
				Str("date", cand.Date).
				Msg("panic while processing candidate")
		}
	}()

	if !c.filter.Evaluate(cand) {
		return false, false, false
	}
	accepted = true

	appt := Appointment{
		Date:        cand.Date,
		Time:        cand.Time,
		Location:    cand.Location,
		LicenseType: cand.LicenseType,
	}

	// Mark seen before dispatching. A failed delivery therefore stays
	// seen and is not re-attempted in later cycles; it is logged below.
	if !c.tracker.CheckAndRecord(ctx, appt) {
		return accepted, false, false
	}
	isNew = true

	ev := Event{Appointment: appt, FoundAt: c.clock.Now()}
	if !c.dispatcher.Dispatch(ctx, ev) {
		c.log.Warn().
			Str("date", appt.Date).
			Str("time", appt.Time).
			Str("location", appt.Location).
			Msg("notification not delivered for new slot")
		return accepted, isNew, false
	}
	return accepted, isNew, true
}
