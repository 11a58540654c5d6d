package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"icbcwatch/internal/seenstore"
)

type fakeExtractor struct {
	mu     sync.Mutex
	cycles [][]RawCandidate
	err    error
	calls  int
}

func (f *fakeExtractor) Extract(context.Context) ([]RawCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.cycles) == 0 {
		return nil, nil
	}
	out := f.cycles[0]
	if len(f.cycles) > 1 {
		f.cycles = f.cycles[1:]
	}
	return out, nil
}

func (f *fakeExtractor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeDispatcher struct {
	mu      sync.Mutex
	events  []Event
	fail    bool
	panicOn string // panic when dispatching this slot time
}

func (f *fakeDispatcher) Dispatch(_ context.Context, ev Event) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicOn != "" && ev.Time == f.panicOn {
		panic("channel exploded")
	}
	f.events = append(f.events, ev)
	return !f.fail
}

func (f *fakeDispatcher) delivered() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Event(nil), f.events...)
}

type fakeClock struct {
	now  time.Time
	tick chan time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, time.January, 22, 8, 0, 0, 0, time.UTC), tick: make(chan time.Time)}
}

func (f *fakeClock) Now() time.Time                       { return f.now }
func (f *fakeClock) After(time.Duration) <-chan time.Time { return f.tick }

func newTestChecker(ext Extractor, disp Dispatcher) *Checker {
	sched, _ := ParseSchedule("10m")
	filter := NewFilter(testPolicy(), zerolog.Nop())
	tracker := NewTracker(seenstore.NewMemory(), zerolog.Nop())
	return NewChecker(ext, filter, tracker, disp, sched, zerolog.Nop()).WithClock(newFakeClock())
}

func suitableCandidate() RawCandidate {
	return RawCandidate{
		Time:        "8:35 AM",
		Date:        "Thursday, January 22nd, 2026",
		Location:    "Downtown ICBC Office",
		LicenseType: "N",
	}
}

func TestRunOnceSuitableSlotNotifies(t *testing.T) {
	t.Parallel()
	disp := &fakeDispatcher{}
	c := newTestChecker(&fakeExtractor{cycles: [][]RawCandidate{{suitableCandidate()}}}, disp)

	sum := c.RunOnce(context.Background())
	if sum.Found != 1 || sum.New != 1 || sum.Notified != 1 {
		t.Fatalf("summary = %+v, want found=1 new=1 notified=1", sum)
	}
	evs := disp.delivered()
	if len(evs) != 1 {
		t.Fatalf("delivered %d events, want 1", len(evs))
	}
	if evs[0].Location != "Downtown ICBC Office" || evs[0].FoundAt.IsZero() {
		t.Fatalf("unexpected event: %+v", evs[0])
	}
}

func TestRunOnceRepeatedSlotNotNotifiedTwice(t *testing.T) {
	t.Parallel()
	disp := &fakeDispatcher{}
	ext := &fakeExtractor{cycles: [][]RawCandidate{{suitableCandidate()}}}
	c := newTestChecker(ext, disp)

	first := c.RunOnce(context.Background())
	second := c.RunOnce(context.Background())
	if first.Notified != 1 {
		t.Fatalf("first cycle notified = %d, want 1", first.Notified)
	}
	if second.Found != 1 || second.New != 0 || second.Notified != 0 {
		t.Fatalf("second cycle summary = %+v, want found=1 new=0 notified=0", second)
	}
	if len(disp.delivered()) != 1 {
		t.Fatalf("delivered %d events across two cycles, want 1", len(disp.delivered()))
	}
}

func TestRunOnceEarlySlotNeverReachesDispatcher(t *testing.T) {
	t.Parallel()
	disp := &fakeDispatcher{}
	cand := suitableCandidate()
	cand.Date = "Monday, March 3rd, 2025"
	c := newTestChecker(&fakeExtractor{cycles: [][]RawCandidate{{cand}}}, disp)

	sum := c.RunOnce(context.Background())
	if sum.Found != 0 || sum.New != 0 || sum.Notified != 0 {
		t.Fatalf("summary = %+v, want all zero", sum)
	}
	if len(disp.delivered()) != 0 {
		t.Fatal("rejected candidate reached the dispatcher")
	}
}

func TestRunOnceLocationMismatchRejected(t *testing.T) {
	t.Parallel()
	disp := &fakeDispatcher{}
	cand := suitableCandidate()
	cand.Location = "Surrey Office"
	c := newTestChecker(&fakeExtractor{cycles: [][]RawCandidate{{cand}}}, disp)

	if sum := c.RunOnce(context.Background()); sum.Found != 0 {
		t.Fatalf("summary = %+v, want found=0", sum)
	}
	if len(disp.delivered()) != 0 {
		t.Fatal("mismatched candidate reached the dispatcher")
	}
}

func TestRunOnceExtractionFailureIsEmptyCycle(t *testing.T) {
	t.Parallel()
	disp := &fakeDispatcher{}
	c := newTestChecker(&fakeExtractor{err: errors.New("site unreachable")}, disp)

	sum := c.RunOnce(context.Background())
	if !sum.ExtractFailed {
		t.Fatal("ExtractFailed not set")
	}
	if sum.Found != 0 || sum.New != 0 || sum.Notified != 0 {
		t.Fatalf("summary = %+v, want all zero", sum)
	}
}

func TestRunOnceFailedDeliveryStaysSeen(t *testing.T) {
	t.Parallel()
	disp := &fakeDispatcher{fail: true}
	ext := &fakeExtractor{cycles: [][]RawCandidate{{suitableCandidate()}}}
	c := newTestChecker(ext, disp)

	first := c.RunOnce(context.Background())
	if first.New != 1 || first.Notified != 0 {
		t.Fatalf("first cycle summary = %+v, want new=1 notified=0", first)
	}
	// The slot is already marked seen, so the failed delivery is not
	// re-attempted next cycle.
	second := c.RunOnce(context.Background())
	if second.New != 0 || second.Notified != 0 {
		t.Fatalf("second cycle summary = %+v, want new=0 notified=0", second)
	}
}

func TestRunOncePanicIsolatedToCandidate(t *testing.T) {
	t.Parallel()
	bad := suitableCandidate()
	bad.Time = "9:05 AM"
	good := suitableCandidate()

	disp := &fakeDispatcher{panicOn: "9:05 AM"}
	c := newTestChecker(&fakeExtractor{cycles: [][]RawCandidate{{bad, good}}}, disp)

	sum := c.RunOnce(context.Background())
	if sum.Notified != 1 {
		t.Fatalf("notified = %d, want 1 (panicking candidate must not abort the cycle)", sum.Notified)
	}
	evs := disp.delivered()
	if len(evs) != 1 || evs[0].Time != "8:35 AM" {
		t.Fatalf("unexpected deliveries: %+v", evs)
	}
}

func TestRunStopsAtCycleBoundary(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	ext := &fakeExtractor{}
	disp := &fakeDispatcher{}
	sched, _ := ParseSchedule("10m")
	c := NewChecker(ext, NewFilter(testPolicy(), zerolog.Nop()), NewTracker(seenstore.NewMemory(), zerolog.Nop()), disp, sched, zerolog.Nop()).WithClock(clock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	// Release two full cycles, then cancel during the idle wait.
	clock.tick <- clock.now
	clock.tick <- clock.now
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
	if got := ext.callCount(); got != 3 {
		t.Fatalf("extractor ran %d cycles, want 3", got)
	}
}
