package monitor

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// SeenStore remembers which novelty keys have already triggered a
// notification. Implementations live in internal/seenstore.
type SeenStore interface {
	Seen(ctx context.Context, key string) (bool, error)
	MarkSeen(ctx context.Context, key string) error
}

// Tracker gates notifications to at most one per distinct slot.
//
// The polling loop is strictly sequential, so the mutex is not needed
// today; it is kept so the check-and-record step stays atomic if a
// concurrent caller (e.g. per-location polling) is ever added. The
// tracker is the store's only writer.
type Tracker struct {
	mu    sync.Mutex
	store SeenStore
	log   zerolog.Logger
}

func NewTracker(store SeenStore, log zerolog.Logger) *Tracker {
	return &Tracker{store: store, log: log.With().Str("component", "tracker").Logger()}
}

// CheckAndRecord reports whether the appointment is new, marking it
// seen when it is. Store failures degrade toward notifying: a read
// error counts as "not seen" and a write error does not withhold the
// event, so a flaky store produces duplicate notifications rather than
// missed ones.
func (t *Tracker) CheckAndRecord(ctx context.Context, a Appointment) bool {
	key := a.Key()

	t.mu.Lock()
	defer t.mu.Unlock()

	seen, err := t.store.Seen(ctx, key)
	if err != nil {
		t.log.Warn().Err(err).Str("key", key).Msg("seen lookup failed, treating as new")
	} else if seen {
		return false
	}
	if err := t.store.MarkSeen(ctx, key); err != nil {
		t.log.Warn().Err(err).Str("key", key).Msg("failed to record seen key")
	}
	return true
}
