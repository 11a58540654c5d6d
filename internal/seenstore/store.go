// Package seenstore persists the set of appointment keys that have
// already triggered a notification.
//
// Backends:
//   - "memory": process-lifetime set (default). A restart forgets
//     history and may re-notify slots seen before the restart.
//   - "sqlite": database file surviving restarts (build tag `sqlite`).
//
// The set grows monotonically; appointment volume in this domain is
// small enough that eviction is not worth having.
package seenstore

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Store is the persistence API used by the novelty tracker.
type Store interface {
	Seen(ctx context.Context, key string) (bool, error)
	MarkSeen(ctx context.Context, key string) error
	Close() error
}

// Config configures the store.
type Config struct {
	Driver      string        // "memory" (default) or "sqlite"
	Path        string        // sqlite only
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Open initializes the configured store. An empty driver means memory.
func Open(cfg Config, log zerolog.Logger) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown seen-store driver: " + cfg.Driver)
	}
}

// Memory is the in-process backend.
type Memory struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{keys: make(map[string]struct{})}
}

func (m *Memory) Seen(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	_, ok := m.keys[key]
	m.mu.Unlock()
	return ok, nil
}

func (m *Memory) MarkSeen(_ context.Context, key string) error {
	m.mu.Lock()
	m.keys[key] = struct{}{}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }

// Len reports the number of recorded keys.
func (m *Memory) Len() int {
	m.mu.Lock()
	n := len(m.keys)
	m.mu.Unlock()
	return n
}
