package store

import (
	"errors"
	"time"

	"github.com/draftnight/draft-backend/internal/engine"
)

// ErrNotFound means no prior snapshot exists. That is the normal fresh-start
// case, not a failure.
var ErrNotFound = errors.New("no snapshot found")

// Snapshot is the whole-state record written after every successful
// mutation. On restart it is authoritative; the event log is diagnostics
// only and is never replayed.
type Snapshot struct {
	Players []engine.Player `json:"players"`
	Config  engine.Config   `json:"draftConfig"`
	Session engine.State    `json:"session"`
	SavedAt time.Time       `json:"savedAt"`
}

// Entry is one append-only operational log record.
type Entry struct {
	ID      string    `json:"id"`
	At      time.Time `json:"at"`
	Type    string    `json:"type"`
	Context string    `json:"context,omitempty"`
}

// Store is the persistence contract the draft room depends on.
// Implementations: *bolt.Store (default) and *postgres.Store.
type Store interface {
	Save(snap Snapshot) error
	Load() (Snapshot, error)
	AppendEvent(e Entry) error
	Close() error
}
