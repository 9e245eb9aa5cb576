package store

import (
	"errors"

	"github.com/pbaille/gymlog/internal/domain"
)

// ErrNotFound is returned when no log entry matches the given id.
var ErrNotFound = errors.New("log entry not found")

// Store owns the collection of workout sessions. A session exists if
// and only if it has at least one entry, and exactly one session exists
// per distinct date. Implementations serialize mutations.
type Store interface {
	// CreateEntry appends a validated entry to the session for its
	// date, creating the session if this is the date's first entry.
	CreateEntry(in domain.EntryInput) (*domain.LogEntry, error)

	// ListSessions returns every session with its nested entries, in
	// an order that is stable for a fixed store state.
	ListSessions() ([]domain.Session, error)

	// UpdateEntry replaces only the fields set on patch, leaving the
	// rest untouched. Returns ErrNotFound if no entry matches id.
	UpdateEntry(id string, patch domain.EntryPatch) (*domain.LogEntry, error)

	// DeleteEntry removes the entry with the given id, destroying its
	// session if that was the last entry. Returns ErrNotFound if no
	// entry matches.
	DeleteEntry(id string) error

	Close() error
}
