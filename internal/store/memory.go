package store

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pbaille/gymlog/internal/domain"
)

// Memory keeps sessions in process memory. Useful for tests and for
// running the API without a database file; contents are lost on exit.
type Memory struct {
	mu       sync.Mutex
	sessions []*domain.Session
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) CreateEntry(in domain.EntryInput) (*domain.LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session := m.findSession(in.Date)
	if session == nil {
		session = &domain.Session{
			ID:   uuid.New().String(),
			Date: in.Date,
		}
		m.sessions = append(m.sessions, session)
	}

	entry := domain.LogEntry{
		ID:       uuid.New().String(),
		Exercise: in.Exercise,
		Weight:   in.Weight,
		Reps:     in.Reps,
		Sets:     in.Sets,
	}
	session.Exercises = append(session.Exercises, entry)

	return &entry, nil
}

// ListSessions returns sessions in creation order, entries in insertion
// order. The result is a copy; callers cannot mutate store state.
func (m *Memory) ListSessions() ([]domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sessions := make([]domain.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		copied := domain.Session{
			ID:        s.ID,
			Date:      s.Date,
			Exercises: make([]domain.LogEntry, len(s.Exercises)),
		}
		copy(copied.Exercises, s.Exercises)
		sessions = append(sessions, copied)
	}

	return sessions, nil
}

func (m *Memory) UpdateEntry(id string, patch domain.EntryPatch) (*domain.LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sessions {
		for i := range s.Exercises {
			if s.Exercises[i].ID != id {
				continue
			}

			entry := &s.Exercises[i]
			if patch.Exercise != nil {
				entry.Exercise = *patch.Exercise
			}
			if patch.Weight != nil {
				entry.Weight = *patch.Weight
			}
			if patch.Reps != nil {
				entry.Reps = *patch.Reps
			}
			if patch.Sets != nil {
				entry.Sets = *patch.Sets
			}

			updated := *entry
			return &updated, nil
		}
	}

	return nil, ErrNotFound
}

func (m *Memory) DeleteEntry(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for si, s := range m.sessions {
		for ei := range s.Exercises {
			if s.Exercises[ei].ID != id {
				continue
			}

			s.Exercises = append(s.Exercises[:ei], s.Exercises[ei+1:]...)
			if len(s.Exercises) == 0 {
				m.sessions = append(m.sessions[:si], m.sessions[si+1:]...)
			}
			return nil
		}
	}

	return ErrNotFound
}

func (m *Memory) Close() error {
	return nil
}

// findSession assumes m.mu is held.
func (m *Memory) findSession(date string) *domain.Session {
	for _, s := range m.sessions {
		if s.Date == date {
			return s
		}
	}
	return nil
}
