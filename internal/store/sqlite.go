package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pbaille/gymlog/internal/domain"
)

//go:embed schema.sql
var schema string

// SQLite persists sessions in a normalized sqlite database: a workout
// row per date, an exercise catalog row per distinct name, and an
// exercise_log row per performance referencing both. Mutations are
// serialized through a mutex in addition to sqlite's own locking.
type SQLite struct {
	mu sync.Mutex
	db *sql.DB
}

// New opens (and if needed initializes) the database at dbPath
func New(dbPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the database connection
func (s *SQLite) Close() error {
	return s.db.Close()
}

// CreateEntry upserts the workout and exercise catalog rows for the
// input's date and name, then inserts the log row referencing both
// surrogate keys. All three steps run in one transaction; any failure
// rolls the whole create back.
func (s *SQLite) CreateEntry(in domain.EntryInput) (*domain.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin create: %w", err)
	}
	defer tx.Rollback()

	workoutID, err := s.ensureWorkout(tx, in.Date)
	if err != nil {
		return nil, err
	}

	exerciseID, err := s.ensureExercise(tx, in.Exercise)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	_, err = tx.Exec(
		"INSERT INTO exercise_log (id, workout_id, exercise_id, weight, reps, sets, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		id, workoutID, exerciseID, in.Weight, in.Reps, in.Sets, time.Now(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create: %w", err)
	}

	return &domain.LogEntry{
		ID:       id,
		Exercise: in.Exercise,
		Weight:   in.Weight,
		Reps:     in.Reps,
		Sets:     in.Sets,
	}, nil
}

// ListSessions returns sessions ordered by date, entries in insertion
// order within each session.
func (s *SQLite) ListSessions() ([]domain.Session, error) {
	rows, err := s.db.Query(`
		SELECT w.id, w.date, l.id, e.name, l.weight, l.reps, l.sets
		FROM workout w
		JOIN exercise_log l ON l.workout_id = w.id
		JOIN exercise e ON e.id = l.exercise_id
		ORDER BY w.date, l.created_at, l.id
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

func (s *SQLite) UpdateEntry(id string, patch domain.EntryPatch) (*domain.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	var entry domain.LogEntry
	var exerciseID string
	err = tx.QueryRow(`
		SELECT l.id, l.exercise_id, e.name, l.weight, l.reps, l.sets
		FROM exercise_log l
		JOIN exercise e ON e.id = l.exercise_id
		WHERE l.id = ?
	`, id).Scan(&entry.ID, &exerciseID, &entry.Exercise, &entry.Weight, &entry.Reps, &entry.Sets)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load log: %w", err)
	}

	if patch.Exercise != nil && *patch.Exercise != entry.Exercise {
		exerciseID, err = s.ensureExercise(tx, *patch.Exercise)
		if err != nil {
			return nil, err
		}
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

	_, err = tx.Exec(
		"UPDATE exercise_log SET exercise_id = ?, weight = ?, reps = ?, sets = ? WHERE id = ?",
		exerciseID, entry.Weight, entry.Reps, entry.Sets, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}

	return &entry, nil
}

// DeleteEntry removes a log row and, when it was the workout's last
// log, the workout row itself. Exercise catalog rows are kept.
func (s *SQLite) DeleteEntry(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	var workoutID string
	err = tx.QueryRow("SELECT workout_id FROM exercise_log WHERE id = ?", id).Scan(&workoutID)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load log: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM exercise_log WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete log: %w", err)
	}

	var remaining int
	err = tx.QueryRow("SELECT COUNT(*) FROM exercise_log WHERE workout_id = ?", workoutID).Scan(&remaining)
	if err != nil {
		return fmt.Errorf("count logs: %w", err)
	}
	if remaining == 0 {
		if _, err := tx.Exec("DELETE FROM workout WHERE id = ?", workoutID); err != nil {
			return fmt.Errorf("delete workout: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

// ensureWorkout finds the workout row for date or creates it, and
// returns its surrogate key.
func (s *SQLite) ensureWorkout(tx *sql.Tx, date string) (string, error) {
	var id string
	err := tx.QueryRow("SELECT id FROM workout WHERE date = ?", date).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("find workout: %w", err)
	}

	id = uuid.New().String()
	if _, err := tx.Exec(
		"INSERT INTO workout (id, date, created_at) VALUES (?, ?, ?)",
		id, date, time.Now(),
	); err != nil {
		return "", fmt.Errorf("insert workout: %w", err)
	}
	return id, nil
}

// ensureExercise finds the catalog row for name or creates it, and
// returns its surrogate key.
func (s *SQLite) ensureExercise(tx *sql.Tx, name string) (string, error) {
	var id string
	err := tx.QueryRow("SELECT id FROM exercise WHERE name = ?", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("find exercise: %w", err)
	}

	id = uuid.New().String()
	if _, err := tx.Exec(
		"INSERT INTO exercise (id, name, created_at) VALUES (?, ?, ?)",
		id, name, time.Now(),
	); err != nil {
		return "", fmt.Errorf("insert exercise: %w", err)
	}
	return id, nil
}

// scanSessions groups date-ordered join rows into sessions. Shared by
// the sqlite and postgres backends, which produce identical row shapes.
func scanSessions(rows *sql.Rows) ([]domain.Session, error) {
	sessions := []domain.Session{}
	for rows.Next() {
		var workoutID, date string
		var entry domain.LogEntry

		err := rows.Scan(&workoutID, &date, &entry.ID, &entry.Exercise, &entry.Weight, &entry.Reps, &entry.Sets)
		if err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}

		if len(sessions) == 0 || sessions[len(sessions)-1].ID != workoutID {
			sessions = append(sessions, domain.Session{ID: workoutID, Date: date})
		}
		last := &sessions[len(sessions)-1]
		last.Exercises = append(last.Exercises, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}

	return sessions, nil
}
