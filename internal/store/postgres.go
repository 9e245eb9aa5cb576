package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/pbaille/gymlog/internal/domain"
)

// Postgres implements the same normalized schema and transaction
// protocol as SQLite on PostgreSQL. Catalog upserts use
// ON CONFLICT DO NOTHING followed by a key lookup, so concurrent
// creates for the same date or exercise cannot both insert.
type Postgres struct {
	db *sql.DB
}

// NewPostgres connects using a lib/pq connection string (DATABASE_URL)
func NewPostgres(databaseURL string) (*Postgres, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	p := &Postgres{db: db}
	if err := p.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS workout (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS exercise (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS exercise_log (
		id TEXT PRIMARY KEY,
		workout_id TEXT NOT NULL REFERENCES workout(id) ON DELETE CASCADE,
		exercise_id TEXT NOT NULL REFERENCES exercise(id),
		weight DOUBLE PRECISION NOT NULL,
		reps INTEGER NOT NULL,
		sets INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_exercise_log_workout ON exercise_log(workout_id);
	`

	if _, err := p.db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

func (p *Postgres) CreateEntry(in domain.EntryInput) (*domain.LogEntry, error) {
	tx, err := p.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin create: %w", err)
	}
	defer tx.Rollback()

	workoutID, err := upsertCatalogRow(tx, "workout", "date", in.Date)
	if err != nil {
		return nil, err
	}

	exerciseID, err := upsertCatalogRow(tx, "exercise", "name", in.Exercise)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	_, err = tx.Exec(
		"INSERT INTO exercise_log (id, workout_id, exercise_id, weight, reps, sets, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)",
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

func (p *Postgres) ListSessions() ([]domain.Session, error) {
	rows, err := p.db.Query(`
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

func (p *Postgres) UpdateEntry(id string, patch domain.EntryPatch) (*domain.LogEntry, error) {
	tx, err := p.db.Begin()
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
		WHERE l.id = $1
	`, id).Scan(&entry.ID, &exerciseID, &entry.Exercise, &entry.Weight, &entry.Reps, &entry.Sets)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load log: %w", err)
	}

	if patch.Exercise != nil && *patch.Exercise != entry.Exercise {
		exerciseID, err = upsertCatalogRow(tx, "exercise", "name", *patch.Exercise)
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
		"UPDATE exercise_log SET exercise_id = $1, weight = $2, reps = $3, sets = $4 WHERE id = $5",
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

func (p *Postgres) DeleteEntry(id string) error {
	tx, err := p.db.Begin()
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	var workoutID string
	err = tx.QueryRow("SELECT workout_id FROM exercise_log WHERE id = $1", id).Scan(&workoutID)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load log: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM exercise_log WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete log: %w", err)
	}

	var remaining int
	err = tx.QueryRow("SELECT COUNT(*) FROM exercise_log WHERE workout_id = $1", workoutID).Scan(&remaining)
	if err != nil {
		return fmt.Errorf("count logs: %w", err)
	}
	if remaining == 0 {
		if _, err := tx.Exec("DELETE FROM workout WHERE id = $1", workoutID); err != nil {
			return fmt.Errorf("delete workout: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

// upsertCatalogRow inserts the natural key if absent, then resolves its
// surrogate key. The table and column names are compile-time constants
// at every call site.
func upsertCatalogRow(tx *sql.Tx, table, column, value string) (string, error) {
	insert := fmt.Sprintf(
		"INSERT INTO %s (id, %s, created_at) VALUES ($1, $2, $3) ON CONFLICT (%s) DO NOTHING",
		table, column, column,
	)
	if _, err := tx.Exec(insert, uuid.New().String(), value, time.Now()); err != nil {
		return "", fmt.Errorf("upsert %s: %w", table, err)
	}

	var id string
	query := fmt.Sprintf("SELECT id FROM %s WHERE %s = $1", table, column)
	if err := tx.QueryRow(query, value).Scan(&id); err != nil {
		return "", fmt.Errorf("resolve %s id: %w", table, err)
	}
	return id, nil
}
