package store

import (
	"path/filepath"
	"testing"

	"github.com/pbaille/gymlog/internal/domain"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "gymlog.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteContract(t *testing.T) {
	testStoreContract(t, newTestSQLite(t))
}

func TestSQLiteExerciseCatalogDedupes(t *testing.T) {
	s := newTestSQLite(t)

	// Same exercise on two dates must share one catalog row
	if _, err := s.CreateEntry(input("2024-01-01", "Squat", 100, 5, 3)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateEntry(input("2024-01-02", "Squat", 105, 5, 3)); err != nil {
		t.Fatalf("create: %v", err)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM exercise WHERE name = ?", "Squat").Scan(&count); err != nil {
		t.Fatalf("count catalog rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("catalog rows for Squat = %d, want 1", count)
	}
}

func TestSQLiteWorkoutRowPerDate(t *testing.T) {
	s := newTestSQLite(t)

	if _, err := s.CreateEntry(input("2024-01-01", "Squat", 100, 5, 3)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateEntry(input("2024-01-01", "Bench", 80, 8, 3)); err != nil {
		t.Fatalf("create: %v", err)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM workout").Scan(&count); err != nil {
		t.Fatalf("count workouts: %v", err)
	}
	if count != 1 {
		t.Fatalf("workout rows = %d, want 1", count)
	}
}

func TestSQLiteDeleteLastLogRemovesWorkout(t *testing.T) {
	s := newTestSQLite(t)

	entry, err := s.CreateEntry(input("2024-01-01", "Squat", 100, 5, 3))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.DeleteEntry(entry.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var workouts, catalog int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM workout").Scan(&workouts); err != nil {
		t.Fatalf("count workouts: %v", err)
	}
	if workouts != 0 {
		t.Fatalf("workout rows after last delete = %d, want 0", workouts)
	}

	// The exercise catalog survives deletes
	if err := s.db.QueryRow("SELECT COUNT(*) FROM exercise").Scan(&catalog); err != nil {
		t.Fatalf("count catalog: %v", err)
	}
	if catalog != 1 {
		t.Fatalf("catalog rows after delete = %d, want 1", catalog)
	}
}

func TestSQLiteUpdateExerciseRelinksCatalog(t *testing.T) {
	s := newTestSQLite(t)

	entry, err := s.CreateEntry(input("2024-01-01", "Squat", 100, 5, 3))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Front Squat"
	updated, err := s.UpdateEntry(entry.ID, domain.EntryPatch{Exercise: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Exercise != "Front Squat" {
		t.Fatalf("exercise = %q, want Front Squat", updated.Exercise)
	}

	sessions, _ := s.ListSessions()
	if sessions[0].Exercises[0].Exercise != "Front Squat" {
		t.Fatalf("catalog link not updated: %+v", sessions[0].Exercises[0])
	}

	// Renaming back reuses the original catalog row
	name = "Squat"
	if _, err := s.UpdateEntry(entry.ID, domain.EntryPatch{Exercise: &name}); err != nil {
		t.Fatalf("rename back: %v", err)
	}
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM exercise").Scan(&count); err != nil {
		t.Fatalf("count catalog: %v", err)
	}
	if count != 2 {
		t.Fatalf("catalog rows = %d, want 2", count)
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gymlog.db")

	s, err := New(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.CreateEntry(input("2024-01-01", "Squat", 100, 5, 3)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s, err = New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	sessions, err := s.ListSessions()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Exercises[0].Exercise != "Squat" {
		t.Fatalf("data lost across reopen: %+v", sessions)
	}
}
