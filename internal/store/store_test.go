package store

import (
	"errors"
	"testing"

	"github.com/pbaille/gymlog/internal/domain"
)

func input(date, exercise string, weight float64, reps, sets int) domain.EntryInput {
	return domain.EntryInput{
		Date:     date,
		Exercise: exercise,
		Weight:   weight,
		Reps:     reps,
		Sets:     sets,
	}
}

// testStoreContract runs the behavior every backend must share: session
// grouping by date, insertion order, partial updates, deletes that
// destroy empty sessions, and not-found signaling.
func testStoreContract(t *testing.T, s Store) {
	t.Helper()

	squat, err := s.CreateEntry(input("2024-01-01", "Squat", 100, 5, 3))
	if err != nil {
		t.Fatalf("create squat: %v", err)
	}
	if squat.ID == "" {
		t.Fatal("created entry has no id")
	}

	bench, err := s.CreateEntry(input("2024-01-01", "Bench", 80, 8, 3))
	if err != nil {
		t.Fatalf("create bench: %v", err)
	}
	if bench.ID == squat.ID {
		t.Fatal("entry ids must be unique")
	}

	deadlift, err := s.CreateEntry(input("2024-01-02", "Deadlift", 140, 5, 1))
	if err != nil {
		t.Fatalf("create deadlift: %v", err)
	}

	// Same date groups into one session, in insertion order
	sessions, err := s.ListSessions()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("session count = %d, want 2", len(sessions))
	}
	first := sessions[0]
	if first.Date != "2024-01-01" || len(first.Exercises) != 2 {
		t.Fatalf("unexpected first session: %+v", first)
	}
	if first.Exercises[0].Exercise != "Squat" || first.Exercises[1].Exercise != "Bench" {
		t.Errorf("entries out of insertion order: %+v", first.Exercises)
	}
	if sessions[1].Date != "2024-01-02" || sessions[1].Exercises[0].ID != deadlift.ID {
		t.Fatalf("unexpected second session: %+v", sessions[1])
	}

	// Partial update leaves unspecified fields untouched
	newWeight := 105.0
	updated, err := s.UpdateEntry(squat.ID, domain.EntryPatch{Weight: &newWeight})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Weight != 105 {
		t.Errorf("weight = %g, want 105", updated.Weight)
	}
	if updated.Exercise != "Squat" || updated.Reps != 5 || updated.Sets != 3 {
		t.Errorf("untouched fields changed: %+v", updated)
	}

	// Update and delete against unknown ids signal not-found without
	// mutating anything
	if _, err := s.UpdateEntry("no-such-id", domain.EntryPatch{Weight: &newWeight}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing id: err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteEntry("no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete missing id: err = %v, want ErrNotFound", err)
	}
	sessions, err = s.ListSessions()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 2 || len(sessions[0].Exercises) != 2 {
		t.Fatal("failed operations must not mutate the store")
	}

	// Deleting one of several entries keeps the session
	if err := s.DeleteEntry(squat.ID); err != nil {
		t.Fatalf("delete squat: %v", err)
	}
	sessions, _ = s.ListSessions()
	if len(sessions) != 2 {
		t.Fatalf("session count after partial delete = %d, want 2", len(sessions))
	}
	if len(sessions[0].Exercises) != 1 || sessions[0].Exercises[0].Exercise != "Bench" {
		t.Fatalf("unexpected remaining entries: %+v", sessions[0].Exercises)
	}

	// Deleting the last entry destroys its session
	if err := s.DeleteEntry(bench.ID); err != nil {
		t.Fatalf("delete bench: %v", err)
	}
	sessions, _ = s.ListSessions()
	if len(sessions) != 1 || sessions[0].Date != "2024-01-02" {
		t.Fatalf("session not destroyed with last entry: %+v", sessions)
	}

	if err := s.DeleteEntry(deadlift.ID); err != nil {
		t.Fatalf("delete deadlift: %v", err)
	}
	sessions, _ = s.ListSessions()
	if len(sessions) != 0 {
		t.Fatalf("store should be empty, got %+v", sessions)
	}
}
