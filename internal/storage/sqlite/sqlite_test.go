package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/storage"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustCreateExercise(t *testing.T, s *Store, name, bodyPart, category string) *models.Exercise {
	t.Helper()
	e := &models.Exercise{ID: uuid.New(), Name: name, BodyPart: bodyPart, Category: category}
	if err := s.CreateExercise(context.Background(), e); err != nil {
		t.Fatalf("create exercise %q: %v", name, err)
	}
	return e
}

// TestExerciseCRUD verifies the exercise catalog round-trips through the store.
func TestExerciseCRUD(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	e := mustCreateExercise(t, s, "Bench Press", "Chest", "Barbell")

	got, err := s.GetExercise(ctx, e.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Bench Press" || got.BodyPart != "Chest" || got.Category != "Barbell" {
		t.Errorf("got %+v, want Bench Press/Chest/Barbell", got)
	}

	e.Name = "Incline Bench Press"
	if err := s.UpdateExercise(ctx, e); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err = s.GetExercise(ctx, e.ID)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.Name != "Incline Bench Press" {
		t.Errorf("name = %q, want %q", got.Name, "Incline Bench Press")
	}

	if err := s.DeleteExercise(ctx, e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetExercise(ctx, e.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("get after delete: err = %v, want ErrNotFound", err)
	}
}

// TestUpdateMissingExercise verifies updating a nonexistent row reports ErrNotFound.
func TestUpdateMissingExercise(t *testing.T) {
	s := openTest(t)
	e := &models.Exercise{ID: uuid.New(), Name: "Ghost"}
	if err := s.UpdateExercise(context.Background(), e); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// TestListExercisesFilter verifies search and attribute filters.
func TestListExercisesFilter(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	mustCreateExercise(t, s, "Bench Press", "Chest", "Barbell")
	mustCreateExercise(t, s, "Dumbbell Press", "Chest", "Dumbbell")
	mustCreateExercise(t, s, "Squat", "Legs", "Barbell")

	all, err := s.ListExercises(ctx, storage.ExerciseFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3", len(all))
	}

	pressed, err := s.ListExercises(ctx, storage.ExerciseFilter{Search: "press"})
	if err != nil {
		t.Fatalf("list search: %v", err)
	}
	if len(pressed) != 2 {
		t.Errorf("len(search press) = %d, want 2", len(pressed))
	}

	chest, err := s.ListExercises(ctx, storage.ExerciseFilter{BodyPart: "Chest", Category: "Barbell"})
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(chest) != 1 || chest[0].Name != "Bench Press" {
		t.Errorf("filtered = %+v, want only Bench Press", chest)
	}
}

// TestTemplateRoundTrip verifies template creation preserves exercise order
// and deletion leaves the referenced exercises intact.
func TestTemplateRoundTrip(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	bench := mustCreateExercise(t, s, "Bench Press", "Chest", "Barbell")
	squat := mustCreateExercise(t, s, "Squat", "Legs", "Barbell")

	tpl := &models.Template{
		ID:        uuid.New(),
		Name:      "Push Day",
		Exercises: []models.Exercise{*squat, *bench}, // deliberate non-alphabetical order
	}
	if err := s.CreateTemplate(ctx, tpl); err != nil {
		t.Fatalf("create template: %v", err)
	}

	got, err := s.GetTemplate(ctx, tpl.ID)
	if err != nil {
		t.Fatalf("get template: %v", err)
	}
	if len(got.Exercises) != 2 {
		t.Fatalf("len(exercises) = %d, want 2", len(got.Exercises))
	}
	if got.Exercises[0].ID != squat.ID || got.Exercises[1].ID != bench.ID {
		t.Errorf("exercise order not preserved: %+v", got.Exercises)
	}

	if err := s.DeleteTemplate(ctx, tpl.ID); err != nil {
		t.Fatalf("delete template: %v", err)
	}
	if _, err := s.GetTemplate(ctx, tpl.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("get after delete: err = %v, want ErrNotFound", err)
	}
	// Exercises survive template deletion
	if _, err := s.GetExercise(ctx, bench.ID); err != nil {
		t.Errorf("exercise should survive template deletion: %v", err)
	}
}

// TestDeleteExerciseCascades verifies deleting an exercise removes its working
// sets and its template memberships, but not the template itself.
func TestDeleteExerciseCascades(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	bench := mustCreateExercise(t, s, "Bench Press", "Chest", "Barbell")
	squat := mustCreateExercise(t, s, "Squat", "Legs", "Barbell")

	tpl := &models.Template{ID: uuid.New(), Name: "Full Body", Exercises: []models.Exercise{*bench, *squat}}
	if err := s.CreateTemplate(ctx, tpl); err != nil {
		t.Fatalf("create template: %v", err)
	}

	ws := &models.WorkingSet{ID: uuid.New(), ExerciseID: bench.ID, CreatedAt: time.Now(), Reps: 8, Weight: 135}
	if err := s.InsertWorkingSet(ctx, ws); err != nil {
		t.Fatalf("insert working set: %v", err)
	}

	if err := s.DeleteExercise(ctx, bench.ID); err != nil {
		t.Fatalf("delete exercise: %v", err)
	}

	if _, err := s.GetWorkingSet(ctx, ws.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("working set should be gone, err = %v", err)
	}

	got, err := s.GetTemplate(ctx, tpl.ID)
	if err != nil {
		t.Fatalf("template should survive: %v", err)
	}
	if len(got.Exercises) != 1 || got.Exercises[0].ID != squat.ID {
		t.Errorf("template exercises = %+v, want only Squat", got.Exercises)
	}
}

// TestWorkingSetLifecycle verifies inserts, updates, ordered listing and the
// delete-is-a-no-op-when-missing contract.
func TestWorkingSetLifecycle(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	bench := mustCreateExercise(t, s, "Bench Press", "Chest", "Barbell")
	base := time.Now()

	first := &models.WorkingSet{ID: uuid.New(), ExerciseID: bench.ID, CreatedAt: base, Reps: 10, Weight: 135}
	second := &models.WorkingSet{ID: uuid.New(), ExerciseID: bench.ID, CreatedAt: base.Add(time.Second), Reps: 8, Weight: 140}
	for _, ws := range []*models.WorkingSet{second, first} { // insert out of order
		if err := s.InsertWorkingSet(ctx, ws); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	first.IsCompleted = true
	if err := s.UpdateWorkingSet(ctx, first); err != nil {
		t.Fatalf("update: %v", err)
	}

	sets, err := s.ListWorkingSets(ctx, bench.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sets) != 2 {
		t.Fatalf("len(sets) = %d, want 2", len(sets))
	}
	if sets[0].ID != first.ID || sets[1].ID != second.ID {
		t.Errorf("sets not ordered by creation time: %+v", sets)
	}
	if !sets[0].IsCompleted {
		t.Error("first set should be completed after update")
	}

	// Deleting a missing set is a no-op
	if err := s.DeleteWorkingSet(ctx, uuid.New()); err != nil {
		t.Errorf("delete missing: %v", err)
	}

	if err := s.PurgeWorkingSets(ctx, []uuid.UUID{bench.ID}); err != nil {
		t.Fatalf("purge: %v", err)
	}
	sets, err = s.ListWorkingSets(ctx, bench.ID)
	if err != nil {
		t.Fatalf("list after purge: %v", err)
	}
	if len(sets) != 0 {
		t.Errorf("len(sets) = %d after purge, want 0", len(sets))
	}
}

func sampleWorkout(bench *models.Exercise, start time.Time) *models.WorkoutSession {
	end := start.Add(45 * time.Minute)
	ws := &models.WorkoutSession{
		ID:          uuid.New(),
		Name:        "Push Day",
		StartTime:   start,
		EndTime:     &end,
		IsCompleted: true,
	}
	es := models.ExerciseSession{
		ID:               uuid.New(),
		WorkoutSessionID: ws.ID,
		ExerciseName:     bench.Name,
		BodyPart:         bench.BodyPart,
		Category:         bench.Category,
	}
	for i, set := range []struct {
		reps   int
		weight float64
	}{{10, 135}, {8, 140}, {6, 145}} {
		es.Sets = append(es.Sets, models.CompletedSet{
			ID:                uuid.New(),
			ExerciseSessionID: es.ID,
			SetNumber:         i + 1,
			Reps:              set.reps,
			Weight:            set.weight,
			CompletedAt:       end,
		})
	}
	ws.Exercises = []models.ExerciseSession{es}
	return ws
}

// TestSaveWorkoutSession verifies the finish transaction persists the full
// tree and purges the exercises' working sets atomically.
func TestSaveWorkoutSession(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	bench := mustCreateExercise(t, s, "Bench Press", "Chest", "Barbell")
	set := &models.WorkingSet{ID: uuid.New(), ExerciseID: bench.ID, CreatedAt: time.Now(), Reps: 10, Weight: 135, IsCompleted: true}
	if err := s.InsertWorkingSet(ctx, set); err != nil {
		t.Fatalf("insert working set: %v", err)
	}

	ws := sampleWorkout(bench, time.Now().Add(-time.Hour))
	if err := s.SaveWorkoutSession(ctx, ws, []uuid.UUID{bench.ID}); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.GetWorkoutSession(ctx, ws.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Push Day" || !got.IsCompleted || got.EndTime == nil {
		t.Errorf("session = %+v, want completed Push Day with end time", got)
	}
	if len(got.Exercises) != 1 {
		t.Fatalf("len(exercises) = %d, want 1", len(got.Exercises))
	}
	if got.Exercises[0].ExerciseName != "Bench Press" {
		t.Errorf("exercise name = %q, want %q", got.Exercises[0].ExerciseName, "Bench Press")
	}
	if len(got.Exercises[0].Sets) != 3 {
		t.Fatalf("len(sets) = %d, want 3", len(got.Exercises[0].Sets))
	}
	for i, cs := range got.Exercises[0].Sets {
		if cs.SetNumber != i+1 {
			t.Errorf("set %d: set_number = %d, want %d", i, cs.SetNumber, i+1)
		}
	}

	// Working sets purged in the same transaction
	remaining, err := s.ListWorkingSets(ctx, bench.ID)
	if err != nil {
		t.Fatalf("list working sets: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("len(working sets) = %d after save, want 0", len(remaining))
	}
}

// TestListWorkoutSessionsOrder verifies history lists newest first and
// respects the limit.
func TestListWorkoutSessionsOrder(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	bench := mustCreateExercise(t, s, "Bench Press", "Chest", "Barbell")
	base := time.Now().Add(-24 * time.Hour)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		ws := sampleWorkout(bench, base.Add(time.Duration(i)*time.Hour))
		if err := s.SaveWorkoutSession(ctx, ws, nil); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
		ids = append(ids, ws.ID)
	}

	sessions, err := s.ListWorkoutSessions(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("len = %d, want 3", len(sessions))
	}
	if sessions[0].ID != ids[2] || sessions[2].ID != ids[0] {
		t.Errorf("sessions not newest-first: %+v", sessions)
	}

	limited, err := s.ListWorkoutSessions(ctx, 2)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("len(limited) = %d, want 2", len(limited))
	}
}

// TestRecentCompletedSets verifies history lookup by snapshotted exercise
// name returns the most recent sets first, spanning multiple workouts.
func TestRecentCompletedSets(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	bench := mustCreateExercise(t, s, "Bench Press", "Chest", "Barbell")
	base := time.Now().Add(-48 * time.Hour)

	older := sampleWorkout(bench, base)
	newer := sampleWorkout(bench, base.Add(24*time.Hour))
	for _, ws := range []*models.WorkoutSession{older, newer} {
		if err := s.SaveWorkoutSession(ctx, ws, nil); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	sets, err := s.RecentCompletedSets(ctx, "Bench Press", 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(sets) != 3 {
		t.Fatalf("len = %d, want 3", len(sets))
	}
	// All three come from the newer workout, highest set number first.
	for _, cs := range sets {
		if cs.ExerciseSessionID != newer.Exercises[0].ID {
			t.Errorf("set %v not from the newest workout", cs.ID)
		}
	}
	if sets[0].SetNumber != 3 || sets[1].SetNumber != 2 || sets[2].SetNumber != 1 {
		t.Errorf("set numbers = %d,%d,%d, want 3,2,1", sets[0].SetNumber, sets[1].SetNumber, sets[2].SetNumber)
	}

	none, err := s.RecentCompletedSets(ctx, "Deadlift", 3)
	if err != nil {
		t.Fatalf("recent unknown: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("len = %d for unknown exercise, want 0", len(none))
	}
}

// TestStats verifies aggregate statistics over archived data.
func TestStats(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	bench := mustCreateExercise(t, s, "Bench Press", "Chest", "Barbell")
	ws := sampleWorkout(bench, time.Now().Add(-time.Hour))
	if err := s.SaveWorkoutSession(ctx, ws, nil); err != nil {
		t.Fatalf("save: %v", err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalWorkouts != 1 {
		t.Errorf("total_workouts = %d, want 1", stats.TotalWorkouts)
	}
	if stats.TotalCompletedSets != 3 {
		t.Errorf("total_completed_sets = %d, want 3", stats.TotalCompletedSets)
	}
	if stats.TotalReps != 24 {
		t.Errorf("total_reps = %d, want 24", stats.TotalReps)
	}
	wantTonnage := 10*135.0 + 8*140.0 + 6*145.0
	if stats.TotalTonnage != wantTonnage {
		t.Errorf("total_tonnage = %v, want %v", stats.TotalTonnage, wantTonnage)
	}
	if stats.TotalExercises != 1 {
		t.Errorf("total_exercises = %d, want 1", stats.TotalExercises)
	}
	if stats.LastWorkout == nil {
		t.Error("last_workout should be set")
	}
}
