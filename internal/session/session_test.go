package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/storage"
	"github.com/meltforce/liftlog/internal/storage/sqlite"
)

func newTestEngine(t *testing.T) (*Engine, storage.Store) {
	t.Helper()
	store, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, log), store
}

func createExercise(t *testing.T, store storage.Store, name string) *models.Exercise {
	t.Helper()
	e := &models.Exercise{ID: uuid.New(), Name: name, BodyPart: "Chest", Category: "Barbell"}
	if err := store.CreateExercise(context.Background(), e); err != nil {
		t.Fatalf("create exercise: %v", err)
	}
	return e
}

func createTemplate(t *testing.T, store storage.Store, name string, exercises ...*models.Exercise) *models.Template {
	t.Helper()
	tpl := &models.Template{ID: uuid.New(), Name: name}
	for _, e := range exercises {
		tpl.Exercises = append(tpl.Exercises, *e)
	}
	if err := store.CreateTemplate(context.Background(), tpl); err != nil {
		t.Fatalf("create template: %v", err)
	}
	return tpl
}

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }
func boolp(v bool) *bool        { return &v }

// completeSet fills in reps/weight and marks the set completed.
func completeSet(t *testing.T, e *Engine, id uuid.UUID, reps int, weight float64) {
	t.Helper()
	_, err := e.UpdateSet(context.Background(), id, SetUpdate{
		Reps:        intp(reps),
		Weight:      floatp(weight),
		IsCompleted: boolp(true),
	})
	if err != nil {
		t.Fatalf("complete set: %v", err)
	}
}

// TestStartEmpty verifies starting with no template yields an active session
// named "Custom Workout" with an empty exercise list.
func TestStartEmpty(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	if e.State() != Idle {
		t.Fatalf("state = %v, want idle", e.State())
	}
	if err := e.StartEmpty(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if e.State() != Active {
		t.Errorf("state = %v, want active", e.State())
	}
	if len(e.WorkingExercises()) != 0 {
		t.Errorf("exercises = %d, want 0", len(e.WorkingExercises()))
	}

	view, err := e.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if view.Name != "Custom Workout" {
		t.Errorf("name = %q, want %q", view.Name, "Custom Workout")
	}
}

// TestOperationsRequireActiveSession verifies mutating operations are rejected
// while idle.
func TestOperationsRequireActiveSession(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()
	bench := createExercise(t, store, "Bench Press")

	if err := e.AddExercises(ctx, []uuid.UUID{bench.ID}); !errors.Is(err, ErrNoActiveWorkout) {
		t.Errorf("AddExercises err = %v, want ErrNoActiveWorkout", err)
	}
	if _, err := e.AddSet(ctx, bench.ID); !errors.Is(err, ErrNoActiveWorkout) {
		t.Errorf("AddSet err = %v, want ErrNoActiveWorkout", err)
	}
	if _, err := e.Finish(ctx); !errors.Is(err, ErrNoActiveWorkout) {
		t.Errorf("Finish err = %v, want ErrNoActiveWorkout", err)
	}
	// Cancel while idle is a no-op, not an error
	if err := e.Cancel(ctx); err != nil {
		t.Errorf("Cancel err = %v, want nil", err)
	}
}

// TestAddSetRequiresExerciseInWorkout verifies sets can only be added to
// exercises on the working list.
func TestAddSetRequiresExerciseInWorkout(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()
	bench := createExercise(t, store, "Bench Press")

	if err := e.StartEmpty(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := e.AddSet(ctx, bench.ID); !errors.Is(err, ErrExerciseNotInWorkout) {
		t.Errorf("err = %v, want ErrExerciseNotInWorkout", err)
	}
}

// TestAllSetsCompleted verifies the finish gate: false with no sets, false
// with any incomplete set, true only when at least one set exists and all are
// complete.
func TestAllSetsCompleted(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()
	bench := createExercise(t, store, "Bench Press")

	if err := e.StartEmpty(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := e.AddExercises(ctx, []uuid.UUID{bench.ID}); err != nil {
		t.Fatalf("add exercises: %v", err)
	}

	done, err := e.AllSetsCompleted(ctx)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if done {
		t.Error("empty session should not count as all-completed")
	}

	s1, err := e.AddSet(ctx, bench.ID)
	if err != nil {
		t.Fatalf("add set: %v", err)
	}
	s2, err := e.AddSet(ctx, bench.ID)
	if err != nil {
		t.Fatalf("add set: %v", err)
	}

	completeSet(t, e, s1.ID, 10, 135)
	done, _ = e.AllSetsCompleted(ctx)
	if done {
		t.Error("one incomplete set should block completion")
	}

	completeSet(t, e, s2.ID, 8, 140)
	done, _ = e.AllSetsCompleted(ctx)
	if !done {
		t.Error("all sets complete, expected true")
	}

	if _, err := e.Finish(ctx); err != nil {
		t.Errorf("finish: %v", err)
	}
}

// TestFinishRejectedWithIncompleteSets verifies Finish fails the transition
// gate and the session stays active.
func TestFinishRejectedWithIncompleteSets(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()
	bench := createExercise(t, store, "Bench Press")

	if err := e.StartEmpty(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := e.AddExercises(ctx, []uuid.UUID{bench.ID}); err != nil {
		t.Fatalf("add exercises: %v", err)
	}
	if _, err := e.AddSet(ctx, bench.ID); err != nil {
		t.Fatalf("add set: %v", err)
	}

	if _, err := e.Finish(ctx); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("err = %v, want ErrInvalidTransition", err)
	}
	if e.State() != Active {
		t.Errorf("state = %v after rejected finish, want active", e.State())
	}

	// No history was written
	sessions, err := store.ListWorkoutSessions(ctx, 0)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("history len = %d, want 0", len(sessions))
	}
}

// TestFinishArchivesAndPurges verifies the core promotion: completed working
// sets become dense-numbered history, every working set is purged, and the
// archived set count equals the completed working-set count.
func TestFinishArchivesAndPurges(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()
	bench := createExercise(t, store, "Bench Press")
	squat := createExercise(t, store, "Squat")

	if err := e.StartEmpty(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := e.AddExercises(ctx, []uuid.UUID{bench.ID, squat.ID}); err != nil {
		t.Fatalf("add exercises: %v", err)
	}

	for i, spec := range []struct {
		reps   int
		weight float64
	}{{10, 135}, {8, 140}} {
		s, err := e.AddSet(ctx, bench.ID)
		if err != nil {
			t.Fatalf("add set %d: %v", i, err)
		}
		completeSet(t, e, s.ID, spec.reps, spec.weight)
	}
	s, err := e.AddSet(ctx, squat.ID)
	if err != nil {
		t.Fatalf("add squat set: %v", err)
	}
	completeSet(t, e, s.ID, 5, 225)

	ws, err := e.Finish(ctx)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if e.State() != Idle {
		t.Errorf("state = %v after finish, want idle", e.State())
	}
	if !ws.IsCompleted || ws.EndTime == nil {
		t.Errorf("session = %+v, want completed with end time", ws)
	}
	if ws.TemplateName != "" {
		t.Errorf("template_name = %q for a custom workout, want empty", ws.TemplateName)
	}

	got, err := store.GetWorkoutSession(ctx, ws.ID)
	if err != nil {
		t.Fatalf("get archived: %v", err)
	}
	if len(got.Exercises) != 2 {
		t.Fatalf("len(exercises) = %d, want 2", len(got.Exercises))
	}
	totalSets := 0
	for _, es := range got.Exercises {
		for i, cs := range es.Sets {
			if cs.SetNumber != i+1 {
				t.Errorf("%s set %d: set_number = %d, want %d", es.ExerciseName, i, cs.SetNumber, i+1)
			}
		}
		totalSets += len(es.Sets)
	}
	if totalSets != 3 {
		t.Errorf("archived sets = %d, want 3", totalSets)
	}

	// Every working set is gone, for every exercise
	for _, ex := range []*models.Exercise{bench, squat} {
		remaining, err := store.ListWorkingSets(ctx, ex.ID)
		if err != nil {
			t.Fatalf("list working sets: %v", err)
		}
		if len(remaining) != 0 {
			t.Errorf("%s has %d working sets after finish, want 0", ex.Name, len(remaining))
		}
	}
}

// TestDenseSetNumbersAfterRemoval verifies set numbers stay a dense 1..N
// sequence in creation order even when a middle set is removed before finish.
func TestDenseSetNumbersAfterRemoval(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()
	bench := createExercise(t, store, "Bench Press")

	if err := e.StartEmpty(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := e.AddExercises(ctx, []uuid.UUID{bench.ID}); err != nil {
		t.Fatalf("add exercises: %v", err)
	}

	var sets []*models.WorkingSet
	for i := 0; i < 3; i++ {
		s, err := e.AddSet(ctx, bench.ID)
		if err != nil {
			t.Fatalf("add set %d: %v", i, err)
		}
		sets = append(sets, s)
	}

	// Complete out of creation order, then drop the middle set.
	completeSet(t, e, sets[2].ID, 6, 145)
	completeSet(t, e, sets[0].ID, 10, 135)
	completeSet(t, e, sets[1].ID, 8, 140)
	if err := e.RemoveSet(ctx, sets[1].ID); err != nil {
		t.Fatalf("remove set: %v", err)
	}

	ws, err := e.Finish(ctx)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}

	got, err := store.GetWorkoutSession(ctx, ws.ID)
	if err != nil {
		t.Fatalf("get archived: %v", err)
	}
	archived := got.Exercises[0].Sets
	if len(archived) != 2 {
		t.Fatalf("len(sets) = %d, want 2", len(archived))
	}
	// Creation order, not completion order: first created set is set 1.
	if archived[0].SetNumber != 1 || archived[0].Reps != 10 || archived[0].Weight != 135 {
		t.Errorf("set 1 = %+v, want 10x135", archived[0])
	}
	if archived[1].SetNumber != 2 || archived[1].Reps != 6 || archived[1].Weight != 145 {
		t.Errorf("set 2 = %+v, want 6x145", archived[1])
	}
}

// TestCancelLeavesNothing verifies cancelling purges every working set and
// writes no history.
func TestCancelLeavesNothing(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()
	bench := createExercise(t, store, "Bench Press")

	if err := e.StartEmpty(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := e.AddExercises(ctx, []uuid.UUID{bench.ID}); err != nil {
		t.Fatalf("add exercises: %v", err)
	}
	s, err := e.AddSet(ctx, bench.ID)
	if err != nil {
		t.Fatalf("add set: %v", err)
	}
	completeSet(t, e, s.ID, 10, 135)

	if err := e.Cancel(ctx); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if e.State() != Idle {
		t.Errorf("state = %v, want idle", e.State())
	}

	remaining, err := store.ListWorkingSets(ctx, bench.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("working sets = %d after cancel, want 0", len(remaining))
	}
	sessions, err := store.ListWorkoutSessions(ctx, 0)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("history = %d after cancel, want 0", len(sessions))
	}
}

// TestStartFromTemplateImplicitCancel verifies starting a template workout
// while another workout is active discards the old one, never merges.
func TestStartFromTemplateImplicitCancel(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()
	bench := createExercise(t, store, "Bench Press")
	squat := createExercise(t, store, "Squat")
	tpl := createTemplate(t, store, "Leg Day", squat)

	if err := e.StartEmpty(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := e.AddExercises(ctx, []uuid.UUID{bench.ID}); err != nil {
		t.Fatalf("add exercises: %v", err)
	}
	if _, err := e.AddSet(ctx, bench.ID); err != nil {
		t.Fatalf("add set: %v", err)
	}

	if err := e.StartFromTemplate(ctx, tpl.ID); err != nil {
		t.Fatalf("start from template: %v", err)
	}

	exercises := e.WorkingExercises()
	if len(exercises) != 1 || exercises[0].ID != squat.ID {
		t.Errorf("exercises = %+v, want only Squat", exercises)
	}
	// The old workout's sets were purged, not merged.
	old, err := store.ListWorkingSets(ctx, bench.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(old) != 0 {
		t.Errorf("old workout sets = %d, want 0", len(old))
	}
	view, err := e.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if view.Name != "Leg Day" {
		t.Errorf("name = %q, want %q", view.Name, "Leg Day")
	}
}

// TestTemplateSeedsPreviousPerformance verifies a template start prefills
// each exercise's sets from the last archived performance, chronologically:
// after archiving 10x135, 8x140, 6x145 the new session starts with exactly
// those three sets, in that order, all incomplete.
func TestTemplateSeedsPreviousPerformance(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()
	bench := createExercise(t, store, "Bench Press")
	tpl := createTemplate(t, store, "Push Day", bench)

	// First session: perform and archive three sets.
	if err := e.StartFromTemplate(ctx, tpl.ID); err != nil {
		t.Fatalf("first start: %v", err)
	}
	for _, spec := range []struct {
		reps   int
		weight float64
	}{{10, 135}, {8, 140}, {6, 145}} {
		s, err := e.AddSet(ctx, bench.ID)
		if err != nil {
			t.Fatalf("add set: %v", err)
		}
		completeSet(t, e, s.ID, spec.reps, spec.weight)
	}
	ws, err := e.Finish(ctx)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if ws.TemplateName != "Push Day" {
		t.Errorf("template_name = %q, want %q", ws.TemplateName, "Push Day")
	}

	// Second session: the template seeds last performance.
	if err := e.StartFromTemplate(ctx, tpl.ID); err != nil {
		t.Fatalf("second start: %v", err)
	}
	seeded, err := e.WorkingSets(ctx, bench.ID)
	if err != nil {
		t.Fatalf("working sets: %v", err)
	}
	if len(seeded) != 3 {
		t.Fatalf("seeded sets = %d, want 3", len(seeded))
	}
	want := []struct {
		reps   int
		weight float64
	}{{10, 135}, {8, 140}, {6, 145}}
	for i, s := range seeded {
		if s.Reps != want[i].reps || s.Weight != want[i].weight {
			t.Errorf("seed %d = %dx%v, want %dx%v", i+1, s.Reps, s.Weight, want[i].reps, want[i].weight)
		}
		if s.IsCompleted {
			t.Errorf("seed %d should start incomplete", i+1)
		}
	}
}

// TestTemplateSeedsNothingWithoutHistory verifies a first-ever template start
// yields zero sets per exercise.
func TestTemplateSeedsNothingWithoutHistory(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()
	bench := createExercise(t, store, "Bench Press")
	tpl := createTemplate(t, store, "Push Day", bench)

	if err := e.StartFromTemplate(ctx, tpl.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	sets, err := e.WorkingSets(ctx, bench.ID)
	if err != nil {
		t.Fatalf("working sets: %v", err)
	}
	if len(sets) != 0 {
		t.Errorf("sets = %d for a fresh exercise, want 0", len(sets))
	}
}

// TestRenameDetachesHistory verifies history is matched by the snapshotted
// exercise name: renaming the catalog exercise leaves old history behind and
// seeds nothing.
func TestRenameDetachesHistory(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()
	bench := createExercise(t, store, "Bench Press")
	tpl := createTemplate(t, store, "Push Day", bench)

	if err := e.StartFromTemplate(ctx, tpl.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	s, err := e.AddSet(ctx, bench.ID)
	if err != nil {
		t.Fatalf("add set: %v", err)
	}
	completeSet(t, e, s.ID, 10, 135)
	archived, err := e.Finish(ctx)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}

	// Rename the catalog exercise.
	bench.Name = "Incline Bench Press"
	if err := store.UpdateExercise(ctx, bench); err != nil {
		t.Fatalf("rename: %v", err)
	}

	// Old history keeps the snapshotted name.
	got, err := store.GetWorkoutSession(ctx, archived.ID)
	if err != nil {
		t.Fatalf("get archived: %v", err)
	}
	if got.Exercises[0].ExerciseName != "Bench Press" {
		t.Errorf("archived name = %q, want %q", got.Exercises[0].ExerciseName, "Bench Press")
	}

	// A new template start seeds nothing for the renamed exercise. The
	// template row carries the updated name because it references the catalog.
	if err := e.StartFromTemplate(ctx, tpl.ID); err != nil {
		t.Fatalf("restart: %v", err)
	}
	sets, err := e.WorkingSets(ctx, bench.ID)
	if err != nil {
		t.Fatalf("working sets: %v", err)
	}
	if len(sets) != 0 {
		t.Errorf("seeded sets = %d after rename, want 0", len(sets))
	}
}

// TestRemoveExerciseIsolation verifies removing one exercise purges only its
// sets and leaves the rest of the workout untouched.
func TestRemoveExerciseIsolation(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()
	bench := createExercise(t, store, "Bench Press")
	squat := createExercise(t, store, "Squat")

	if err := e.StartEmpty(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := e.AddExercises(ctx, []uuid.UUID{bench.ID, squat.ID}); err != nil {
		t.Fatalf("add exercises: %v", err)
	}
	if _, err := e.AddSet(ctx, bench.ID); err != nil {
		t.Fatalf("add bench set: %v", err)
	}
	if _, err := e.AddSet(ctx, squat.ID); err != nil {
		t.Fatalf("add squat set: %v", err)
	}

	if err := e.RemoveExercise(ctx, bench.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	exercises := e.WorkingExercises()
	if len(exercises) != 1 || exercises[0].ID != squat.ID {
		t.Errorf("exercises = %+v, want only Squat", exercises)
	}
	benchSets, _ := store.ListWorkingSets(ctx, bench.ID)
	if len(benchSets) != 0 {
		t.Errorf("bench sets = %d, want 0", len(benchSets))
	}
	squatSets, _ := store.ListWorkingSets(ctx, squat.ID)
	if len(squatSets) != 1 {
		t.Errorf("squat sets = %d, want 1", len(squatSets))
	}
	// The catalog record survives
	if _, err := store.GetExercise(ctx, bench.ID); err != nil {
		t.Errorf("catalog record should survive: %v", err)
	}

	if err := e.RemoveExercise(ctx, bench.ID); !errors.Is(err, ErrExerciseNotInWorkout) {
		t.Errorf("second remove err = %v, want ErrExerciseNotInWorkout", err)
	}
}

// TestDuplicateExerciseSharesSetPool verifies a duplicated working-list entry
// shares one set pool and finish archives it as a single exercise session, so
// no set is counted twice.
func TestDuplicateExerciseSharesSetPool(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()
	bench := createExercise(t, store, "Bench Press")

	if err := e.StartEmpty(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := e.AddExercises(ctx, []uuid.UUID{bench.ID, bench.ID}); err != nil {
		t.Fatalf("add exercises: %v", err)
	}
	if len(e.WorkingExercises()) != 2 {
		t.Fatalf("working list = %d entries, want 2", len(e.WorkingExercises()))
	}

	s1, err := e.AddSet(ctx, bench.ID)
	if err != nil {
		t.Fatalf("add set: %v", err)
	}
	s2, err := e.AddSet(ctx, bench.ID)
	if err != nil {
		t.Fatalf("add set: %v", err)
	}
	completeSet(t, e, s1.ID, 10, 135)
	completeSet(t, e, s2.ID, 8, 140)

	ws, err := e.Finish(ctx)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	got, err := store.GetWorkoutSession(ctx, ws.ID)
	if err != nil {
		t.Fatalf("get archived: %v", err)
	}
	if len(got.Exercises) != 1 {
		t.Fatalf("archived exercises = %d, want 1", len(got.Exercises))
	}
	if len(got.Exercises[0].Sets) != 2 {
		t.Errorf("archived sets = %d, want 2", len(got.Exercises[0].Sets))
	}
}

// TestUpdateSetClampsInput verifies negative reps and weight coerce to zero
// instead of erroring.
func TestUpdateSetClampsInput(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()
	bench := createExercise(t, store, "Bench Press")

	if err := e.StartEmpty(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := e.AddExercises(ctx, []uuid.UUID{bench.ID}); err != nil {
		t.Fatalf("add exercises: %v", err)
	}
	s, err := e.AddSet(ctx, bench.ID)
	if err != nil {
		t.Fatalf("add set: %v", err)
	}

	got, err := e.UpdateSet(ctx, s.ID, SetUpdate{Reps: intp(-5), Weight: floatp(-135)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Reps != 0 || got.Weight != 0 {
		t.Errorf("set = %dx%v, want 0x0 after clamping", got.Reps, got.Weight)
	}
}

// TestFinishAndSaveAsTemplate verifies the combined finish+template path: the
// workout archives and a template matching the working list is created.
func TestFinishAndSaveAsTemplate(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()
	bench := createExercise(t, store, "Bench Press")

	if err := e.StartEmpty(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := e.AddExercises(ctx, []uuid.UUID{bench.ID}); err != nil {
		t.Fatalf("add exercises: %v", err)
	}
	s, err := e.AddSet(ctx, bench.ID)
	if err != nil {
		t.Fatalf("add set: %v", err)
	}
	completeSet(t, e, s.ID, 10, 135)

	ws, tpl, err := e.FinishAndSaveAsTemplate(ctx, "My Push Day")
	if err != nil {
		t.Fatalf("finish and save: %v", err)
	}
	if ws == nil || !ws.IsCompleted {
		t.Errorf("workout = %+v, want completed", ws)
	}
	if tpl == nil {
		t.Fatal("template should be created")
	}

	got, err := store.GetTemplate(ctx, tpl.ID)
	if err != nil {
		t.Fatalf("get template: %v", err)
	}
	if got.Name != "My Push Day" {
		t.Errorf("template name = %q, want %q", got.Name, "My Push Day")
	}
	if len(got.Exercises) != 1 || got.Exercises[0].ID != bench.ID {
		t.Errorf("template exercises = %+v, want Bench Press", got.Exercises)
	}
}

// TestFinishAndSaveAsTemplateGateFailure verifies a failed finish gate writes
// neither history nor a template.
func TestFinishAndSaveAsTemplateGateFailure(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()
	bench := createExercise(t, store, "Bench Press")

	if err := e.StartEmpty(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := e.AddExercises(ctx, []uuid.UUID{bench.ID}); err != nil {
		t.Fatalf("add exercises: %v", err)
	}
	if _, err := e.AddSet(ctx, bench.ID); err != nil {
		t.Fatalf("add set: %v", err)
	}

	_, _, err := e.FinishAndSaveAsTemplate(ctx, "Should Not Exist")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}

	templates, err := store.ListTemplates(ctx)
	if err != nil {
		t.Fatalf("list templates: %v", err)
	}
	if len(templates) != 0 {
		t.Errorf("templates = %d after gate failure, want 0", len(templates))
	}
	if e.State() != Active {
		t.Errorf("state = %v, want still active", e.State())
	}
}

// TestSnapshotView verifies the aggregated view reflects exercises, sets, and
// the completion flag.
func TestSnapshotView(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()
	bench := createExercise(t, store, "Bench Press")

	view, err := e.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot idle: %v", err)
	}
	if view.State != "idle" {
		t.Errorf("state = %q, want %q", view.State, "idle")
	}

	if err := e.StartEmpty(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := e.AddExercises(ctx, []uuid.UUID{bench.ID}); err != nil {
		t.Fatalf("add exercises: %v", err)
	}
	s, err := e.AddSet(ctx, bench.ID)
	if err != nil {
		t.Fatalf("add set: %v", err)
	}
	completeSet(t, e, s.ID, 10, 135)

	view, err = e.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if view.State != "active" {
		t.Errorf("state = %q, want %q", view.State, "active")
	}
	if len(view.Exercises) != 1 {
		t.Fatalf("exercises = %d, want 1", len(view.Exercises))
	}
	if len(view.Exercises[0].Sets) != 1 {
		t.Errorf("sets = %d, want 1", len(view.Exercises[0].Sets))
	}
	if !view.AllSetsCompleted {
		t.Error("all sets completed should be true")
	}
}
