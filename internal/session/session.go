package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/storage"
)

// State is the session lifecycle state. There is no paused state: the
// session is always either fully idle or fully active.
type State int

const (
	Idle State = iota
	Active
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Names shown for workouts, matching the app's titles.
const (
	customWorkoutName = "Custom Workout"
)

// Engine is the workout-session state machine. Exactly one workout can be
// active at a time; the engine itself is that single-session state, so tests
// construct one per isolated store. All mutating operations persist first
// and only then advance in-memory state, so a failed store call leaves the
// prior state intact.
type Engine struct {
	store  storage.Store
	ledger *Ledger
	mat    *Materializer
	log    *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	state     State
	name      string
	startTime time.Time
	template  *models.Template
	exercises []models.Exercise
}

// New creates an idle Engine over the given store.
func New(store storage.Store, log *slog.Logger) *Engine {
	return &Engine{
		store:  store,
		ledger: NewLedger(store),
		mat:    NewMaterializer(store),
		log:    log,
		now:    time.Now,
	}
}

// State reports whether a workout is in progress.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// WorkingExercises returns a copy of the ordered working-exercise list.
func (e *Engine) WorkingExercises() []models.Exercise {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.Exercise, len(e.exercises))
	copy(out, e.exercises)
	return out
}

// StartEmpty begins a new workout with an empty exercise list and no
// template association. An in-flight workout is cancelled first.
func (e *Engine) StartEmpty(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == Active {
		if err := e.cancelLocked(ctx); err != nil {
			return err
		}
	}

	e.state = Active
	e.name = customWorkoutName
	e.startTime = e.now()
	e.template = nil
	e.exercises = nil
	e.log.Info("workout started", "name", e.name)
	return nil
}

// StartFromTemplate begins a new workout from a template: the working list
// becomes the template's ordered exercises and each exercise's sets are
// prefilled from its most recent performance, unchecked. Starting while a
// workout is active is an implicit cancel-then-start, never a merge.
func (e *Engine) StartFromTemplate(ctx context.Context, templateID uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == Active {
		if err := e.cancelLocked(ctx); err != nil {
			return err
		}
	}

	t, err := e.store.GetTemplate(ctx, templateID)
	if err != nil {
		return fmt.Errorf("loading template: %w", err)
	}

	exercises := make([]models.Exercise, len(t.Exercises))
	copy(exercises, t.Exercises)

	for i := range exercises {
		seeds, err := e.mat.SeedPreviousPerformance(ctx, &exercises[i])
		if err != nil {
			e.abortStart(ctx, exercises)
			return fmt.Errorf("seeding %s: %w", exercises[i].Name, err)
		}
		for _, seed := range seeds {
			if _, err := e.ledger.SeedWorkingSet(ctx, exercises[i].ID, seed.Reps, seed.Weight); err != nil {
				e.abortStart(ctx, exercises)
				return fmt.Errorf("seeding %s: %w", exercises[i].Name, err)
			}
		}
	}

	e.state = Active
	e.name = t.Name
	e.startTime = e.now()
	e.template = t
	e.exercises = exercises
	e.log.Info("workout started from template", "template", t.Name, "exercises", len(exercises))
	return nil
}

// abortStart purges any sets created by a failed template start so the
// session can stay cleanly idle.
func (e *Engine) abortStart(ctx context.Context, exercises []models.Exercise) {
	ids := make([]uuid.UUID, len(exercises))
	for i, ex := range exercises {
		ids[i] = ex.ID
	}
	if err := e.store.PurgeWorkingSets(ctx, ids); err != nil {
		e.log.Error("purge after failed start", "error", err)
	}
}

// AddExercises appends catalog exercises to the working list. No history is
// seeded; an explicitly added exercise starts with zero sets. Duplicates are
// permitted and kept.
func (e *Engine) AddExercises(ctx context.Context, ids []uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Active {
		return ErrNoActiveWorkout
	}

	added := make([]models.Exercise, 0, len(ids))
	for _, id := range ids {
		ex, err := e.store.GetExercise(ctx, id)
		if err != nil {
			return fmt.Errorf("resolving exercise %s: %w", id, err)
		}
		added = append(added, *ex)
	}
	e.exercises = append(e.exercises, added...)
	return nil
}

// RemoveExercise removes every occurrence of an exercise from the working
// list and purges its working sets. The catalog record survives.
func (e *Engine) RemoveExercise(ctx context.Context, id uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Active {
		return ErrNoActiveWorkout
	}
	if !e.inWorkoutLocked(id) {
		return ErrExerciseNotInWorkout
	}

	if err := e.ledger.PurgeWorkingSets(ctx, []uuid.UUID{id}); err != nil {
		return err
	}

	kept := e.exercises[:0]
	for _, ex := range e.exercises {
		if ex.ID != id {
			kept = append(kept, ex)
		}
	}
	e.exercises = kept
	return nil
}

// AddSet creates an empty working set for an exercise on the working list.
func (e *Engine) AddSet(ctx context.Context, exerciseID uuid.UUID) (*models.WorkingSet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Active {
		return nil, ErrNoActiveWorkout
	}
	if !e.inWorkoutLocked(exerciseID) {
		return nil, ErrExerciseNotInWorkout
	}
	return e.ledger.AddWorkingSet(ctx, exerciseID)
}

// UpdateSet applies a working-set update during an active workout.
func (e *Engine) UpdateSet(ctx context.Context, id uuid.UUID, upd SetUpdate) (*models.WorkingSet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Active {
		return nil, ErrNoActiveWorkout
	}
	return e.ledger.UpdateWorkingSet(ctx, id, upd)
}

// RemoveSet deletes a working set; missing sets are a no-op.
func (e *Engine) RemoveSet(ctx context.Context, id uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Active {
		return ErrNoActiveWorkout
	}
	return e.ledger.RemoveWorkingSet(ctx, id)
}

// WorkingSets lists an exercise's working sets in creation order.
func (e *Engine) WorkingSets(ctx context.Context, exerciseID uuid.UUID) ([]models.WorkingSet, error) {
	return e.ledger.WorkingSets(ctx, exerciseID)
}

// AllSetsCompleted reports whether the session has at least one working set
// and every working set is completed. This gates Finish.
func (e *Engine) AllSetsCompleted(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.allSetsCompletedLocked(ctx)
}

func (e *Engine) allSetsCompletedLocked(ctx context.Context) (bool, error) {
	total := 0
	for _, id := range e.distinctExerciseIDsLocked() {
		sets, err := e.store.ListWorkingSets(ctx, id)
		if err != nil {
			return false, err
		}
		for _, ws := range sets {
			if !ws.IsCompleted {
				return false, nil
			}
			total++
		}
	}
	return total > 0, nil
}

// Finish archives the workout: every working exercise becomes an exercise
// session snapshot with dense-numbered completed sets, the workout session is
// persisted, and all working sets are purged, completed and incomplete alike.
// Only legal when AllSetsCompleted holds.
func (e *Engine) Finish(ctx context.Context) (*models.WorkoutSession, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.finishLocked(ctx)
}

func (e *Engine) finishLocked(ctx context.Context) (*models.WorkoutSession, error) {
	if e.state != Active {
		return nil, ErrNoActiveWorkout
	}

	done, err := e.allSetsCompletedLocked(ctx)
	if err != nil {
		return nil, err
	}
	if !done {
		return nil, fmt.Errorf("%w: not all sets are completed", ErrInvalidTransition)
	}

	endTime := e.now()
	ws := &models.WorkoutSession{
		ID:           uuid.New(),
		Name:         e.name,
		StartTime:    e.startTime,
		EndTime:      &endTime,
		IsCompleted:  true,
		TemplateName: e.templateNameLocked(),
	}

	// A duplicated exercise shares one working-set pool, so each distinct
	// exercise is snapshotted once, at its first position.
	for _, ex := range e.distinctExercisesLocked() {
		snapshot, err := e.ledger.SnapshotCompleted(ctx, ex.ID)
		if err != nil {
			return nil, err
		}
		es := models.ExerciseSession{
			ID:               uuid.New(),
			WorkoutSessionID: ws.ID,
			ExerciseName:     ex.Name,
			BodyPart:         ex.BodyPart,
			Category:         ex.Category,
			Sets:             snapshot,
		}
		for i := range es.Sets {
			es.Sets[i].ExerciseSessionID = es.ID
		}
		ws.Exercises = append(ws.Exercises, es)
	}

	// History write and working-set purge commit atomically; on failure the
	// session stays active for a clean retry.
	if err := e.store.SaveWorkoutSession(ctx, ws, e.distinctExerciseIDsLocked()); err != nil {
		return nil, fmt.Errorf("archiving workout: %w", err)
	}

	e.log.Info("workout finished", "name", ws.Name, "exercises", len(ws.Exercises))
	e.resetLocked()
	return ws, nil
}

// FinishAndSaveAsTemplate archives the workout and creates a template from
// its working-exercise list. The two writes are independent: failure of one
// does not block the other, but both are attempted.
func (e *Engine) FinishAndSaveAsTemplate(ctx context.Context, name string) (*models.WorkoutSession, *models.Template, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Active {
		return nil, nil, ErrNoActiveWorkout
	}

	// Capture before finish clears the working list.
	exercises := make([]models.Exercise, len(e.exercises))
	copy(exercises, e.exercises)

	ws, finishErr := e.finishLocked(ctx)
	if errors.Is(finishErr, ErrInvalidTransition) || errors.Is(finishErr, ErrNoActiveWorkout) {
		// Gate failure: nothing was written, don't create a template either.
		return nil, nil, finishErr
	}

	t := &models.Template{ID: uuid.New(), Name: name, Exercises: exercises}
	templateErr := e.store.CreateTemplate(ctx, t)
	if templateErr != nil {
		t = nil
		templateErr = fmt.Errorf("saving template: %w", templateErr)
	} else {
		e.log.Info("workout saved as template", "template", name)
	}

	return ws, t, errors.Join(finishErr, templateErr)
}

// Cancel discards the workout: every working set is purged and no history is
// written. Cancelling an idle session is a no-op.
func (e *Engine) Cancel(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Active {
		return nil
	}
	return e.cancelLocked(ctx)
}

// Discard is an alias for Cancel.
func (e *Engine) Discard(ctx context.Context) error {
	return e.Cancel(ctx)
}

func (e *Engine) cancelLocked(ctx context.Context) error {
	if err := e.ledger.PurgeWorkingSets(ctx, e.distinctExerciseIDsLocked()); err != nil {
		return fmt.Errorf("discarding workout: %w", err)
	}
	e.log.Info("workout cancelled", "name", e.name)
	e.resetLocked()
	return nil
}

func (e *Engine) resetLocked() {
	e.state = Idle
	e.name = ""
	e.startTime = time.Time{}
	e.template = nil
	e.exercises = nil
}

func (e *Engine) templateNameLocked() string {
	if e.template == nil {
		return ""
	}
	return e.template.Name
}

func (e *Engine) inWorkoutLocked(id uuid.UUID) bool {
	for _, ex := range e.exercises {
		if ex.ID == id {
			return true
		}
	}
	return false
}

func (e *Engine) distinctExercisesLocked() []models.Exercise {
	seen := make(map[uuid.UUID]bool, len(e.exercises))
	var out []models.Exercise
	for _, ex := range e.exercises {
		if !seen[ex.ID] {
			seen[ex.ID] = true
			out = append(out, ex)
		}
	}
	return out
}

func (e *Engine) distinctExerciseIDsLocked() []uuid.UUID {
	exercises := e.distinctExercisesLocked()
	ids := make([]uuid.UUID, len(exercises))
	for i, ex := range exercises {
		ids[i] = ex.ID
	}
	return ids
}
