// Package session implements the workout-session lifecycle engine: the set
// ledger over mutable working sets, template materialization, and the state
// machine that promotes completed working sets into immutable history.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/storage"
)

// Ledger owns working-set records: CRUD scoped to an exercise and the
// one-way promotion of completed sets into history payloads. It has no side
// effects beyond the working-set table; persisting snapshots is the engine's
// job.
type Ledger struct {
	store storage.Store
	now   func() time.Time
}

// NewLedger creates a Ledger over the given store.
func NewLedger(store storage.Store) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// AddWorkingSet creates an empty, incomplete working set for an exercise.
func (l *Ledger) AddWorkingSet(ctx context.Context, exerciseID uuid.UUID) (*models.WorkingSet, error) {
	return l.addWorkingSet(ctx, exerciseID, 0, 0)
}

// SeedWorkingSet creates an incomplete working set prefilled with carried-over
// reps and weight from past performance.
func (l *Ledger) SeedWorkingSet(ctx context.Context, exerciseID uuid.UUID, reps int, weight float64) (*models.WorkingSet, error) {
	return l.addWorkingSet(ctx, exerciseID, reps, weight)
}

func (l *Ledger) addWorkingSet(ctx context.Context, exerciseID uuid.UUID, reps int, weight float64) (*models.WorkingSet, error) {
	ws := &models.WorkingSet{
		ID:          uuid.New(),
		ExerciseID:  exerciseID,
		CreatedAt:   l.now(),
		Reps:        models.ClampReps(reps),
		Weight:      models.ClampWeight(weight),
		IsCompleted: false,
	}
	if err := l.store.InsertWorkingSet(ctx, ws); err != nil {
		return nil, err
	}
	return ws, nil
}

// SetUpdate carries optional field changes for a working set. Nil fields are
// left untouched.
type SetUpdate struct {
	Reps        *int
	Weight      *float64
	IsCompleted *bool
}

// UpdateWorkingSet applies an update. Negative reps or weight coerce to zero
// rather than erroring; toggling completion is idempotent.
func (l *Ledger) UpdateWorkingSet(ctx context.Context, id uuid.UUID, upd SetUpdate) (*models.WorkingSet, error) {
	ws, err := l.store.GetWorkingSet(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Reps != nil {
		ws.Reps = models.ClampReps(*upd.Reps)
	}
	if upd.Weight != nil {
		ws.Weight = models.ClampWeight(*upd.Weight)
	}
	if upd.IsCompleted != nil {
		ws.IsCompleted = *upd.IsCompleted
	}
	if err := l.store.UpdateWorkingSet(ctx, ws); err != nil {
		return nil, err
	}
	return ws, nil
}

// RemoveWorkingSet deletes a working set. A missing set is a no-op; deletion
// races are expected and harmless.
func (l *Ledger) RemoveWorkingSet(ctx context.Context, id uuid.UUID) error {
	err := l.store.DeleteWorkingSet(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}

// PurgeWorkingSets deletes every working set owned by the given exercises.
func (l *Ledger) PurgeWorkingSets(ctx context.Context, exerciseIDs []uuid.UUID) error {
	return l.store.PurgeWorkingSets(ctx, exerciseIDs)
}

// WorkingSets lists an exercise's working sets in creation order.
func (l *Ledger) WorkingSets(ctx context.Context, exerciseID uuid.UUID) ([]models.WorkingSet, error) {
	return l.store.ListWorkingSets(ctx, exerciseID)
}

// SnapshotCompleted selects the exercise's completed working sets, in
// creation order, and turns them into completed-set payloads with a dense
// 1..N set number. It does not persist anything.
func (l *Ledger) SnapshotCompleted(ctx context.Context, exerciseID uuid.UUID) ([]models.CompletedSet, error) {
	sets, err := l.store.ListWorkingSets(ctx, exerciseID)
	if err != nil {
		return nil, err
	}

	completedAt := l.now()
	var result []models.CompletedSet
	for _, ws := range sets {
		if !ws.IsCompleted {
			continue
		}
		result = append(result, models.CompletedSet{
			ID:          uuid.New(),
			SetNumber:   len(result) + 1,
			Reps:        ws.Reps,
			Weight:      ws.Weight,
			CompletedAt: completedAt,
		})
	}
	return result, nil
}
