// Package storage defines the entity-store boundary the session engine and
// catalog are written against. Implementations live in the sqlite and
// postgres subpackages; the interface allows swapping them (and using an
// in-memory SQLite store in tests).
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
)

// ErrNotFound is returned when a record id does not exist. Deleting a missing
// record is a no-op, not an error; updates and reads report it.
var ErrNotFound = errors.New("record not found")

// ExerciseFilter narrows ListExercises. Zero values match everything. Search
// matches name, body part and category case-insensitively as a substring.
type ExerciseFilter struct {
	Search   string
	BodyPart string
	Category string
}

// DataStats holds aggregate statistics about all archived training data.
type DataStats struct {
	TotalWorkouts      int64      `json:"total_workouts"`
	TotalCompletedSets int64      `json:"total_completed_sets"`
	TotalReps          int64      `json:"total_reps"`
	TotalTonnage       float64    `json:"total_tonnage"`
	TotalExercises     int64      `json:"total_exercises"`
	TotalTemplates     int64      `json:"total_templates"`
	LastWorkout        *time.Time `json:"last_workout,omitempty"`
}

// Store is the single source of truth for all persisted records. Callers must
// not cache state across operations; every read re-queries.
type Store interface {
	// Exercise catalog. DeleteExercise cascades to the exercise's working
	// sets and removes it from any template's exercise list; it never
	// touches archived history.
	CreateExercise(ctx context.Context, e *models.Exercise) error
	GetExercise(ctx context.Context, id uuid.UUID) (*models.Exercise, error)
	ListExercises(ctx context.Context, f ExerciseFilter) ([]models.Exercise, error)
	UpdateExercise(ctx context.Context, e *models.Exercise) error
	DeleteExercise(ctx context.Context, id uuid.UUID) error

	// Templates. CreateTemplate persists the ordered exercise list as given.
	CreateTemplate(ctx context.Context, t *models.Template) error
	GetTemplate(ctx context.Context, id uuid.UUID) (*models.Template, error)
	ListTemplates(ctx context.Context) ([]models.Template, error)
	DeleteTemplate(ctx context.Context, id uuid.UUID) error

	// Working sets. ListWorkingSets orders by creation time ascending.
	// PurgeWorkingSets deletes every working set owned by the given
	// exercises.
	InsertWorkingSet(ctx context.Context, ws *models.WorkingSet) error
	GetWorkingSet(ctx context.Context, id uuid.UUID) (*models.WorkingSet, error)
	UpdateWorkingSet(ctx context.Context, ws *models.WorkingSet) error
	DeleteWorkingSet(ctx context.Context, id uuid.UUID) error
	ListWorkingSets(ctx context.Context, exerciseID uuid.UUID) ([]models.WorkingSet, error)
	PurgeWorkingSets(ctx context.Context, exerciseIDs []uuid.UUID) error

	// SaveWorkoutSession persists a finished workout tree (session,
	// exercise sessions, completed sets) and purges the given exercises'
	// working sets in a single transaction, so a mid-sequence failure can
	// never leave partial history behind.
	SaveWorkoutSession(ctx context.Context, ws *models.WorkoutSession, purgeExercises []uuid.UUID) error

	// History reads. ListWorkoutSessions returns shallow sessions, newest
	// first; GetWorkoutSession loads the full tree. RecentCompletedSets
	// matches history by snapshotted exercise name, most recent first.
	ListWorkoutSessions(ctx context.Context, limit int) ([]models.WorkoutSession, error)
	GetWorkoutSession(ctx context.Context, id uuid.UUID) (*models.WorkoutSession, error)
	RecentCompletedSets(ctx context.Context, exerciseName string, limit int) ([]models.CompletedSet, error)

	Stats(ctx context.Context) (*DataStats, error)

	Close() error
}
