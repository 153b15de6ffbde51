package mcp

import (
	"context"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/session"
	"github.com/meltforce/liftlog/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both storage.Store
// (local database) and HTTPClient (remote via REST API) satisfy this
// interface.
type DataSource interface {
	ListExercises(ctx context.Context, filter storage.ExerciseFilter) ([]models.Exercise, error)
	ListTemplates(ctx context.Context) ([]models.Template, error)
	ListWorkoutSessions(ctx context.Context, limit int) ([]models.WorkoutSession, error)
	GetWorkoutSession(ctx context.Context, id uuid.UUID) (*models.WorkoutSession, error)
	RecentCompletedSets(ctx context.Context, exerciseName string, limit int) ([]models.CompletedSet, error)
	Stats(ctx context.Context) (*storage.DataStats, error)
}

// SessionSource is an optional upgrade for sources that can observe the
// live workout session. Session state is held in the server process, so the
// REST client provides it while a directly opened database cannot; the
// get_current_session tool is only registered when the source supports it.
type SessionSource interface {
	CurrentSession(ctx context.Context) (*session.View, error)
}

// Compile-time check: any storage.Store satisfies DataSource.
var _ DataSource = (storage.Store)(nil)
