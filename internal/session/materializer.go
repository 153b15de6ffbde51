package session

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/storage"
)

// seedLimit is how many recent sets carry over when a template exercise is
// seeded from past performance.
const seedLimit = 3

// Materializer turns a template into live working state for a new session.
// It never mutates the template; it only reads its ordered exercise list and
// the global set history.
type Materializer struct {
	store storage.Store
}

// NewMaterializer creates a Materializer over the given store.
func NewMaterializer(store storage.Store) *Materializer {
	return &Materializer{store: store}
}

// Materialize returns the template's ordered exercise references verbatim.
func (m *Materializer) Materialize(t *models.Template) []uuid.UUID {
	ids := make([]uuid.UUID, len(t.Exercises))
	for i, e := range t.Exercises {
		ids[i] = e.ID
	}
	return ids
}

// SetSeed is one carried-over reps/weight pair for a new working set.
type SetSeed struct {
	Reps   int
	Weight float64
}

// SeedPreviousPerformance returns up to seedLimit recent sets for an
// exercise, in chronological order, so set 1 of the new session corresponds
// to the earliest of the recent batch. An exercise with no history yields an
// empty list.
//
// Recency considers both live working sets and archived completed sets.
// History is matched by the snapshotted exercise name; renaming a catalog
// exercise deliberately detaches it from old history.
func (m *Materializer) SeedPreviousPerformance(ctx context.Context, exercise *models.Exercise) ([]SetSeed, error) {
	type datedSeed struct {
		seed SetSeed
		at   time.Time
	}
	var candidates []datedSeed

	working, err := m.store.ListWorkingSets(ctx, exercise.ID)
	if err != nil {
		return nil, err
	}
	for _, ws := range working {
		candidates = append(candidates, datedSeed{
			seed: SetSeed{Reps: ws.Reps, Weight: ws.Weight},
			at:   ws.CreatedAt,
		})
	}

	completed, err := m.store.RecentCompletedSets(ctx, exercise.Name, seedLimit)
	if err != nil {
		return nil, err
	}
	for _, cs := range completed {
		candidates = append(candidates, datedSeed{
			seed: SetSeed{Reps: cs.Reps, Weight: cs.Weight},
			at:   cs.CompletedAt,
		})
	}

	// Most recent first, take the limit, then flip to chronological.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].at.After(candidates[j].at)
	})
	if len(candidates) > seedLimit {
		candidates = candidates[:seedLimit]
	}

	seeds := make([]SetSeed, len(candidates))
	for i, c := range candidates {
		seeds[len(candidates)-1-i] = c.seed
	}
	return seeds, nil
}
