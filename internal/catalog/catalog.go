// Package catalog owns the exercise and template catalog: plain CRUD with
// duplicate-name rejection and predicate filtering. The session engine only
// reads from it.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/storage"
)

// ErrDuplicateName is returned when an exercise name already exists,
// compared case-insensitively after trimming whitespace.
var ErrDuplicateName = errors.New("an exercise with this name already exists")

// ErrEmptyName is returned when a name is empty after trimming.
var ErrEmptyName = errors.New("name must not be empty")

// Catalog provides exercise and template CRUD over the entity store.
type Catalog struct {
	store storage.Store
	log   *slog.Logger
}

// New creates a Catalog.
func New(store storage.Store, log *slog.Logger) *Catalog {
	return &Catalog{store: store, log: log}
}

// CreateExercise adds a catalog exercise, rejecting duplicate names.
func (c *Catalog) CreateExercise(ctx context.Context, name, bodyPart, category string) (*models.Exercise, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	if err := c.checkDuplicateName(ctx, name, uuid.Nil); err != nil {
		return nil, err
	}

	e := &models.Exercise{
		ID:       uuid.New(),
		Name:     name,
		BodyPart: bodyPart,
		Category: category,
	}
	if err := c.store.CreateExercise(ctx, e); err != nil {
		return nil, err
	}
	c.log.Info("exercise created", "id", e.ID, "name", e.Name)
	return e, nil
}

// ListExercises returns catalog exercises matching the filter, sorted by name.
func (c *Catalog) ListExercises(ctx context.Context, f storage.ExerciseFilter) ([]models.Exercise, error) {
	return c.store.ListExercises(ctx, f)
}

// GetExercise returns a single exercise by id.
func (c *Catalog) GetExercise(ctx context.Context, id uuid.UUID) (*models.Exercise, error) {
	return c.store.GetExercise(ctx, id)
}

// UpdateExercise edits an exercise's fields. The duplicate-name check
// excludes the exercise itself so renames to the same name succeed.
func (c *Catalog) UpdateExercise(ctx context.Context, id uuid.UUID, name, bodyPart, category string) (*models.Exercise, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	if err := c.checkDuplicateName(ctx, name, id); err != nil {
		return nil, err
	}

	e := &models.Exercise{ID: id, Name: name, BodyPart: bodyPart, Category: category}
	if err := c.store.UpdateExercise(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteExercise removes an exercise from the catalog. Its working sets and
// template list entries go with it; archived history does not.
func (c *Catalog) DeleteExercise(ctx context.Context, id uuid.UUID) error {
	if err := c.store.DeleteExercise(ctx, id); err != nil {
		return err
	}
	c.log.Info("exercise deleted", "id", id)
	return nil
}

// CreateTemplate creates a template whose exercise list preserves the order
// of the given ids. Every id must resolve to a catalog exercise.
func (c *Catalog) CreateTemplate(ctx context.Context, name string, exerciseIDs []uuid.UUID) (*models.Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	exercises := make([]models.Exercise, 0, len(exerciseIDs))
	for _, id := range exerciseIDs {
		e, err := c.store.GetExercise(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("resolving exercise %s: %w", id, err)
		}
		exercises = append(exercises, *e)
	}

	t := &models.Template{
		ID:        uuid.New(),
		Name:      name,
		Exercises: exercises,
	}
	if err := c.store.CreateTemplate(ctx, t); err != nil {
		return nil, err
	}
	c.log.Info("template created", "id", t.ID, "name", t.Name, "exercises", len(t.Exercises))
	return t, nil
}

// ListTemplates returns all templates with their ordered exercise lists.
func (c *Catalog) ListTemplates(ctx context.Context) ([]models.Template, error) {
	return c.store.ListTemplates(ctx)
}

// GetTemplate returns one template with its ordered exercise list.
func (c *Catalog) GetTemplate(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	return c.store.GetTemplate(ctx, id)
}

// DeleteTemplate removes a template. Referenced exercises survive.
func (c *Catalog) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	return c.store.DeleteTemplate(ctx, id)
}

// checkDuplicateName fetches all exercises and compares manually. Simple but
// works, and keeps the comparison rule in one place.
func (c *Catalog) checkDuplicateName(ctx context.Context, name string, exclude uuid.UUID) error {
	all, err := c.store.ListExercises(ctx, storage.ExerciseFilter{})
	if err != nil {
		return fmt.Errorf("checking duplicates: %w", err)
	}
	lower := strings.ToLower(name)
	for _, e := range all {
		if e.ID != exclude && strings.ToLower(e.Name) == lower {
			return ErrDuplicateName
		}
	}
	return nil
}
