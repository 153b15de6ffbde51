package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/storage"
)

func (s *Store) CreateExercise(ctx context.Context, e *models.Exercise) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exercises (id, name, body_part, category) VALUES (?, ?, ?, ?)`,
		e.ID.String(), e.Name, e.BodyPart, e.Category)
	if err != nil {
		return fmt.Errorf("inserting exercise: %w", err)
	}
	return nil
}

func (s *Store) GetExercise(ctx context.Context, id uuid.UUID) (*models.Exercise, error) {
	var e models.Exercise
	var rawID string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, body_part, category FROM exercises WHERE id = ?`,
		id.String()).Scan(&rawID, &e.Name, &e.BodyPart, &e.Category)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying exercise: %w", err)
	}
	e.ID, err = uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parsing exercise id: %w", err)
	}
	return &e, nil
}

func (s *Store) ListExercises(ctx context.Context, f storage.ExerciseFilter) ([]models.Exercise, error) {
	query := `SELECT id, name, body_part, category FROM exercises`
	var conds []string
	var args []any
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		conds = append(conds, `(LOWER(name) LIKE ? OR LOWER(body_part) LIKE ? OR LOWER(category) LIKE ?)`)
		args = append(args, pattern, pattern, pattern)
	}
	if f.BodyPart != "" {
		conds = append(conds, `body_part = ?`)
		args = append(args, f.BodyPart)
	}
	if f.Category != "" {
		conds = append(conds, `category = ?`)
		args = append(args, f.Category)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY name COLLATE NOCASE ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var result []models.Exercise
	for rows.Next() {
		var e models.Exercise
		var rawID string
		if err := rows.Scan(&rawID, &e.Name, &e.BodyPart, &e.Category); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		if e.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("parsing exercise id: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (s *Store) UpdateExercise(ctx context.Context, e *models.Exercise) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE exercises SET name = ?, body_part = ?, category = ? WHERE id = ?`,
		e.Name, e.BodyPart, e.Category, e.ID.String())
	if err != nil {
		return fmt.Errorf("updating exercise: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating exercise: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteExercise removes the exercise, its working sets, and any template
// list entries pointing at it, in one transaction. Archived history is
// untouched.
func (s *Store) DeleteExercise(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	raw := id.String()
	if _, err := tx.ExecContext(ctx, `DELETE FROM working_sets WHERE exercise_id = ?`, raw); err != nil {
		return fmt.Errorf("deleting working sets: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM template_exercises WHERE exercise_id = ?`, raw); err != nil {
		return fmt.Errorf("deleting template references: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM exercises WHERE id = ?`, raw); err != nil {
		return fmt.Errorf("deleting exercise: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing exercise delete: %w", err)
	}
	return nil
}

func (s *Store) CreateTemplate(ctx context.Context, t *models.Template) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO templates (id, name) VALUES (?, ?)`,
		t.ID.String(), t.Name); err != nil {
		return fmt.Errorf("inserting template: %w", err)
	}
	for i, e := range t.Exercises {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO template_exercises (template_id, exercise_id, position) VALUES (?, ?, ?)`,
			t.ID.String(), e.ID.String(), i); err != nil {
			return fmt.Errorf("inserting template exercise: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing template: %w", err)
	}
	return nil
}

func (s *Store) GetTemplate(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	var t models.Template
	var rawID string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM templates WHERE id = ?`, id.String()).Scan(&rawID, &t.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying template: %w", err)
	}
	if t.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("parsing template id: %w", err)
	}

	t.Exercises, err = s.templateExercises(ctx, id)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) templateExercises(ctx context.Context, templateID uuid.UUID) ([]models.Exercise, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.id, e.name, e.body_part, e.category
		 FROM template_exercises te
		 JOIN exercises e ON e.id = te.exercise_id
		 WHERE te.template_id = ?
		 ORDER BY te.position ASC`,
		templateID.String())
	if err != nil {
		return nil, fmt.Errorf("querying template exercises: %w", err)
	}
	defer rows.Close()

	var result []models.Exercise
	for rows.Next() {
		var e models.Exercise
		var rawID string
		if err := rows.Scan(&rawID, &e.Name, &e.BodyPart, &e.Category); err != nil {
			return nil, fmt.Errorf("scanning template exercise: %w", err)
		}
		if e.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("parsing exercise id: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (s *Store) ListTemplates(ctx context.Context) ([]models.Template, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name FROM templates ORDER BY name COLLATE NOCASE ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	var result []models.Template
	for rows.Next() {
		var t models.Template
		var rawID string
		if err := rows.Scan(&rawID, &t.Name); err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		if t.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("parsing template id: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		result[i].Exercises, err = s.templateExercises(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *Store) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM template_exercises WHERE template_id = ?`, id.String()); err != nil {
		return fmt.Errorf("deleting template exercises: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing template delete: %w", err)
	}
	return nil
}
