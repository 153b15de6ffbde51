package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/storage"
)

func (s *Store) CreateExercise(ctx context.Context, e *models.Exercise) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO exercises (id, name, body_part, category) VALUES ($1, $2, $3, $4)`,
		e.ID, e.Name, e.BodyPart, e.Category)
	if err != nil {
		return fmt.Errorf("inserting exercise: %w", err)
	}
	return nil
}

func (s *Store) GetExercise(ctx context.Context, id uuid.UUID) (*models.Exercise, error) {
	var e models.Exercise
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, body_part, category FROM exercises WHERE id = $1`, id).
		Scan(&e.ID, &e.Name, &e.BodyPart, &e.Category)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying exercise: %w", err)
	}
	return &e, nil
}

func (s *Store) ListExercises(ctx context.Context, f storage.ExerciseFilter) ([]models.Exercise, error) {
	query := `SELECT id, name, body_part, category FROM exercises`
	var conds []string
	var args []any
	if f.Search != "" {
		args = append(args, "%"+strings.ToLower(f.Search)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			`(LOWER(name) LIKE $%d OR LOWER(body_part) LIKE $%d OR LOWER(category) LIKE $%d)`, n, n, n))
	}
	if f.BodyPart != "" {
		args = append(args, f.BodyPart)
		conds = append(conds, fmt.Sprintf(`body_part = $%d`, len(args)))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		conds = append(conds, fmt.Sprintf(`category = $%d`, len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY LOWER(name) ASC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var result []models.Exercise
	for rows.Next() {
		var e models.Exercise
		if err := rows.Scan(&e.ID, &e.Name, &e.BodyPart, &e.Category); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (s *Store) UpdateExercise(ctx context.Context, e *models.Exercise) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE exercises SET name = $1, body_part = $2, category = $3 WHERE id = $4`,
		e.Name, e.BodyPart, e.Category, e.ID)
	if err != nil {
		return fmt.Errorf("updating exercise: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteExercise(ctx context.Context, id uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM working_sets WHERE exercise_id = $1`, id); err != nil {
		return fmt.Errorf("deleting working sets: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM template_exercises WHERE exercise_id = $1`, id); err != nil {
		return fmt.Errorf("deleting template references: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM exercises WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting exercise: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing exercise delete: %w", err)
	}
	return nil
}

func (s *Store) CreateTemplate(ctx context.Context, t *models.Template) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO templates (id, name) VALUES ($1, $2)`, t.ID, t.Name); err != nil {
		return fmt.Errorf("inserting template: %w", err)
	}
	for i, e := range t.Exercises {
		if _, err := tx.Exec(ctx,
			`INSERT INTO template_exercises (template_id, exercise_id, position) VALUES ($1, $2, $3)`,
			t.ID, e.ID, i); err != nil {
			return fmt.Errorf("inserting template exercise: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing template: %w", err)
	}
	return nil
}

func (s *Store) GetTemplate(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	var t models.Template
	err := s.pool.QueryRow(ctx,
		`SELECT id, name FROM templates WHERE id = $1`, id).Scan(&t.ID, &t.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying template: %w", err)
	}

	t.Exercises, err = s.templateExercises(ctx, id)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) templateExercises(ctx context.Context, templateID uuid.UUID) ([]models.Exercise, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT e.id, e.name, e.body_part, e.category
		 FROM template_exercises te
		 JOIN exercises e ON e.id = te.exercise_id
		 WHERE te.template_id = $1
		 ORDER BY te.position ASC`, templateID)
	if err != nil {
		return nil, fmt.Errorf("querying template exercises: %w", err)
	}
	defer rows.Close()

	var result []models.Exercise
	for rows.Next() {
		var e models.Exercise
		if err := rows.Scan(&e.ID, &e.Name, &e.BodyPart, &e.Category); err != nil {
			return nil, fmt.Errorf("scanning template exercise: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (s *Store) ListTemplates(ctx context.Context) ([]models.Template, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name FROM templates ORDER BY LOWER(name) ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	var result []models.Template
	for rows.Next() {
		var t models.Template
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		var err error
		result[i].Exercises, err = s.templateExercises(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *Store) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM template_exercises WHERE template_id = $1`, id); err != nil {
		return fmt.Errorf("deleting template exercises: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM templates WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing template delete: %w", err)
	}
	return nil
}
