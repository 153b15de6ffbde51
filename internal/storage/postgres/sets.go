package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/storage"
)

func (s *Store) InsertWorkingSet(ctx context.Context, ws *models.WorkingSet) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO working_sets (id, exercise_id, created_at, reps, weight, is_completed)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		ws.ID, ws.ExerciseID, ws.CreatedAt, ws.Reps, ws.Weight, ws.IsCompleted)
	if err != nil {
		return fmt.Errorf("inserting working set: %w", err)
	}
	return nil
}

func (s *Store) GetWorkingSet(ctx context.Context, id uuid.UUID) (*models.WorkingSet, error) {
	var ws models.WorkingSet
	err := s.pool.QueryRow(ctx,
		`SELECT id, exercise_id, created_at, reps, weight, is_completed
		 FROM working_sets WHERE id = $1`, id).
		Scan(&ws.ID, &ws.ExerciseID, &ws.CreatedAt, &ws.Reps, &ws.Weight, &ws.IsCompleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying working set: %w", err)
	}
	return &ws, nil
}

func (s *Store) UpdateWorkingSet(ctx context.Context, ws *models.WorkingSet) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE working_sets SET reps = $1, weight = $2, is_completed = $3 WHERE id = $4`,
		ws.Reps, ws.Weight, ws.IsCompleted, ws.ID)
	if err != nil {
		return fmt.Errorf("updating working set: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteWorkingSet(ctx context.Context, id uuid.UUID) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM working_sets WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting working set: %w", err)
	}
	return nil
}

func (s *Store) ListWorkingSets(ctx context.Context, exerciseID uuid.UUID) ([]models.WorkingSet, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, exercise_id, created_at, reps, weight, is_completed
		 FROM working_sets WHERE exercise_id = $1
		 ORDER BY created_at ASC`, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("querying working sets: %w", err)
	}
	defer rows.Close()

	var result []models.WorkingSet
	for rows.Next() {
		var ws models.WorkingSet
		if err := rows.Scan(&ws.ID, &ws.ExerciseID, &ws.CreatedAt, &ws.Reps, &ws.Weight, &ws.IsCompleted); err != nil {
			return nil, fmt.Errorf("scanning working set: %w", err)
		}
		result = append(result, ws)
	}
	return result, rows.Err()
}

func (s *Store) PurgeWorkingSets(ctx context.Context, exerciseIDs []uuid.UUID) error {
	if len(exerciseIDs) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`DELETE FROM working_sets WHERE exercise_id = ANY($1)`, exerciseIDs)
	if err != nil {
		return fmt.Errorf("purging working sets: %w", err)
	}
	return nil
}
