package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/storage"
)

func (s *Store) InsertWorkingSet(ctx context.Context, ws *models.WorkingSet) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO working_sets (id, exercise_id, created_at, reps, weight, is_completed)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ws.ID.String(), ws.ExerciseID.String(), toNanos(ws.CreatedAt), ws.Reps, ws.Weight, ws.IsCompleted)
	if err != nil {
		return fmt.Errorf("inserting working set: %w", err)
	}
	return nil
}

func (s *Store) GetWorkingSet(ctx context.Context, id uuid.UUID) (*models.WorkingSet, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, exercise_id, created_at, reps, weight, is_completed
		 FROM working_sets WHERE id = ?`, id.String())
	ws, err := scanWorkingSet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying working set: %w", err)
	}
	return ws, nil
}

func (s *Store) UpdateWorkingSet(ctx context.Context, ws *models.WorkingSet) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE working_sets SET reps = ?, weight = ?, is_completed = ? WHERE id = ?`,
		ws.Reps, ws.Weight, ws.IsCompleted, ws.ID.String())
	if err != nil {
		return fmt.Errorf("updating working set: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating working set: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteWorkingSet is a no-op when the set no longer exists; deletion races
// are expected and harmless.
func (s *Store) DeleteWorkingSet(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM working_sets WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("deleting working set: %w", err)
	}
	return nil
}

func (s *Store) ListWorkingSets(ctx context.Context, exerciseID uuid.UUID) ([]models.WorkingSet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, exercise_id, created_at, reps, weight, is_completed
		 FROM working_sets WHERE exercise_id = ?
		 ORDER BY created_at ASC`, exerciseID.String())
	if err != nil {
		return nil, fmt.Errorf("querying working sets: %w", err)
	}
	defer rows.Close()

	var result []models.WorkingSet
	for rows.Next() {
		ws, err := scanWorkingSet(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning working set: %w", err)
		}
		result = append(result, *ws)
	}
	return result, rows.Err()
}

func (s *Store) PurgeWorkingSets(ctx context.Context, exerciseIDs []uuid.UUID) error {
	if len(exerciseIDs) == 0 {
		return nil
	}
	args := make([]any, len(exerciseIDs))
	for i, id := range exerciseIDs {
		args[i] = id.String()
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM working_sets WHERE exercise_id IN (`+placeholders(len(args))+`)`, args...)
	if err != nil {
		return fmt.Errorf("purging working sets: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkingSet(row rowScanner) (*models.WorkingSet, error) {
	var ws models.WorkingSet
	var rawID, rawExerciseID string
	var createdAt int64
	if err := row.Scan(&rawID, &rawExerciseID, &createdAt, &ws.Reps, &ws.Weight, &ws.IsCompleted); err != nil {
		return nil, err
	}
	var err error
	if ws.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("parsing set id: %w", err)
	}
	if ws.ExerciseID, err = uuid.Parse(rawExerciseID); err != nil {
		return nil, fmt.Errorf("parsing exercise id: %w", err)
	}
	ws.CreatedAt = fromNanos(createdAt)
	return &ws, nil
}
