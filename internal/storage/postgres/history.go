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

// SaveWorkoutSession writes the full workout tree and purges the given
// exercises' working sets in one transaction.
func (s *Store) SaveWorkoutSession(ctx context.Context, ws *models.WorkoutSession, purgeExercises []uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO workout_sessions (id, name, start_time, end_time, is_completed, template_name)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		ws.ID, ws.Name, ws.StartTime, ws.EndTime, ws.IsCompleted, ws.TemplateName); err != nil {
		return fmt.Errorf("inserting workout session: %w", err)
	}

	for pos, es := range ws.Exercises {
		if _, err := tx.Exec(ctx,
			`INSERT INTO exercise_sessions (id, workout_session_id, position, exercise_name, body_part, category)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			es.ID, ws.ID, pos, es.ExerciseName, es.BodyPart, es.Category); err != nil {
			return fmt.Errorf("inserting exercise session: %w", err)
		}
		for _, cs := range es.Sets {
			if _, err := tx.Exec(ctx,
				`INSERT INTO completed_sets (id, exercise_session_id, set_number, reps, weight, completed_at)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				cs.ID, es.ID, cs.SetNumber, cs.Reps, cs.Weight, cs.CompletedAt); err != nil {
				return fmt.Errorf("inserting completed set: %w", err)
			}
		}
	}

	if len(purgeExercises) > 0 {
		if _, err := tx.Exec(ctx,
			`DELETE FROM working_sets WHERE exercise_id = ANY($1)`, purgeExercises); err != nil {
			return fmt.Errorf("purging working sets: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing workout session: %w", err)
	}
	return nil
}

func (s *Store) ListWorkoutSessions(ctx context.Context, limit int) ([]models.WorkoutSession, error) {
	query := `SELECT id, name, start_time, end_time, is_completed, template_name
		 FROM workout_sessions
		 ORDER BY COALESCE(end_time, start_time) DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying workout sessions: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutSession
	for rows.Next() {
		var ws models.WorkoutSession
		if err := rows.Scan(&ws.ID, &ws.Name, &ws.StartTime, &ws.EndTime, &ws.IsCompleted, &ws.TemplateName); err != nil {
			return nil, fmt.Errorf("scanning workout session: %w", err)
		}
		result = append(result, ws)
	}
	return result, rows.Err()
}

func (s *Store) GetWorkoutSession(ctx context.Context, id uuid.UUID) (*models.WorkoutSession, error) {
	var ws models.WorkoutSession
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, start_time, end_time, is_completed, template_name
		 FROM workout_sessions WHERE id = $1`, id).
		Scan(&ws.ID, &ws.Name, &ws.StartTime, &ws.EndTime, &ws.IsCompleted, &ws.TemplateName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying workout session: %w", err)
	}

	esRows, err := s.pool.Query(ctx,
		`SELECT id, workout_session_id, exercise_name, body_part, category
		 FROM exercise_sessions WHERE workout_session_id = $1
		 ORDER BY position ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("querying exercise sessions: %w", err)
	}
	defer esRows.Close()

	for esRows.Next() {
		var es models.ExerciseSession
		if err := esRows.Scan(&es.ID, &es.WorkoutSessionID, &es.ExerciseName, &es.BodyPart, &es.Category); err != nil {
			return nil, fmt.Errorf("scanning exercise session: %w", err)
		}
		ws.Exercises = append(ws.Exercises, es)
	}
	if err := esRows.Err(); err != nil {
		return nil, err
	}

	for i := range ws.Exercises {
		ws.Exercises[i].Sets, err = s.completedSets(ctx, ws.Exercises[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return &ws, nil
}

func (s *Store) completedSets(ctx context.Context, exerciseSessionID uuid.UUID) ([]models.CompletedSet, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, exercise_session_id, set_number, reps, weight, completed_at
		 FROM completed_sets WHERE exercise_session_id = $1
		 ORDER BY set_number ASC`, exerciseSessionID)
	if err != nil {
		return nil, fmt.Errorf("querying completed sets: %w", err)
	}
	defer rows.Close()

	var result []models.CompletedSet
	for rows.Next() {
		var cs models.CompletedSet
		if err := rows.Scan(&cs.ID, &cs.ExerciseSessionID, &cs.SetNumber, &cs.Reps, &cs.Weight, &cs.CompletedAt); err != nil {
			return nil, fmt.Errorf("scanning completed set: %w", err)
		}
		result = append(result, cs)
	}
	return result, rows.Err()
}

func (s *Store) RecentCompletedSets(ctx context.Context, exerciseName string, limit int) ([]models.CompletedSet, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT cs.id, cs.exercise_session_id, cs.set_number, cs.reps, cs.weight, cs.completed_at
		 FROM completed_sets cs
		 JOIN exercise_sessions es ON es.id = cs.exercise_session_id
		 WHERE es.exercise_name = $1
		 ORDER BY cs.completed_at DESC, cs.set_number DESC
		 LIMIT $2`, exerciseName, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent sets: %w", err)
	}
	defer rows.Close()

	var result []models.CompletedSet
	for rows.Next() {
		var cs models.CompletedSet
		if err := rows.Scan(&cs.ID, &cs.ExerciseSessionID, &cs.SetNumber, &cs.Reps, &cs.Weight, &cs.CompletedAt); err != nil {
			return nil, fmt.Errorf("scanning completed set: %w", err)
		}
		result = append(result, cs)
	}
	return result, rows.Err()
}

func (s *Store) Stats(ctx context.Context) (*storage.DataStats, error) {
	stats := &storage.DataStats{}

	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM workout_sessions`).Scan(&stats.TotalWorkouts); err != nil {
		return nil, fmt.Errorf("counting workouts: %w", err)
	}
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(reps), 0), COALESCE(SUM(weight * reps), 0) FROM completed_sets`).
		Scan(&stats.TotalCompletedSets, &stats.TotalReps, &stats.TotalTonnage); err != nil {
		return nil, fmt.Errorf("summing completed sets: %w", err)
	}
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exercises`).Scan(&stats.TotalExercises); err != nil {
		return nil, fmt.Errorf("counting exercises: %w", err)
	}
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM templates`).Scan(&stats.TotalTemplates); err != nil {
		return nil, fmt.Errorf("counting templates: %w", err)
	}
	if err := s.pool.QueryRow(ctx,
		`SELECT MAX(end_time) FROM workout_sessions`).Scan(&stats.LastWorkout); err != nil {
		return nil, fmt.Errorf("finding last workout: %w", err)
	}
	return stats, nil
}
