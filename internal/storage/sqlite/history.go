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

// SaveWorkoutSession writes the full workout tree and purges the given
// exercises' working sets in one transaction.
func (s *Store) SaveWorkoutSession(ctx context.Context, ws *models.WorkoutSession, purgeExercises []uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var endTime sql.NullInt64
	if ws.EndTime != nil {
		endTime = sql.NullInt64{Int64: toNanos(*ws.EndTime), Valid: true}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO workout_sessions (id, name, start_time, end_time, is_completed, template_name)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ws.ID.String(), ws.Name, toNanos(ws.StartTime), endTime, ws.IsCompleted, ws.TemplateName); err != nil {
		return fmt.Errorf("inserting workout session: %w", err)
	}

	for pos, es := range ws.Exercises {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO exercise_sessions (id, workout_session_id, position, exercise_name, body_part, category)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			es.ID.String(), ws.ID.String(), pos, es.ExerciseName, es.BodyPart, es.Category); err != nil {
			return fmt.Errorf("inserting exercise session: %w", err)
		}
		for _, cs := range es.Sets {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO completed_sets (id, exercise_session_id, set_number, reps, weight, completed_at)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				cs.ID.String(), es.ID.String(), cs.SetNumber, cs.Reps, cs.Weight, toNanos(cs.CompletedAt)); err != nil {
				return fmt.Errorf("inserting completed set: %w", err)
			}
		}
	}

	if len(purgeExercises) > 0 {
		args := make([]any, len(purgeExercises))
		for i, id := range purgeExercises {
			args[i] = id.String()
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM working_sets WHERE exercise_id IN (`+placeholders(len(args))+`)`, args...); err != nil {
			return fmt.Errorf("purging working sets: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing workout session: %w", err)
	}
	return nil
}

func (s *Store) ListWorkoutSessions(ctx context.Context, limit int) ([]models.WorkoutSession, error) {
	query := `SELECT id, name, start_time, end_time, is_completed, template_name
		 FROM workout_sessions
		 ORDER BY COALESCE(end_time, start_time) DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying workout sessions: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutSession
	for rows.Next() {
		ws, err := scanWorkoutSession(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ws)
	}
	return result, rows.Err()
}

func (s *Store) GetWorkoutSession(ctx context.Context, id uuid.UUID) (*models.WorkoutSession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, start_time, end_time, is_completed, template_name
		 FROM workout_sessions WHERE id = ?`, id.String())
	ws, err := scanWorkoutSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	esRows, err := s.db.QueryContext(ctx,
		`SELECT id, workout_session_id, exercise_name, body_part, category
		 FROM exercise_sessions WHERE workout_session_id = ?
		 ORDER BY position ASC`, id.String())
	if err != nil {
		return nil, fmt.Errorf("querying exercise sessions: %w", err)
	}
	defer esRows.Close()

	for esRows.Next() {
		var es models.ExerciseSession
		var rawID, rawSessionID string
		if err := esRows.Scan(&rawID, &rawSessionID, &es.ExerciseName, &es.BodyPart, &es.Category); err != nil {
			return nil, fmt.Errorf("scanning exercise session: %w", err)
		}
		if es.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("parsing exercise session id: %w", err)
		}
		if es.WorkoutSessionID, err = uuid.Parse(rawSessionID); err != nil {
			return nil, fmt.Errorf("parsing workout session id: %w", err)
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
	return ws, nil
}

func (s *Store) completedSets(ctx context.Context, exerciseSessionID uuid.UUID) ([]models.CompletedSet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, exercise_session_id, set_number, reps, weight, completed_at
		 FROM completed_sets WHERE exercise_session_id = ?
		 ORDER BY set_number ASC`, exerciseSessionID.String())
	if err != nil {
		return nil, fmt.Errorf("querying completed sets: %w", err)
	}
	defer rows.Close()

	var result []models.CompletedSet
	for rows.Next() {
		cs, err := scanCompletedSet(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *cs)
	}
	return result, rows.Err()
}

// RecentCompletedSets returns historical sets for an exercise name across all
// sessions, most recently completed first.
func (s *Store) RecentCompletedSets(ctx context.Context, exerciseName string, limit int) ([]models.CompletedSet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cs.id, cs.exercise_session_id, cs.set_number, cs.reps, cs.weight, cs.completed_at
		 FROM completed_sets cs
		 JOIN exercise_sessions es ON es.id = cs.exercise_session_id
		 WHERE es.exercise_name = ?
		 ORDER BY cs.completed_at DESC, cs.set_number DESC
		 LIMIT ?`, exerciseName, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent sets: %w", err)
	}
	defer rows.Close()

	var result []models.CompletedSet
	for rows.Next() {
		cs, err := scanCompletedSet(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *cs)
	}
	return result, rows.Err()
}

func (s *Store) Stats(ctx context.Context) (*storage.DataStats, error) {
	stats := &storage.DataStats{}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM workout_sessions`).Scan(&stats.TotalWorkouts); err != nil {
		return nil, fmt.Errorf("counting workouts: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(reps), 0), COALESCE(SUM(weight * reps), 0) FROM completed_sets`).
		Scan(&stats.TotalCompletedSets, &stats.TotalReps, &stats.TotalTonnage); err != nil {
		return nil, fmt.Errorf("summing completed sets: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM exercises`).Scan(&stats.TotalExercises); err != nil {
		return nil, fmt.Errorf("counting exercises: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM templates`).Scan(&stats.TotalTemplates); err != nil {
		return nil, fmt.Errorf("counting templates: %w", err)
	}

	var last sql.NullInt64
	if err := s.db.QueryRowContext(ctx,
		`SELECT MAX(end_time) FROM workout_sessions`).Scan(&last); err != nil {
		return nil, fmt.Errorf("finding last workout: %w", err)
	}
	if last.Valid {
		t := fromNanos(last.Int64)
		stats.LastWorkout = &t
	}
	return stats, nil
}

func scanWorkoutSession(row rowScanner) (*models.WorkoutSession, error) {
	var ws models.WorkoutSession
	var rawID string
	var startTime int64
	var endTime sql.NullInt64
	if err := row.Scan(&rawID, &ws.Name, &startTime, &endTime, &ws.IsCompleted, &ws.TemplateName); err != nil {
		return nil, err
	}
	var err error
	if ws.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("parsing workout session id: %w", err)
	}
	ws.StartTime = fromNanos(startTime)
	if endTime.Valid {
		t := fromNanos(endTime.Int64)
		ws.EndTime = &t
	}
	return &ws, nil
}

func scanCompletedSet(row rowScanner) (*models.CompletedSet, error) {
	var cs models.CompletedSet
	var rawID, rawSessionID string
	var completedAt int64
	if err := row.Scan(&rawID, &rawSessionID, &cs.SetNumber, &cs.Reps, &cs.Weight, &completedAt); err != nil {
		return nil, fmt.Errorf("scanning completed set: %w", err)
	}
	var err error
	if cs.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("parsing set id: %w", err)
	}
	if cs.ExerciseSessionID, err = uuid.Parse(rawSessionID); err != nil {
		return nil, fmt.Errorf("parsing exercise session id: %w", err)
	}
	cs.CompletedAt = fromNanos(completedAt)
	return &cs, nil
}
