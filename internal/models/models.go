package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Exercise is a catalog entry. Names are unique case-insensitively.
type Exercise struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	BodyPart string    `json:"body_part"`
	Category string    `json:"category"`
}

// Template is a named, ordered list of catalog exercises used to seed a new
// workout. Deleting a template never deletes the referenced exercises.
type Template struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Exercises []Exercise `json:"exercises"`
}

// WorkingSet is a mutable, in-progress weight/rep entry. Working sets exist
// only while a workout is active: at session end they are either promoted
// into CompletedSets or purged.
type WorkingSet struct {
	ID          uuid.UUID `json:"id"`
	ExerciseID  uuid.UUID `json:"exercise_id"`
	CreatedAt   time.Time `json:"created_at"`
	Reps        int       `json:"reps"`
	Weight      float64   `json:"weight"`
	IsCompleted bool      `json:"is_completed"`
}

// WorkoutSession is an archived workout. EndTime and IsCompleted are set
// together, exactly once, when the workout finishes.
type WorkoutSession struct {
	ID           uuid.UUID         `json:"id"`
	Name         string            `json:"name"`
	StartTime    time.Time         `json:"start_time"`
	EndTime      *time.Time        `json:"end_time,omitempty"`
	IsCompleted  bool              `json:"is_completed"`
	TemplateName string            `json:"template_name,omitempty"`
	Exercises    []ExerciseSession `json:"exercises,omitempty"`
}

// ExerciseSession snapshots one exercise within an archived workout. Name,
// body part and category are copied at finish time so later catalog edits
// never rewrite history.
type ExerciseSession struct {
	ID               uuid.UUID      `json:"id"`
	WorkoutSessionID uuid.UUID      `json:"workout_session_id"`
	ExerciseName     string         `json:"exercise_name"`
	BodyPart         string         `json:"body_part"`
	Category         string         `json:"category"`
	Sets             []CompletedSet `json:"sets,omitempty"`
}

// CompletedSet is an immutable historical set. SetNumber is a dense 1..N
// sequence within one exercise session, ordered by the creation time of the
// working set it was promoted from.
type CompletedSet struct {
	ID                uuid.UUID `json:"id"`
	ExerciseSessionID uuid.UUID `json:"exercise_session_id"`
	SetNumber         int       `json:"set_number"`
	Reps              int       `json:"reps"`
	Weight            float64   `json:"weight"`
	CompletedAt       time.Time `json:"completed_at"`
}

// Duration returns the workout length. ok is false while the workout has no
// end time.
func (w *WorkoutSession) Duration() (d time.Duration, ok bool) {
	if w.EndTime == nil {
		return 0, false
	}
	return w.EndTime.Sub(w.StartTime), true
}

// FormattedDuration renders the duration as "1h 5m" or "45m", or
// "In Progress" when the workout has not finished.
func (w *WorkoutSession) FormattedDuration() string {
	d, ok := w.Duration()
	if !ok {
		return "In Progress"
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// CompletionDate is the date a workout shows under in history: the end time
// when finished, otherwise the start time.
func (w *WorkoutSession) CompletionDate() time.Time {
	if w.EndTime != nil {
		return *w.EndTime
	}
	return w.StartTime
}
