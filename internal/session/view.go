package session

import (
	"context"
	"time"

	"github.com/meltforce/liftlog/internal/models"
)

// View is a read snapshot of the session for the presentation layer, which
// polls it after each operation rather than receiving callbacks.
type View struct {
	State            string         `json:"state"`
	Name             string         `json:"name,omitempty"`
	StartTime        *time.Time     `json:"start_time,omitempty"`
	TemplateName     string         `json:"template_name,omitempty"`
	AllSetsCompleted bool           `json:"all_sets_completed"`
	Exercises        []ExerciseView `json:"exercises,omitempty"`
}

// ExerciseView is one working-list entry with its current sets.
type ExerciseView struct {
	Exercise models.Exercise     `json:"exercise"`
	Sets     []models.WorkingSet `json:"sets"`
}

// Snapshot builds a View of the current session state.
func (e *Engine) Snapshot(ctx context.Context) (*View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	v := &View{State: e.state.String()}
	if e.state != Active {
		return v, nil
	}

	v.Name = e.name
	start := e.startTime
	v.StartTime = &start
	v.TemplateName = e.templateNameLocked()

	done, err := e.allSetsCompletedLocked(ctx)
	if err != nil {
		return nil, err
	}
	v.AllSetsCompleted = done

	for _, ex := range e.exercises {
		sets, err := e.store.ListWorkingSets(ctx, ex.ID)
		if err != nil {
			return nil, err
		}
		v.Exercises = append(v.Exercises, ExerciseView{Exercise: ex, Sets: sets})
	}
	return v, nil
}
