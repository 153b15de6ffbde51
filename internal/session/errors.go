package session

import "errors"

// ErrInvalidTransition is returned when an operation is not legal in the
// current state, e.g. finishing before every working set is completed.
// Callers should recheck the gating state and retry; nothing is fatal.
var ErrInvalidTransition = errors.New("invalid session transition")

// ErrNoActiveWorkout is returned when an operation requires an active
// workout and the session is idle.
var ErrNoActiveWorkout = errors.New("no active workout")

// ErrExerciseNotInWorkout is returned when a set operation targets an
// exercise that is not on the current working list.
var ErrExerciseNotInWorkout = errors.New("exercise is not part of the current workout")
