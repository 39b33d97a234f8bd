package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutTemplate is a reusable workout definition. WeeksCompleted drives the
// progressive-overload target weights and is only ever advanced by one.
type WorkoutTemplate struct {
	ID             uuid.UUID      `json:"id"`
	Name           string         `json:"name"`
	CreatedAt      time.Time      `json:"createdAt"`
	WeeksCompleted int            `json:"weeksCompleted"`
	Exercises      []ExerciseSpec `json:"exercises"`
}

// ExerciseSpec defines one exercise slot in a template. StartWeightKg may be
// negative: assisted exercises subtract weight, and the sign carries through
// every downstream computation unclamped.
type ExerciseSpec struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	SetsCount         int       `json:"setsCount"`
	RepsTarget        int       `json:"repsTarget"`
	RestSeconds       int       `json:"restSeconds"`
	StartWeightKg     float64   `json:"startWeightKg"`
	WeeklyIncrementKg float64   `json:"weeklyIncrementKg"`
	SortOrder         int       `json:"sortOrder"`
}

// ActiveSession is the single in-progress workout. At most one exists
// system-wide; the session package enforces that. The JSON shape is the
// crash-recovery blob, so field names are load-bearing.
type ActiveSession struct {
	WorkoutID            uuid.UUID   `json:"workoutId"`
	WorkoutName          string      `json:"workoutName"`
	StartedAt            time.Time   `json:"startedAt"`
	BodyweightKg         *float64    `json:"bodyweightKg"`
	TotalPausedMs        int64       `json:"totalPausedMs"`
	PauseStartedAt       *time.Time  `json:"pauseStartedAt"`
	IsPaused             bool        `json:"isPaused"`
	RestoredFromAppClose bool        `json:"restoredFromAppClose"`
	Sets                 []ActiveSet `json:"sets"`
}

// Clone returns a deep copy so transitions can be computed, persisted and
// only then committed.
func (s *ActiveSession) Clone() *ActiveSession {
	out := *s
	if s.BodyweightKg != nil {
		bw := *s.BodyweightKg
		out.BodyweightKg = &bw
	}
	if s.PauseStartedAt != nil {
		ps := *s.PauseStartedAt
		out.PauseStartedAt = &ps
	}
	out.Sets = make([]ActiveSet, len(s.Sets))
	copy(out.Sets, s.Sets)
	return &out
}

// ActiveSet is one trackable set within an active session. TargetWeightKg is
// frozen at session start; ActualWeightKg starts equal to it and is
// independently editable.
type ActiveSet struct {
	ID                uuid.UUID `json:"id"`
	WorkoutExerciseID uuid.UUID `json:"workoutExerciseId"`
	ExerciseName      string    `json:"exerciseName"`
	SetNumber         int       `json:"setNumber"`
	TargetReps        int       `json:"targetReps"`
	TargetWeightKg    float64   `json:"targetWeightKg"`
	RestSeconds       int       `json:"restSeconds"`
	ActualReps        int       `json:"actualReps"`
	ActualWeightKg    float64   `json:"actualWeightKg"`
}

// Completed reports whether the set counts as done: any nonzero rep count.
func (s ActiveSet) Completed() bool {
	return s.ActualReps > 0
}

// WorkoutSession is an immutable history record of a finished performance.
type WorkoutSession struct {
	ID           uuid.UUID    `json:"id"`
	WorkoutID    uuid.UUID    `json:"workoutId"`
	PerformedAt  time.Time    `json:"performedAt"`
	BodyweightKg *float64     `json:"bodyweightKg"`
	Sets         []SessionSet `json:"sets"`
}

// SessionSet is one logged set within a history record.
type SessionSet struct {
	WorkoutExerciseID uuid.UUID `json:"workoutExerciseId"`
	ExerciseName      string    `json:"exerciseName"`
	SetNumber         int       `json:"setNumber"`
	Reps              int       `json:"reps"`
	WeightKg          float64   `json:"weightKg"`
}
