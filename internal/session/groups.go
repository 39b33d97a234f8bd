package session

import (
	"sort"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// ExerciseGroup is the display grouping of a session's sets: one entry per
// exercise in first-seen order, sets sorted by set number.
type ExerciseGroup struct {
	WorkoutExerciseID uuid.UUID          `json:"workoutExerciseId"`
	ExerciseName      string             `json:"exerciseName"`
	TargetWeightKg    float64            `json:"targetWeightKg"`
	RestSeconds       int                `json:"restSeconds"`
	Sets              []models.ActiveSet `json:"sets"`
}

// GroupByExercise folds a flat set list into per-exercise groups, preserving
// the order exercises first appear in.
func GroupByExercise(sets []models.ActiveSet) []ExerciseGroup {
	var groups []ExerciseGroup
	index := make(map[uuid.UUID]int)

	for _, s := range sets {
		i, ok := index[s.WorkoutExerciseID]
		if !ok {
			i = len(groups)
			index[s.WorkoutExerciseID] = i
			groups = append(groups, ExerciseGroup{
				WorkoutExerciseID: s.WorkoutExerciseID,
				ExerciseName:      s.ExerciseName,
				TargetWeightKg:    s.TargetWeightKg,
				RestSeconds:       s.RestSeconds,
			})
		}
		groups[i].Sets = append(groups[i].Sets, s)
	}

	for i := range groups {
		sort.SliceStable(groups[i].Sets, func(a, b int) bool {
			return groups[i].Sets[a].SetNumber < groups[i].Sets[b].SetNumber
		})
	}
	return groups
}
