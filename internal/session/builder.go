package session

import (
	"sort"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// BuildSets expands a template snapshot into the flat, ordered set list for a
// live session. Exercises are walked in sort order and each contributes
// setsCount sets numbered from 1. Target weights are computed here, once, so
// the session is insulated from later template or overload edits. An empty
// template yields an empty list; whether that is allowed is the caller's call.
func BuildSets(t models.WorkoutTemplate) []models.ActiveSet {
	exercises := make([]models.ExerciseSpec, len(t.Exercises))
	copy(exercises, t.Exercises)
	sort.SliceStable(exercises, func(i, j int) bool {
		return exercises[i].SortOrder < exercises[j].SortOrder
	})

	var sets []models.ActiveSet
	for _, ex := range exercises {
		target := TargetWeight(ex, t.WeeksCompleted)
		for n := 1; n <= ex.SetsCount; n++ {
			sets = append(sets, models.ActiveSet{
				ID:                uuid.New(),
				WorkoutExerciseID: ex.ID,
				ExerciseName:      ex.Name,
				SetNumber:         n,
				TargetReps:        ex.RepsTarget,
				TargetWeightKg:    target,
				RestSeconds:       ex.RestSeconds,
				ActualReps:        0,
				ActualWeightKg:    target,
			})
		}
	}
	return sets
}
