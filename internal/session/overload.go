package session

import "github.com/claude/liftlog/internal/models"

// TargetWeight computes the progressive-overload target for an exercise after
// the given number of completed weeks: start weight plus the weekly increment
// per week. The result may be negative for assisted exercises; callers render
// that distinctly but never clamp it.
func TargetWeight(ex models.ExerciseSpec, weeksCompleted int) float64 {
	return ex.StartWeightKg + ex.WeeklyIncrementKg*float64(weeksCompleted)
}
