package session

import (
	"testing"

	"github.com/claude/liftlog/internal/models"
)

// TestTargetWeightLinear verifies the overload formula is linear in the
// completed-week counter.
func TestTargetWeightLinear(t *testing.T) {
	ex := models.ExerciseSpec{StartWeightKg: 100, WeeklyIncrementKg: 2.5}

	cases := []struct {
		weeks int
		want  float64
	}{
		{0, 100},
		{1, 102.5},
		{3, 107.5},
		{4, 110},
		{10, 125},
	}
	for _, tc := range cases {
		if got := TargetWeight(ex, tc.weeks); got != tc.want {
			t.Errorf("TargetWeight(weeks=%d) = %v, want %v", tc.weeks, got, tc.want)
		}
	}
}

// TestTargetWeightAssisted verifies that assisted exercises (negative start
// weight) keep their sign: the target may cross zero but is never clamped.
func TestTargetWeightAssisted(t *testing.T) {
	ex := models.ExerciseSpec{StartWeightKg: -20, WeeklyIncrementKg: 2.5}

	if got := TargetWeight(ex, 0); got != -20 {
		t.Errorf("week 0 = %v, want -20", got)
	}
	if got := TargetWeight(ex, 4); got != -10 {
		t.Errorf("week 4 = %v, want -10", got)
	}
	// Eight weeks in, assistance is gone entirely; the result may legally
	// reach and pass zero.
	if got := TargetWeight(ex, 10); got != 5 {
		t.Errorf("week 10 = %v, want 5", got)
	}
}
