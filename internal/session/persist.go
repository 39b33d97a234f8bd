package session

import (
	"encoding/json"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// encodeSession serializes the crash-recovery blob.
func encodeSession(s *models.ActiveSession) ([]byte, error) {
	return json.Marshal(s)
}

// decodeSession deserializes and structurally validates a persisted session
// blob. Any mismatch (bad JSON, missing required fields, a broken pause
// invariant) yields nil, which callers treat as "no active session". Corrupt
// state must never take the app down.
func decodeSession(blob []byte) *models.ActiveSession {
	var s models.ActiveSession
	if err := json.Unmarshal(blob, &s); err != nil {
		return nil
	}
	if s.WorkoutID == uuid.Nil || s.WorkoutName == "" || s.StartedAt.IsZero() {
		return nil
	}
	if s.TotalPausedMs < 0 {
		return nil
	}
	// pauseStartedAt is set exactly when isPaused is true
	if s.IsPaused != (s.PauseStartedAt != nil) {
		return nil
	}
	if s.BodyweightKg != nil && *s.BodyweightKg < 0 {
		return nil
	}
	for _, set := range s.Sets {
		if set.ID == uuid.Nil || set.WorkoutExerciseID == uuid.Nil || set.ExerciseName == "" {
			return nil
		}
		if set.SetNumber < 1 || set.TargetReps < 0 || set.ActualReps < 0 || set.RestSeconds < 0 {
			return nil
		}
	}
	return &s
}
