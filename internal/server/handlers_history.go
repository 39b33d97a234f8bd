package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// historyRequest is the direct-edit payload for history records: the escape
// hatch for logging or fixing a performance outside the live-session flow.
type historyRequest struct {
	WorkoutID    uuid.UUID           `json:"workoutId"`
	PerformedAt  time.Time           `json:"performedAt"`
	BodyweightKg *float64            `json:"bodyweightKg"`
	Sets         []models.SessionSet `json:"sets"`
}

func (req historyRequest) validate() string {
	if req.WorkoutID == uuid.Nil {
		return "workoutId is required"
	}
	if req.PerformedAt.IsZero() {
		return "performedAt is required"
	}
	for _, s := range req.Sets {
		if s.ExerciseName == "" {
			return "every set needs an exerciseName"
		}
		if s.SetNumber < 1 {
			return "setNumber must be at least 1"
		}
		if s.Reps < 0 {
			return "reps must not be negative"
		}
	}
	return ""
}

func (s *Server) handleQueryHistory(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sessions, err := s.db.QueryWorkoutSessions(r.Context(), start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sessions == nil {
		sessions = []models.WorkoutSession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleCreateHistory(w http.ResponseWriter, r *http.Request) {
	var req historyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	rec := models.WorkoutSession{
		ID:           uuid.New(),
		WorkoutID:    req.WorkoutID,
		PerformedAt:  req.PerformedAt,
		BodyweightKg: req.BodyweightKg,
		Sets:         req.Sets,
	}
	if err := s.db.CreateWorkoutSession(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	rec, err := s.db.GetWorkoutSession(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleUpdateHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req historyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	rec := models.WorkoutSession{
		ID:           id,
		WorkoutID:    req.WorkoutID,
		PerformedAt:  req.PerformedAt,
		BodyweightKg: req.BodyweightKg,
		Sets:         req.Sets,
	}
	changed, err := s.db.UpdateWorkoutSession(r.Context(), rec)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !changed {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	deleted, err := s.db.DeleteWorkoutSession(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
