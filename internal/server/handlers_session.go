package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
	"github.com/google/uuid"
)

// sessionState is the live-session view: the session itself, derived timing,
// and the display grouping the session screen renders.
type sessionState struct {
	Session   *models.ActiveSession   `json:"session"`
	ElapsedMs int64                   `json:"elapsedMs"`
	Groups    []session.ExerciseGroup `json:"groups"`
	RestTimer *restTimerState         `json:"restTimer"`
}

type restTimerState struct {
	SetID        uuid.UUID `json:"setId"`
	ExerciseName string    `json:"exerciseName"`
	EndsAt       time.Time `json:"endsAt"`
	RemainingMs  int64     `json:"remainingMs"`
}

func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	cur := s.sessions.Current()
	if cur == nil {
		writeError(w, http.StatusNotFound, "no active session")
		return
	}
	writeJSON(w, http.StatusOK, s.stateFor(cur))
}

func (s *Server) stateFor(cur *models.ActiveSession) sessionState {
	now := time.Now()
	state := sessionState{
		Session:   cur,
		ElapsedMs: session.Elapsed(cur, now).Milliseconds(),
		Groups:    session.GroupByExercise(cur.Sets),
	}
	if t := s.rest.Active(); t != nil {
		state.RestTimer = &restTimerState{
			SetID:        t.SetID,
			ExerciseName: t.ExerciseName,
			EndsAt:       t.EndsAt,
			RemainingMs:  t.Remaining(now).Milliseconds(),
		}
	}
	return state
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WorkoutID uuid.UUID `json:"workoutId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.WorkoutID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "workoutId is required")
		return
	}

	cur, err := s.sessions.Start(r.Context(), req.WorkoutID)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.stateFor(cur))
}

func (s *Server) handlePauseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Pause(r.Context()); err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.stateFor(s.sessions.Current()))
}

func (s *Server) handleResumeSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Resume(r.Context()); err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.stateFor(s.sessions.Current()))
}

func (s *Server) handleTapSet(w http.ResponseWriter, r *http.Request) {
	setID, ok := parseID(w, r, "setId")
	if !ok {
		return
	}
	res, err := s.sessions.TapSet(r.Context(), setID)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}

	// A completing tap starts the rest countdown; a decrement on the timed
	// set cancels it.
	if res.Completed {
		s.rest.Start(r.Context(), res.Set)
	} else {
		s.rest.CancelForSet(r.Context(), setID)
	}
	writeJSON(w, http.StatusOK, s.stateFor(s.sessions.Current()))
}

func (s *Server) handleSetCustomValues(w http.ResponseWriter, r *http.Request) {
	setID, ok := parseID(w, r, "setId")
	if !ok {
		return
	}
	var req struct {
		Reps     *int     `json:"reps"`
		WeightKg *float64 `json:"weightKg"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := s.sessions.SetCustomValues(r.Context(), setID, req.Reps, req.WeightKg); err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.stateFor(s.sessions.Current()))
}

func (s *Server) handleSetBodyweight(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BodyweightKg *float64 `json:"bodyweightKg"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := s.sessions.SetBodyweight(r.Context(), req.BodyweightKg); err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.stateFor(s.sessions.Current()))
}

func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	rec, err := s.sessions.Finish(r.Context())
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	s.rest.Clear(r.Context())
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDiscardSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Discard(r.Context()); err != nil {
		s.writeSessionError(w, err)
		return
	}
	s.rest.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
