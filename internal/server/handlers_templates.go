package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/units"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// templateRequest is the create/update payload. IDs for new exercises are
// assigned server-side. An omitted weeklyIncrementKg gets the unit-specific
// default; an explicit 0 means no progression for that exercise.
type templateRequest struct {
	Name      string                `json:"name"`
	Exercises []exerciseSpecRequest `json:"exercises"`
}

type exerciseSpecRequest struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	SetsCount         int       `json:"setsCount"`
	RepsTarget        int       `json:"repsTarget"`
	RestSeconds       int       `json:"restSeconds"`
	StartWeightKg     float64   `json:"startWeightKg"`
	WeeklyIncrementKg *float64  `json:"weeklyIncrementKg"`
	SortOrder         int       `json:"sortOrder"`
}

func (req templateRequest) validate() string {
	if req.Name == "" {
		return "name is required"
	}
	for _, e := range req.Exercises {
		if e.Name == "" {
			return "every exercise needs a name"
		}
		if e.SetsCount < 1 {
			return "setsCount must be at least 1"
		}
		if e.RepsTarget < 1 {
			return "repsTarget must be at least 1"
		}
		if e.RestSeconds < 0 {
			return "restSeconds must not be negative"
		}
	}
	return ""
}

func (req templateRequest) toModel(id uuid.UUID, createdAt time.Time, weeksCompleted int, unit units.Unit) models.WorkoutTemplate {
	t := models.WorkoutTemplate{
		ID:             id,
		Name:           req.Name,
		CreatedAt:      createdAt,
		WeeksCompleted: weeksCompleted,
	}
	for _, e := range req.Exercises {
		exID := e.ID
		if exID == uuid.Nil {
			exID = uuid.New()
		}
		increment := units.DefaultIncrement(unit)
		if e.WeeklyIncrementKg != nil {
			increment = *e.WeeklyIncrementKg
		}
		t.Exercises = append(t.Exercises, models.ExerciseSpec{
			ID:                exID,
			Name:              e.Name,
			SetsCount:         e.SetsCount,
			RepsTarget:        e.RepsTarget,
			RestSeconds:       e.RestSeconds,
			StartWeightKg:     e.StartWeightKg,
			WeeklyIncrementKg: increment,
			SortOrder:         e.SortOrder,
		})
	}
	return t
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.db.ListTemplates(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if templates == nil {
		templates = []models.WorkoutTemplate{}
	}
	writeJSON(w, http.StatusOK, templates)
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	t := req.toModel(uuid.New(), time.Now(), 0, s.unit)
	if err := s.db.CreateTemplate(r.Context(), t); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	t, err := s.db.GetTemplate(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	t := req.toModel(id, time.Time{}, 0, s.unit)
	changed, err := s.db.UpdateTemplate(r.Context(), t)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !changed {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}

	updated, err := s.db.GetTemplate(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	deleted, err := s.db.DeleteTemplate(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdvanceWeek(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	weeks, ok, err := s.db.AdvanceWeek(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"weeksCompleted": weeks})
}

func parseID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+param)
		return uuid.Nil, false
	}
	return id, true
}
