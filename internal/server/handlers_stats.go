package server

import (
	"net/http"

	"github.com/claude/liftlog/internal/storage"
)

func (s *Server) handleExerciseTrend(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "name parameter required")
		return
	}
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	points, err := s.db.ExerciseTrend(r.Context(), name, start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if points == nil {
		points = []storage.TrendPoint{}
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleWeeklyVolume(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	weeks, err := s.db.WeeklyVolumeSeries(r.Context(), start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if weeks == nil {
		weeks = []storage.WeeklyVolume{}
	}
	writeJSON(w, http.StatusOK, weeks)
}

func (s *Server) handleExerciseRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.db.ExerciseRecords(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []storage.ExerciseRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}
