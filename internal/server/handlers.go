package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/claude/liftlog/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeSessionError maps state-machine errors onto HTTP statuses: a conflict
// with the one-active-session invariant is 409, bad input 400, a missing
// session 404, anything else (persistence) 500.
func (s *Server) writeSessionError(w http.ResponseWriter, err error) {
	var verr *session.ValidationError
	switch {
	case errors.Is(err, session.ErrSessionConflict):
		writeError(w, http.StatusConflict, "another session is active; finish or discard it first")
	case errors.Is(err, session.ErrNoActiveSession):
		writeError(w, http.StatusNotFound, "no active session")
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	default:
		s.log.Error("session transition failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 90 days of history
		end = time.Now()
		start = end.AddDate(0, 0, -90)
		return
	}

	start, err = parseFlexTime(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}
