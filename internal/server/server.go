package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/liftlog/internal/session"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/units"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       *storage.DB
	sessions *session.Manager
	rest     *session.RestTimerController
	unit     units.Unit
	log      *slog.Logger
	router   chi.Router
}

// New creates a new Server with all routes configured. The display unit
// selects the default weekly increment for exercises that don't configure one.
func New(db *storage.DB, sessions *session.Manager, rest *session.RestTimerController, unit units.Unit, log *slog.Logger) *Server {
	s := &Server{
		db:       db,
		sessions: sessions,
		rest:     rest,
		unit:     unit,
		log:      log,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Workout templates
	s.router.Route("/api/v1/templates", func(r chi.Router) {
		r.Get("/", s.handleListTemplates)
		r.Post("/", s.handleCreateTemplate)
		r.Get("/{id}", s.handleGetTemplate)
		r.Put("/{id}", s.handleUpdateTemplate)
		r.Delete("/{id}", s.handleDeleteTemplate)
		r.Post("/{id}/advance-week", s.handleAdvanceWeek)
	})

	// The one active session
	s.router.Route("/api/v1/session", func(r chi.Router) {
		r.Get("/", s.handleSessionState)
		r.Post("/start", s.handleStartSession)
		r.Post("/pause", s.handlePauseSession)
		r.Post("/resume", s.handleResumeSession)
		r.Post("/finish", s.handleFinishSession)
		r.Post("/discard", s.handleDiscardSession)
		r.Put("/bodyweight", s.handleSetBodyweight)
		r.Post("/sets/{setId}/tap", s.handleTapSet)
		r.Put("/sets/{setId}", s.handleSetCustomValues)
	})

	// History and analytics
	s.router.Route("/api/v1/history", func(r chi.Router) {
		r.Get("/", s.handleQueryHistory)
		r.Post("/", s.handleCreateHistory)
		r.Get("/{id}", s.handleGetHistory)
		r.Put("/{id}", s.handleUpdateHistory)
		r.Delete("/{id}", s.handleDeleteHistory)
	})
	s.router.Get("/api/v1/stats/exercise", s.handleExerciseTrend)
	s.router.Get("/api/v1/stats/volume", s.handleWeeklyVolume)
	s.router.Get("/api/v1/stats/records", s.handleExerciseRecords)
}
