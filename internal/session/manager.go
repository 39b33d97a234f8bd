package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// Store persists the active-session blob as a singleton row. Load returns
// (nil, nil) when no blob is stored.
type Store interface {
	SaveActiveSession(ctx context.Context, blob []byte) error
	LoadActiveSession(ctx context.Context) ([]byte, error)
	ClearActiveSession(ctx context.Context) error
}

// TemplateSource reads workout templates. A (nil, nil) return means the
// template does not exist.
type TemplateSource interface {
	GetTemplate(ctx context.Context, id uuid.UUID) (*models.WorkoutTemplate, error)
}

// History records finished sessions. The write is transactional: the session
// row and all its sets land together or not at all. The existence check lets
// recovery recognize a persisted blob whose session was already finished.
type History interface {
	CreateWorkoutSession(ctx context.Context, rec models.WorkoutSession) error
	HasWorkoutSessionSince(ctx context.Context, workoutID uuid.UUID, since time.Time) (bool, error)
}

// Manager owns the single active workout session and every transition on it.
// All mutations follow the same shape: clone the current state, apply the
// transition to the clone, persist the clone, and only then commit it as the
// in-memory truth. The persisted blob is the sole crash-recovery source, so a
// failed save leaves both copies on the previous state.
type Manager struct {
	mu        sync.Mutex
	store     Store
	templates TemplateSource
	history   History
	log       *slog.Logger
	now       func() time.Time

	cur *models.ActiveSession
}

// NewManager creates a Manager with no active session. Call Restore to pick
// up a session persisted by a previous run.
func NewManager(store Store, templates TemplateSource, history History, log *slog.Logger) *Manager {
	return &Manager{
		store:     store,
		templates: templates,
		history:   history,
		log:       log,
		now:       time.Now,
	}
}

// Current returns a copy of the active session, or nil when none exists.
func (m *Manager) Current() *models.ActiveSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur == nil {
		return nil
	}
	return m.cur.Clone()
}

// Elapsed reports how long the session has been running at the given instant,
// excluding paused time. Never negative, even under clock skew.
func Elapsed(s *models.ActiveSession, now time.Time) time.Duration {
	elapsed := now.Sub(s.StartedAt) - time.Duration(s.TotalPausedMs)*time.Millisecond
	if s.IsPaused && s.PauseStartedAt != nil {
		elapsed -= now.Sub(*s.PauseStartedAt)
	}
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// Elapsed reports the active session's running time at the given instant.
func (m *Manager) Elapsed(now time.Time) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur == nil {
		return 0, ErrNoActiveSession
	}
	return Elapsed(m.cur, now), nil
}

// Start begins a session for the given workout. Starting the workout that is
// already active is a no-op; starting while a different workout's session is
// active fails with ErrSessionConflict and leaves it untouched.
func (m *Manager) Start(ctx context.Context, workoutID uuid.UUID) (*models.ActiveSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cur != nil {
		if m.cur.WorkoutID == workoutID {
			return m.cur.Clone(), nil
		}
		return nil, ErrSessionConflict
	}

	tpl, err := m.templates.GetTemplate(ctx, workoutID)
	if err != nil {
		return nil, fmt.Errorf("loading template: %w", err)
	}
	if tpl == nil {
		return nil, &ValidationError{Field: "workoutId", Msg: "workout not found"}
	}

	next := &models.ActiveSession{
		WorkoutID:   tpl.ID,
		WorkoutName: tpl.Name,
		StartedAt:   m.now(),
		Sets:        BuildSets(*tpl),
	}
	if err := m.persist(ctx, next); err != nil {
		return nil, err
	}
	m.cur = next
	m.log.Info("session started", "workout", tpl.Name, "sets", len(next.Sets))
	return next.Clone(), nil
}

// Pause stops the elapsed clock. No-op when already paused.
func (m *Manager) Pause(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur == nil {
		return ErrNoActiveSession
	}
	if m.cur.IsPaused {
		return nil
	}
	next := m.cur.Clone()
	now := m.now()
	next.IsPaused = true
	next.PauseStartedAt = &now
	next.RestoredFromAppClose = false
	return m.commit(ctx, next)
}

// Resume restarts the elapsed clock, folding the pause interval into
// totalPausedMs. No-op when not paused.
func (m *Manager) Resume(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur == nil {
		return ErrNoActiveSession
	}
	if !m.cur.IsPaused {
		return nil
	}
	next := m.cur.Clone()
	paused := m.now().Sub(*next.PauseStartedAt)
	if paused > 0 {
		next.TotalPausedMs += paused.Milliseconds()
	}
	next.PauseStartedAt = nil
	next.IsPaused = false
	next.RestoredFromAppClose = false
	return m.commit(ctx, next)
}

// TapResult reports what a tap did to a set. Completed is true when the tap
// marked the full target rep count, which is the caller's cue to start a rest
// timer; a decrement on the set whose timer is running should cancel it.
type TapResult struct {
	Set       models.ActiveSet
	Completed bool
}

// TapSet applies the single overloaded set interaction: an untouched set is
// marked fully complete at its target reps; any further tap decrements by
// one, flooring at zero. A fully decremented set is indistinguishable from a
// never-tapped one, so the next tap completes it again.
func (m *Manager) TapSet(ctx context.Context, setID uuid.UUID) (TapResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur == nil {
		return TapResult{}, ErrNoActiveSession
	}
	next := m.cur.Clone()
	i := findSet(next.Sets, setID)
	if i < 0 {
		return TapResult{}, &ValidationError{Field: "setId", Msg: "no such set in the active session"}
	}

	set := &next.Sets[i]
	completed := false
	if set.ActualReps == 0 {
		set.ActualReps = set.TargetReps
		completed = true
	} else {
		set.ActualReps--
	}

	if err := m.commit(ctx, next); err != nil {
		return TapResult{}, err
	}
	return TapResult{Set: *set, Completed: completed}, nil
}

// SetCustomValues overwrites a set's actual reps and/or weight directly,
// bypassing the tap cycle. Reps must be non-negative; weight is unconstrained
// in sign (assisted exercises stay negative).
func (m *Manager) SetCustomValues(ctx context.Context, setID uuid.UUID, reps *int, weightKg *float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur == nil {
		return ErrNoActiveSession
	}
	if reps != nil && *reps < 0 {
		return &ValidationError{Field: "reps", Msg: "must be zero or greater"}
	}
	next := m.cur.Clone()
	i := findSet(next.Sets, setID)
	if i < 0 {
		return &ValidationError{Field: "setId", Msg: "no such set in the active session"}
	}
	if reps != nil {
		next.Sets[i].ActualReps = *reps
	}
	if weightKg != nil {
		next.Sets[i].ActualWeightKg = *weightKg
	}
	return m.commit(ctx, next)
}

// SetBodyweight records the session bodyweight. Nil clears it; numeric values
// are clamped to zero or greater.
func (m *Manager) SetBodyweight(ctx context.Context, kg *float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur == nil {
		return ErrNoActiveSession
	}
	next := m.cur.Clone()
	if kg == nil {
		next.BodyweightKg = nil
	} else {
		v := *kg
		if v < 0 {
			v = 0
		}
		next.BodyweightKg = &v
	}
	return m.commit(ctx, next)
}

// Finish converts the active session into an immutable history record using
// the actual reps and weights, writes it atomically and clears the session.
// If the history write fails the session stays fully intact: there is no
// partial finish.
func (m *Manager) Finish(ctx context.Context) (*models.WorkoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur == nil {
		return nil, ErrNoActiveSession
	}

	rec := models.WorkoutSession{
		ID:           uuid.New(),
		WorkoutID:    m.cur.WorkoutID,
		PerformedAt:  m.now(),
		BodyweightKg: m.cur.BodyweightKg,
	}
	for _, set := range m.cur.Sets {
		rec.Sets = append(rec.Sets, models.SessionSet{
			WorkoutExerciseID: set.WorkoutExerciseID,
			ExerciseName:      set.ExerciseName,
			SetNumber:         set.SetNumber,
			Reps:              set.ActualReps,
			WeightKg:          set.ActualWeightKg,
		})
	}

	if err := m.history.CreateWorkoutSession(ctx, rec); err != nil {
		return nil, fmt.Errorf("writing workout history: %w", err)
	}
	if err := m.store.ClearActiveSession(ctx); err != nil {
		// History is written; a stale blob will be superseded on restart by
		// the deleted-template check or the user finishing again.
		m.log.Warn("clearing active session after finish failed", "error", err)
	}
	m.cur = nil
	m.log.Info("session finished", "workout", rec.WorkoutID, "sets", len(rec.Sets))
	return &rec, nil
}

// Discard drops the active session without writing history. Irreversible.
func (m *Manager) Discard(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur == nil {
		return ErrNoActiveSession
	}
	if err := m.store.ClearActiveSession(ctx); err != nil {
		return fmt.Errorf("clearing active session: %w", err)
	}
	m.cur = nil
	m.log.Info("session discarded")
	return nil
}

// commit persists the candidate state and, only on success, swaps it in as
// the in-memory truth. Callers hold m.mu.
func (m *Manager) commit(ctx context.Context, next *models.ActiveSession) error {
	if err := m.persist(ctx, next); err != nil {
		return err
	}
	m.cur = next
	return nil
}

func (m *Manager) persist(ctx context.Context, s *models.ActiveSession) error {
	blob, err := encodeSession(s)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := m.store.SaveActiveSession(ctx, blob); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func findSet(sets []models.ActiveSet, id uuid.UUID) int {
	for i := range sets {
		if sets[i].ID == id {
			return i
		}
	}
	return -1
}
