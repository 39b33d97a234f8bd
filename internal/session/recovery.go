package session

import (
	"context"

	"github.com/claude/liftlog/internal/models"
)

// Restore reconciles a session persisted by a previous run. It never returns
// an error: every failure mode degrades to "no active session" so a corrupt
// blob can't wedge startup.
//
// A blob referencing a template that no longer exists is dropped and the
// store cleared. A blob that was running (not paused) when the process died
// is force-paused at the current instant and flagged restoredFromAppClose,
// then re-persisted: elapsed time must not silently advance across the gap,
// and the flag tells the user why the timer is stopped.
func (m *Manager) Restore(ctx context.Context) *models.ActiveSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	blob, err := m.store.LoadActiveSession(ctx)
	if err != nil {
		m.log.Warn("loading persisted session failed", "error", err)
		return nil
	}
	if blob == nil {
		return nil
	}

	s := decodeSession(blob)
	if s == nil {
		m.log.Warn("persisted session blob is malformed, dropping it")
		m.clearQuietly(ctx)
		return nil
	}

	tpl, err := m.templates.GetTemplate(ctx, s.WorkoutID)
	if err != nil {
		m.log.Warn("template lookup during recovery failed", "error", err)
		return nil
	}
	if tpl == nil {
		m.log.Info("persisted session references a deleted workout, dropping it", "workout", s.WorkoutID)
		m.clearQuietly(ctx)
		return nil
	}

	// A blob can outlive its session when the post-finish clear failed. If
	// history already holds a record for this workout dated after the session
	// started, the session was finished; resurrecting it would let the user
	// finish it a second time and duplicate history.
	finished, err := m.history.HasWorkoutSessionSince(ctx, s.WorkoutID, s.StartedAt)
	if err != nil {
		m.log.Warn("history lookup during recovery failed", "error", err)
	} else if finished {
		m.log.Info("persisted session was already finished, dropping it", "workout", s.WorkoutID)
		m.clearQuietly(ctx)
		return nil
	}

	if !s.IsPaused {
		now := m.now()
		s.IsPaused = true
		s.PauseStartedAt = &now
		s.RestoredFromAppClose = true
		if err := m.persist(ctx, s); err != nil {
			m.log.Warn("re-persisting recovered session failed", "error", err)
		}
	}

	m.cur = s
	m.log.Info("session restored", "workout", s.WorkoutName, "paused", s.IsPaused)
	return s.Clone()
}

func (m *Manager) clearQuietly(ctx context.Context) {
	if err := m.store.ClearActiveSession(ctx); err != nil {
		m.log.Warn("clearing stale session blob failed", "error", err)
	}
}
