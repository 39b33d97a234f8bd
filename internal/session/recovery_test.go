package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// persistFixture stores a session blob directly, bypassing the manager, the
// way a previous process run would have left it.
func persistFixture(t *testing.T, store *fakeStore, s *models.ActiveSession) {
	t.Helper()
	blob, err := encodeSession(s)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	store.blob = blob
}

// TestRestoreForcePausesRunningSession verifies that a blob persisted while
// running comes back paused at the restore instant, flagged as restored, and
// is re-persisted in that shape.
func TestRestoreForcePausesRunningSession(t *testing.T) {
	m, store, _, tpl, clock := newTestManager(t)

	s := &models.ActiveSession{
		WorkoutID:   tpl.ID,
		WorkoutName: tpl.Name,
		StartedAt:   clock.Add(-30 * time.Minute),
		Sets:        BuildSets(tpl),
	}
	persistFixture(t, store, s)

	got := m.Restore(context.Background())
	if got == nil {
		t.Fatal("restore returned nil for a valid blob")
	}
	if !got.IsPaused {
		t.Error("restored session is not paused")
	}
	if got.PauseStartedAt == nil || !got.PauseStartedAt.Equal(*clock) {
		t.Errorf("pauseStartedAt = %v, want the restore instant %v", got.PauseStartedAt, *clock)
	}
	if !got.RestoredFromAppClose {
		t.Error("restoredFromAppClose not set")
	}

	// The force-paused shape must itself be on disk.
	reloaded := decodeSession(store.blob)
	if reloaded == nil || !reloaded.IsPaused || !reloaded.RestoredFromAppClose {
		t.Error("force-paused state was not re-persisted")
	}

	// Elapsed is frozen until the user resumes.
	*clock = clock.Add(time.Hour)
	elapsed, err := m.Elapsed(*clock)
	if err != nil {
		t.Fatalf("elapsed: %v", err)
	}
	if elapsed != 30*time.Minute {
		t.Errorf("elapsed = %v, want frozen 30m", elapsed)
	}
}

// TestRestorePausedSessionUnchanged verifies that an already-paused blob is
// adopted as-is, without the restored flag.
func TestRestorePausedSessionUnchanged(t *testing.T) {
	m, store, _, tpl, clock := newTestManager(t)

	pausedAt := clock.Add(-10 * time.Minute)
	s := &models.ActiveSession{
		WorkoutID:      tpl.ID,
		WorkoutName:    tpl.Name,
		StartedAt:      clock.Add(-30 * time.Minute),
		IsPaused:       true,
		PauseStartedAt: &pausedAt,
		Sets:           BuildSets(tpl),
	}
	persistFixture(t, store, s)
	saves := store.saves

	got := m.Restore(context.Background())
	if got == nil {
		t.Fatal("restore returned nil")
	}
	if got.RestoredFromAppClose {
		t.Error("paused blob gained the restored flag")
	}
	if !got.PauseStartedAt.Equal(pausedAt) {
		t.Errorf("pauseStartedAt = %v, want the original %v", got.PauseStartedAt, pausedAt)
	}
	if store.saves != saves {
		t.Error("already-paused blob was needlessly re-persisted")
	}
}

// TestRestoreResumeClearsFlag verifies that the first resume after recovery
// drops restoredFromAppClose.
func TestRestoreResumeClearsFlag(t *testing.T) {
	m, store, _, tpl, clock := newTestManager(t)
	s := &models.ActiveSession{
		WorkoutID:   tpl.ID,
		WorkoutName: tpl.Name,
		StartedAt:   clock.Add(-5 * time.Minute),
		Sets:        BuildSets(tpl),
	}
	persistFixture(t, store, s)

	if got := m.Restore(context.Background()); got == nil || !got.RestoredFromAppClose {
		t.Fatal("restore did not flag the session")
	}
	if err := m.Resume(context.Background()); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if m.Current().RestoredFromAppClose {
		t.Error("resume left restoredFromAppClose set")
	}
}

// TestRestoreNoBlob verifies the empty-store case.
func TestRestoreNoBlob(t *testing.T) {
	m, _, _, _, _ := newTestManager(t)
	if got := m.Restore(context.Background()); got != nil {
		t.Errorf("restore = %+v, want nil", got)
	}
	if m.Current() != nil {
		t.Error("restore conjured a session from an empty store")
	}
}

// TestRestoreCorruptBlob verifies that garbage on disk is dropped and the
// store cleared, with startup unaffected.
func TestRestoreCorruptBlob(t *testing.T) {
	m, store, _, _, _ := newTestManager(t)
	store.blob = []byte("{truncated")

	if got := m.Restore(context.Background()); got != nil {
		t.Errorf("restore = %+v, want nil", got)
	}
	if store.blob != nil {
		t.Error("corrupt blob was not cleared")
	}
	if m.Current() != nil {
		t.Error("corrupt blob produced an active session")
	}
}

// TestRestoreDeletedTemplate verifies that a blob pointing at a template that
// no longer exists is dropped and cleared.
func TestRestoreDeletedTemplate(t *testing.T) {
	m, store, _, _, clock := newTestManager(t)
	s := &models.ActiveSession{
		WorkoutID:   uuid.New(),
		WorkoutName: "Deleted Workout",
		StartedAt:   clock.Add(-time.Minute),
	}
	persistFixture(t, store, s)

	if got := m.Restore(context.Background()); got != nil {
		t.Errorf("restore = %+v, want nil", got)
	}
	if store.blob != nil {
		t.Error("orphaned blob was not cleared")
	}
}

// TestRestoreAlreadyFinished verifies that a blob left behind by a failed
// post-finish clear is dropped on the next start instead of resurrecting a
// workout that history already holds, which would allow finishing it twice.
func TestRestoreAlreadyFinished(t *testing.T) {
	m, store, history, tpl, clock := newTestManager(t)
	ctx := context.Background()

	if _, err := m.Start(ctx, tpl.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	*clock = clock.Add(45 * time.Minute)
	store.clearErr = errors.New("database locked")
	if _, err := m.Finish(ctx); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if store.blob == nil {
		t.Fatal("test premise broken: blob should have survived the failed clear")
	}

	// Next process run: the stale blob must not come back as a session.
	store.clearErr = nil
	m2 := NewManager(store, m.templates, history, testLogger())
	m2.now = func() time.Time { return *clock }
	if got := m2.Restore(ctx); got != nil {
		t.Errorf("restore = %+v, want nil for a finished session", got)
	}
	if m2.Current() != nil {
		t.Error("finished session resurrected")
	}
	if store.blob != nil {
		t.Error("stale blob was not cleared")
	}
	if len(history.recs) != 1 {
		t.Errorf("history has %d records, want the original 1", len(history.recs))
	}
}

// TestRestoreOlderHistoryDoesNotBlock verifies that history from a previous
// run of the same workout does not suppress recovery of a newer session.
func TestRestoreOlderHistoryDoesNotBlock(t *testing.T) {
	m, store, history, tpl, clock := newTestManager(t)

	history.recs = append(history.recs, models.WorkoutSession{
		ID:          uuid.New(),
		WorkoutID:   tpl.ID,
		PerformedAt: clock.Add(-48 * time.Hour),
	})
	s := &models.ActiveSession{
		WorkoutID:   tpl.ID,
		WorkoutName: tpl.Name,
		StartedAt:   clock.Add(-10 * time.Minute),
		Sets:        BuildSets(tpl),
	}
	persistFixture(t, store, s)

	if got := m.Restore(context.Background()); got == nil {
		t.Fatal("old history record suppressed recovery of a live session")
	}
}

// TestRestoreRoundTrip verifies that set progress survives a restart.
func TestRestoreRoundTrip(t *testing.T) {
	m, store, _, tpl, clock := newTestManager(t)
	ctx := context.Background()

	s, err := m.Start(ctx, tpl.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := m.TapSet(ctx, s.Sets[0].ID); err != nil {
		t.Fatalf("tap: %v", err)
	}

	// Second process run against the same store.
	m2 := NewManager(store, m.templates, m.history, testLogger())
	m2.now = func() time.Time { return *clock }

	got := m2.Restore(ctx)
	if got == nil {
		t.Fatal("restore returned nil")
	}
	if got.Sets[0].ActualReps != s.Sets[0].TargetReps {
		t.Errorf("restored reps = %d, want %d", got.Sets[0].ActualReps, s.Sets[0].TargetReps)
	}
	if !got.StartedAt.Equal(s.StartedAt) {
		t.Errorf("restored startedAt = %v, want %v", got.StartedAt, s.StartedAt)
	}
}
