package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// fakeNotifier records schedule and cancel calls. When gate is set, Schedule
// blocks on it, letting tests hold async schedules in flight.
type fakeNotifier struct {
	mu        sync.Mutex
	next      int64
	byName    map[string]int64
	gate      chan struct{}
	scheduled chan int64
	cancelled chan int64
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		byName:    make(map[string]int64),
		scheduled: make(chan int64, 8),
		cancelled: make(chan int64, 8),
	}
}

func (f *fakeNotifier) Schedule(_ context.Context, _ time.Duration, exerciseName string, _ float64) (int64, error) {
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	f.next++
	h := f.next
	f.byName[exerciseName] = h
	f.mu.Unlock()

	f.scheduled <- h
	return h, nil
}

func (f *fakeNotifier) Cancel(_ context.Context, handle int64) error {
	f.cancelled <- handle
	return nil
}

func (f *fakeNotifier) handleFor(name string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byName[name]
}

func waitHandle(t *testing.T, ch chan int64) int64 {
	t.Helper()
	select {
	case h := <-ch:
		return h
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notifier call")
		return 0
	}
}

func restSet(name string, restSeconds int) models.ActiveSet {
	return models.ActiveSet{
		ID:                uuid.New(),
		WorkoutExerciseID: uuid.New(),
		ExerciseName:      name,
		SetNumber:         1,
		RestSeconds:       restSeconds,
	}
}

// TestRestTimerClamp verifies that out-of-range rest durations are clamped.
func TestRestTimerClamp(t *testing.T) {
	n := newFakeNotifier()
	c := NewRestTimerController(n, testLogger())
	ctx := context.Background()

	timer := c.Start(ctx, restSet("Squat", 0))
	if timer.Duration != MinRestSeconds*time.Second {
		t.Errorf("zero rest clamped to %v, want %v", timer.Duration, MinRestSeconds*time.Second)
	}
	waitHandle(t, n.scheduled)

	timer = c.Start(ctx, restSet("Squat", 100000))
	if timer.Duration != MaxRestSeconds*time.Second {
		t.Errorf("huge rest clamped to %v, want %v", timer.Duration, MaxRestSeconds*time.Second)
	}
	waitHandle(t, n.scheduled)
}

// TestRestTimerRemaining verifies wall-clock derivation with a zero floor.
func TestRestTimerRemaining(t *testing.T) {
	now := time.Now()
	timer := RestTimer{StartedAt: now, EndsAt: now.Add(90 * time.Second)}

	if got := timer.Remaining(now.Add(30 * time.Second)); got != 60*time.Second {
		t.Errorf("remaining = %v, want 60s", got)
	}
	if got := timer.Remaining(now.Add(5 * time.Minute)); got != 0 {
		t.Errorf("remaining past the end = %v, want 0", got)
	}
}

// TestRestTimerScheduleRace verifies the token guard: starting timer B while
// timer A's schedule call is still in flight leaves exactly B's notification
// live, and A's late-resolving handle is cancelled.
func TestRestTimerScheduleRace(t *testing.T) {
	n := newFakeNotifier()
	c := NewRestTimerController(n, testLogger())
	ctx := context.Background()

	gate := make(chan struct{})
	n.gate = gate

	setB := restSet("Bench Press", 120)
	c.Start(ctx, restSet("Squat", 180))
	c.Start(ctx, setB)

	// Both schedule calls are now blocked; release them in whatever order the
	// runtime picks.
	close(gate)
	waitHandle(t, n.scheduled)
	waitHandle(t, n.scheduled)

	// The stale schedule (Squat's) must be cancelled as it resolves.
	cancelled := waitHandle(t, n.cancelled)
	if want := n.handleFor("Squat"); cancelled != want {
		t.Errorf("cancelled handle %d, want Squat's %d", cancelled, want)
	}

	c.mu.Lock()
	handle := c.handle
	timer := c.timer
	c.mu.Unlock()
	if handle == nil || *handle != n.handleFor("Bench Press") {
		t.Errorf("adopted handle = %v, want Bench Press's %d", handle, n.handleFor("Bench Press"))
	}
	if timer == nil || timer.SetID != setB.ID {
		t.Error("live timer is not the newest set's")
	}

	select {
	case h := <-n.cancelled:
		t.Errorf("unexpected extra cancel of handle %d", h)
	case <-time.After(50 * time.Millisecond):
	}
}

// TestRestTimerReplaceCancelsPrevious verifies that a new start cancels the
// already-adopted notification of the previous timer.
func TestRestTimerReplaceCancelsPrevious(t *testing.T) {
	n := newFakeNotifier()
	c := NewRestTimerController(n, testLogger())
	ctx := context.Background()

	c.Start(ctx, restSet("Squat", 180))
	first := waitHandle(t, n.scheduled)

	c.Start(ctx, restSet("Deadlift", 240))
	waitHandle(t, n.scheduled)

	if got := waitHandle(t, n.cancelled); got != first {
		t.Errorf("cancelled handle %d, want the first timer's %d", got, first)
	}
}

// TestRestTimerCancelForSet verifies that cancellation is scoped to the set
// the timer runs for.
func TestRestTimerCancelForSet(t *testing.T) {
	n := newFakeNotifier()
	c := NewRestTimerController(n, testLogger())
	ctx := context.Background()

	set := restSet("Squat", 180)
	c.Start(ctx, set)
	h := waitHandle(t, n.scheduled)

	// A different set's cancel is ignored.
	c.CancelForSet(ctx, uuid.New())
	if c.Active() == nil {
		t.Fatal("cancel for an unrelated set killed the timer")
	}

	c.CancelForSet(ctx, set.ID)
	if c.Active() != nil {
		t.Error("timer survived its own set's cancel")
	}
	if got := waitHandle(t, n.cancelled); got != h {
		t.Errorf("cancelled handle %d, want %d", got, h)
	}
}

// TestRestTimerClear verifies that clear drops both timer and notification.
func TestRestTimerClear(t *testing.T) {
	n := newFakeNotifier()
	c := NewRestTimerController(n, testLogger())
	ctx := context.Background()

	c.Start(ctx, restSet("Squat", 180))
	h := waitHandle(t, n.scheduled)

	c.Clear(ctx)
	if c.Active() != nil {
		t.Error("timer survived clear")
	}
	if got := waitHandle(t, n.cancelled); got != h {
		t.Errorf("cancelled handle %d, want %d", got, h)
	}
}
