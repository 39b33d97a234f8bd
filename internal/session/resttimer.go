package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// Rest durations are clamped to keep a mistyped template value from arming a
// zero-second or hour-long timer.
const (
	MinRestSeconds = 5
	MaxRestSeconds = 600
)

// Notifier schedules a best-effort "rest over" notification carrying the
// exercise and the working weight in kilograms. Schedule may be slow and may
// fail; failure means no notification, never a broken timer.
type Notifier interface {
	Schedule(ctx context.Context, delay time.Duration, exerciseName string, weightKg float64) (int64, error)
	Cancel(ctx context.Context, handle int64) error
}

// RestTimer is the live countdown for one set. It is derived state: remaining
// time is recomputed from the wall clock, never counted down, so it stays
// correct across process suspensions. It is deliberately not persisted; a
// restored session always comes back with no timer running.
type RestTimer struct {
	SetID        uuid.UUID     `json:"setId"`
	ExerciseName string        `json:"exerciseName"`
	StartedAt    time.Time     `json:"startedAt"`
	EndsAt       time.Time     `json:"endsAt"`
	Duration     time.Duration `json:"durationMs"`
}

// Remaining is the time left at the given instant, floored at zero.
func (t RestTimer) Remaining(now time.Time) time.Duration {
	r := t.EndsAt.Sub(now)
	if r < 0 {
		return 0
	}
	return r
}

// RestTimerController owns at most one rest timer and the notification
// scheduled for it. Schedule calls resolve asynchronously and can race a
// newer Start or a Clear; every start/clear bumps a monotonic token, and an
// async result is only adopted when the token it captured is still current.
// A stale schedule's notification is cancelled the moment it resolves, so at
// most one scheduled notification is ever live.
type RestTimerController struct {
	mu       sync.Mutex
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time

	token  uint64
	timer  *RestTimer
	handle *int64
}

// NewRestTimerController wires a controller to a notification capability.
func NewRestTimerController(notifier Notifier, log *slog.Logger) *RestTimerController {
	return &RestTimerController{notifier: notifier, log: log, now: time.Now}
}

// Start arms the countdown for a just-completed set, replacing any running
// timer, and kicks off the async notification schedule for it.
func (c *RestTimerController) Start(ctx context.Context, set models.ActiveSet) RestTimer {
	rest := set.RestSeconds
	if rest < MinRestSeconds {
		rest = MinRestSeconds
	}
	if rest > MaxRestSeconds {
		rest = MaxRestSeconds
	}
	dur := time.Duration(rest) * time.Second

	c.mu.Lock()
	c.token++
	tok := c.token
	c.dropHandleLocked(ctx)
	now := c.now()
	timer := RestTimer{
		SetID:        set.ID,
		ExerciseName: set.ExerciseName,
		StartedAt:    now,
		EndsAt:       now.Add(dur),
		Duration:     dur,
	}
	c.timer = &timer
	c.mu.Unlock()

	go c.schedule(context.WithoutCancel(ctx), tok, dur, set.ExerciseName, set.ActualWeightKg)
	return timer
}

func (c *RestTimerController) schedule(ctx context.Context, tok uint64, dur time.Duration, exerciseName string, weightKg float64) {
	h, err := c.notifier.Schedule(ctx, dur, exerciseName, weightKg)
	if err != nil {
		c.log.Debug("rest notification schedule failed", "error", err)
		return
	}

	c.mu.Lock()
	if c.token != tok {
		// A newer start or a clear won the race; this notification is stale.
		c.mu.Unlock()
		c.cancel(ctx, h)
		return
	}
	c.handle = &h
	c.mu.Unlock()
}

// Active returns the running timer, or nil. A timer that has reached zero is
// still reported until the next Start or Clear; Remaining is what says "done".
func (c *RestTimerController) Active() *RestTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer == nil {
		return nil
	}
	t := *c.timer
	return &t
}

// CancelForSet clears the timer only if it is running for the given set. Used
// when a tap decrements the set the timer was started for.
func (c *RestTimerController) CancelForSet(ctx context.Context, setID uuid.UUID) {
	c.mu.Lock()
	if c.timer == nil || c.timer.SetID != setID {
		c.mu.Unlock()
		return
	}
	c.token++
	c.timer = nil
	c.dropHandleLocked(ctx)
	c.mu.Unlock()
}

// Clear stops any timer and cancels its pending notification, best-effort.
func (c *RestTimerController) Clear(ctx context.Context) {
	c.mu.Lock()
	c.token++
	c.timer = nil
	c.dropHandleLocked(ctx)
	c.mu.Unlock()
}

// dropHandleLocked detaches the live notification handle, if any, and cancels
// it off the lock. Callers hold c.mu.
func (c *RestTimerController) dropHandleLocked(ctx context.Context) {
	if c.handle == nil {
		return
	}
	h := *c.handle
	c.handle = nil
	go c.cancel(context.WithoutCancel(ctx), h)
}

func (c *RestTimerController) cancel(ctx context.Context, h int64) {
	if err := c.notifier.Cancel(ctx, h); err != nil {
		// Best-effort: a notification we failed to cancel is noise, not a bug
		// the user can act on.
		c.log.Debug("rest notification cancel failed", "handle", h, "error", err)
	}
}
