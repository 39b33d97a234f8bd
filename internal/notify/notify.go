// Package notify delivers rest-timer notifications through an ntfy topic.
// Delivery is best-effort by contract: a failed or missed notification is
// never surfaced to the user.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/claude/liftlog/internal/units"
)

// Ntfy schedules notifications by arming an in-process timer that posts to an
// ntfy topic when the rest period ends. Cancelling disarms the timer, so a
// cancelled rest period never reaches the phone.
type Ntfy struct {
	client *http.Client
	url    string
	topic  string
	unit   units.Unit
	log    *slog.Logger

	mu     sync.Mutex
	nextID int64
	timers map[int64]*time.Timer
}

// NewNtfy creates a notifier posting to url/topic (e.g. https://ntfy.sh/my-gym).
// Weights in the message body are rendered in the given display unit.
func NewNtfy(url, topic string, unit units.Unit, log *slog.Logger) *Ntfy {
	return &Ntfy{
		client: &http.Client{Timeout: 10 * time.Second},
		url:    strings.TrimRight(url, "/"),
		topic:  topic,
		unit:   unit,
		log:    log,
		timers: make(map[int64]*time.Timer),
	}
}

// Schedule arms a notification for delay from now. The returned handle can be
// passed to Cancel until the timer fires.
func (n *Ntfy) Schedule(ctx context.Context, delay time.Duration, exerciseName string, weightKg float64) (int64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextID++
	id := n.nextID
	n.timers[id] = time.AfterFunc(delay, func() {
		n.mu.Lock()
		delete(n.timers, id)
		n.mu.Unlock()
		n.post(exerciseName, weightKg)
	})
	return id, nil
}

// Cancel disarms a scheduled notification. Cancelling a handle that already
// fired or was cancelled is a no-op.
func (n *Ntfy) Cancel(ctx context.Context, handle int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if t, ok := n.timers[handle]; ok {
		t.Stop()
		delete(n.timers, handle)
	}
	return nil
}

func (n *Ntfy) post(exerciseName string, weightKg float64) {
	body := fmt.Sprintf("Rest over: time for your next set of %s at %s",
		exerciseName, units.Format(weightKg, n.unit))
	req, err := http.NewRequest(http.MethodPost, n.url+"/"+n.topic, strings.NewReader(body))
	if err != nil {
		n.log.Debug("building ntfy request failed", "error", err)
		return
	}
	req.Header.Set("Title", "Rest timer done")
	req.Header.Set("Tags", "stopwatch")

	resp, err := n.client.Do(req)
	if err != nil {
		n.log.Debug("ntfy post failed", "error", err)
		return
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		n.log.Debug("ntfy post rejected", "status", resp.StatusCode)
	}
}

// Noop satisfies the notifier contract when notifications are disabled.
type Noop struct{}

func (Noop) Schedule(ctx context.Context, delay time.Duration, exerciseName string, weightKg float64) (int64, error) {
	return 0, nil
}

func (Noop) Cancel(ctx context.Context, handle int64) error { return nil }
