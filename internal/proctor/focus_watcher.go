package proctor

import (
	"sync"
	"time"

	"github.com/interview-master/backend/internal/model"
)

// focusGrace is how long the page may stay hidden before the loss
// becomes terminal.
const focusGrace = 3 * time.Second

// focusWatcher folds polled and event-driven visibility reports into one
// logical hidden/visible stream and escalates the first sustained loss.
// Repeated reports of the same state are deduplicated: only transitions
// have an effect.
type focusWatcher struct {
	sched Scheduler

	mu          sync.Mutex
	lost        bool
	stopped     bool
	escalated   bool
	cancelGrace CancelFunc

	onAlert    func(kind AlertKind, detail string)
	onClear    func(kind AlertKind)
	onTerminal func(reason model.TerminationReason)
}

func newFocusWatcher(
	sched Scheduler,
	onAlert func(AlertKind, string),
	onClear func(AlertKind),
	onTerminal func(model.TerminationReason),
) *focusWatcher {
	return &focusWatcher{
		sched:      sched,
		onAlert:    onAlert,
		onClear:    onClear,
		onTerminal: onTerminal,
	}
}

// Observe ingests one visibility report, from either the poll loop or a
// visibility-change event.
func (w *focusWatcher) Observe(hidden bool) {
	var emit func()

	w.mu.Lock()
	if w.stopped || w.escalated {
		w.mu.Unlock()
		return
	}

	if hidden && !w.lost {
		w.lost = true
		w.cancelGrace = w.sched.Once(focusGrace, w.graceExpired)
		emit = func() {
			w.onAlert(AlertFocusLost,
				"Window focus lost. Return to the interview tab or the session will be submitted.")
		}
	} else if !hidden && w.lost {
		w.lost = false
		cancel := w.cancelGrace
		w.cancelGrace = nil
		emit = func() {
			if cancel != nil {
				cancel()
			}
			w.onClear(AlertFocusLost)
		}
	}
	w.mu.Unlock()

	if emit != nil {
		emit()
	}
}

// graceExpired fires once the single-shot grace timer elapses. A return
// to visibility in the meantime clears lost and cancels the escalation.
func (w *focusWatcher) graceExpired() {
	w.mu.Lock()
	if w.stopped || w.escalated || !w.lost {
		w.mu.Unlock()
		return
	}
	w.escalated = true
	w.mu.Unlock()

	w.onTerminal(model.ReasonFocusLost)
}

// Stop cancels any pending grace timer and ignores further reports.
// Idempotent.
func (w *focusWatcher) Stop() {
	w.mu.Lock()
	w.stopped = true
	cancel := w.cancelGrace
	w.cancelGrace = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}
