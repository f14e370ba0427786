package proctor

import (
	"time"

	"github.com/interview-master/backend/internal/model"
)

// Monitor composes the face watcher, focus watcher and exam clock and
// forwards their terminal escalations into one termination path. The
// exactly-once guarantee itself lives in the Controller's phase gate:
// watchers run on independent schedules and may fire within the same
// tick, so every escalation funnels through the same compare-and-set.
type Monitor struct {
	face  *faceWatcher
	focus *focusWatcher
	clock *examClock
}

// newMonitor wires the three watchers. terminate is the controller's
// finalize path; alerts and clears go straight to the event sink.
func newMonitor(
	sched Scheduler,
	source FrameSource,
	timeLimit time.Duration,
	sink EventSink,
	terminate func(model.TerminationReason),
) *Monitor {
	return &Monitor{
		face:  newFaceWatcher(sched, source, sink.IntegrityAlert, sink.IntegrityAlertCleared, terminate),
		focus: newFocusWatcher(sched, sink.IntegrityAlert, sink.IntegrityAlertCleared, terminate),
		clock: newExamClock(sched, timeLimit, terminate),
	}
}

// Start begins sampling frames and counting down the exam clock.
func (m *Monitor) Start() {
	m.face.Start()
	m.clock.Start()
}

// Observe forwards one visibility report to the focus watcher.
func (m *Monitor) Observe(hidden bool) {
	m.focus.Observe(hidden)
}

// Remaining exposes the exam clock for display.
func (m *Monitor) Remaining() int {
	return m.clock.Remaining()
}

// Stop synchronously cancels every outstanding repeating and single-shot
// timer across all three watchers. Idempotent; any watcher callback
// already in flight has its emission swallowed by the controller's gate.
func (m *Monitor) Stop() {
	m.face.Stop()
	m.focus.Stop()
	m.clock.Stop()
}
