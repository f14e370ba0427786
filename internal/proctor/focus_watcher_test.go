package proctor

import (
	"testing"
	"time"

	"github.com/interview-master/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFocusFixture() (*fakeScheduler, *faceRecorder, *focusWatcher) {
	sched := newFakeScheduler()
	rec := &faceRecorder{}
	w := newFocusWatcher(sched, rec.alert, rec.clear, rec.terminal)
	return sched, rec, w
}

func TestFocusWatcher_ReturnWithinGraceCancels(t *testing.T) {
	sched, rec, w := newFocusFixture()

	w.Observe(true)
	require.Equal(t, []AlertKind{AlertFocusLost}, rec.alerts)

	sched.Advance(2 * time.Second)
	w.Observe(false)
	assert.Equal(t, []AlertKind{AlertFocusLost}, rec.cleared)

	sched.Advance(10 * time.Second)
	assert.Empty(t, rec.terminals)
}

func TestFocusWatcher_SustainedLossEscalatesOnce(t *testing.T) {
	sched, rec, w := newFocusFixture()

	w.Observe(true)
	sched.Advance(3 * time.Second)
	require.Equal(t, []model.TerminationReason{model.ReasonFocusLost}, rec.terminals)

	// Further reports after escalation are ignored.
	w.Observe(false)
	w.Observe(true)
	sched.Advance(10 * time.Second)
	assert.Len(t, rec.terminals, 1)
	assert.Len(t, rec.alerts, 1)
}

func TestFocusWatcher_RepeatedHiddenReportsDeduplicated(t *testing.T) {
	sched, rec, w := newFocusFixture()

	// The poll loop and the visibility event both report the same loss.
	w.Observe(true)
	sched.Advance(1 * time.Second)
	w.Observe(true)
	w.Observe(true)

	assert.Len(t, rec.alerts, 1)

	// The grace window is anchored at the first report, not restarted.
	sched.Advance(2 * time.Second)
	assert.Equal(t, []model.TerminationReason{model.ReasonFocusLost}, rec.terminals)
}

func TestFocusWatcher_EachLossGetsAFreshGrace(t *testing.T) {
	sched, rec, w := newFocusFixture()

	w.Observe(true)
	sched.Advance(2 * time.Second)
	w.Observe(false)

	w.Observe(true)
	sched.Advance(2 * time.Second)
	assert.Empty(t, rec.terminals)

	sched.Advance(1 * time.Second)
	assert.Equal(t, []model.TerminationReason{model.ReasonFocusLost}, rec.terminals)
	assert.Len(t, rec.alerts, 2)
}

func TestFocusWatcher_StopCancelsPendingGrace(t *testing.T) {
	sched, rec, w := newFocusFixture()

	w.Observe(true)
	w.Stop()
	w.Stop()

	sched.Advance(10 * time.Second)
	assert.Empty(t, rec.terminals)
}
